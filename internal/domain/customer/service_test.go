package customer_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"goldloan-engine/internal/domain/customer"
	"goldloan-engine/internal/pkg/apperrors"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateCustomer(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	args := m.Called(ctx, c)
	if created, ok := args.Get(0).(*customer.Customer); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetCustomerByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	args := m.Called(ctx)
	if customers, ok := args.Get(0).([]*customer.Customer); ok {
		return customers, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) UpdateCustomer(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	args := m.Called(ctx, c)
	if updated, ok := args.Get(0).(*customer.Customer); ok {
		return updated, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) DeleteCustomer(ctx context.Context, customerID int64) error {
	return m.Called(ctx, customerID).Error(0)
}

func (m *MockRepository) CountCustomers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService(t *testing.T) (customer.Service, *MockRepository) {
	t.Helper()
	repo := new(MockRepository)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return customer.NewService(repo, logger), repo
}

func TestCreateCustomer(t *testing.T) {
	t.Run("creates a valid customer", func(t *testing.T) {
		svc, repo := newTestService(t)
		c := &customer.Customer{FullName: "Lakshmi Devi", PhoneNumber: "+919876543210"}
		repo.On("CreateCustomer", mock.Anything, c).Return(&customer.Customer{ID: 1, FullName: "Lakshmi Devi"}, nil)

		created, err := svc.CreateCustomer(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		svc, repo := newTestService(t)

		_, err := svc.CreateCustomer(context.Background(), &customer.Customer{PhoneNumber: "+919876543210"})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		repo.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("rejects an id proof type without a number", func(t *testing.T) {
		svc, repo := newTestService(t)
		c := &customer.Customer{FullName: "Lakshmi Devi", IDProofType: "AADHAAR"}

		_, err := svc.CreateCustomer(context.Background(), c)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		repo.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})
}

func TestUpdateCustomerValidates(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.UpdateCustomer(context.Background(), &customer.Customer{ID: 1})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	repo.AssertNotCalled(t, "UpdateCustomer", mock.Anything, mock.Anything)
}

func TestGetCustomerNotFound(t *testing.T) {
	svc, repo := newTestService(t)
	repo.On("GetCustomerByID", mock.Anything, int64(404)).Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetCustomer(context.Background(), 404)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteCustomer(t *testing.T) {
	svc, repo := newTestService(t)
	repo.On("DeleteCustomer", mock.Anything, int64(3)).Return(nil)

	require.NoError(t, svc.DeleteCustomer(context.Background(), 3))
	repo.AssertExpectations(t)
}

func TestCountCustomers(t *testing.T) {
	svc, repo := newTestService(t)
	repo.On("CountCustomers", mock.Anything).Return(int64(17), nil)

	n, err := svc.CountCustomers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(17), n)
}
