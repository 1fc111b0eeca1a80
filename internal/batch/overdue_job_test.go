package batch_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"goldloan-engine/internal/batch"
	"goldloan-engine/internal/domain/loan"
)

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CreateLoan(ctx context.Context, in loan.CreateLoanInput) (*loan.Loan, error) {
	args := m.Called(ctx, in)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, kind loan.Kind, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, kind, loanID)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListLoans(ctx context.Context, kind loan.Kind, status *loan.Status) ([]*loan.Loan, error) {
	args := m.Called(ctx, kind, status)
	if loans, ok := args.Get(0).([]*loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListLoansByCustomer(ctx context.Context, customerID int64) ([]*loan.Loan, error) {
	args := m.Called(ctx, customerID)
	if loans, ok := args.Get(0).([]*loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListOverdueLoans(ctx context.Context, kind loan.Kind, now time.Time) ([]*loan.Loan, error) {
	args := m.Called(ctx, kind, now)
	if loans, ok := args.Get(0).([]*loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ApplyRepayment(ctx context.Context, kind loan.Kind, loanID int64, amount decimal.Decimal) (*loan.Loan, error) {
	args := m.Called(ctx, kind, loanID, amount)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ExpireOverdueLoans(ctx context.Context, now time.Time) ([]*loan.Loan, error) {
	args := m.Called(ctx, now)
	if loans, ok := args.Get(0).([]*loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) ListTransactions(ctx context.Context, loanID int64) ([]*loan.Transaction, error) {
	args := m.Called(ctx, loanID)
	if txns, ok := args.Get(0).([]*loan.Transaction); ok {
		return txns, args.Error(1)
	}
	return nil, args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOverdueSweepJobRun(t *testing.T) {
	t.Run("reports defaulted loans", func(t *testing.T) {
		svc := new(MockLoanService)
		svc.On("ExpireOverdueLoans", mock.Anything, mock.AnythingOfType("time.Time")).
			Return([]*loan.Loan{{ID: 1}, {ID: 2}}, nil)

		job := batch.NewOverdueSweepJob(svc, time.Minute, discardLogger())
		require.NoError(t, job.Run(context.Background()))
		svc.AssertExpectations(t)
	})

	t.Run("propagates sweep errors", func(t *testing.T) {
		svc := new(MockLoanService)
		svc.On("ExpireOverdueLoans", mock.Anything, mock.AnythingOfType("time.Time")).
			Return(nil, assert.AnError)

		job := batch.NewOverdueSweepJob(svc, time.Minute, discardLogger())
		assert.ErrorIs(t, job.Run(context.Background()), assert.AnError)
	})

	t.Run("applies the configured timeout", func(t *testing.T) {
		svc := new(MockLoanService)
		svc.On("ExpireOverdueLoans", mock.Anything, mock.AnythingOfType("time.Time")).
			Run(func(args mock.Arguments) {
				ctx := args.Get(0).(context.Context)
				deadline, ok := ctx.Deadline()
				assert.True(t, ok)
				assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
			}).
			Return([]*loan.Loan{}, nil)

		job := batch.NewOverdueSweepJob(svc, time.Minute, discardLogger())
		require.NoError(t, job.Run(context.Background()))
	})
}

func TestNewOverdueSweepJobPanicsOnNilService(t *testing.T) {
	assert.Panics(t, func() {
		batch.NewOverdueSweepJob(nil, time.Minute, discardLogger())
	})
}
