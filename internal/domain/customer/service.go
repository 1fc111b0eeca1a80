package customer

import (
	"context"
	"log/slog"

	"goldloan-engine/internal/pkg/apperrors"
)

type Service interface {
	CreateCustomer(ctx context.Context, c *Customer) (*Customer, error)

	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)

	ListCustomers(ctx context.Context) ([]*Customer, error)

	UpdateCustomer(ctx context.Context, c *Customer) (*Customer, error)

	DeleteCustomer(ctx context.Context, customerID int64) error

	CountCustomers(ctx context.Context) (int64, error)
}

type serviceImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	return &serviceImpl{repo: repo, logger: logger.With("component", "CustomerService")}
}

func (s *serviceImpl) CreateCustomer(ctx context.Context, c *Customer) (*Customer, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateCustomer(ctx, c)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create customer", "error", err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "Customer created", "customer_id", created.ID)
	return created, nil
}

func (s *serviceImpl) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	return s.repo.GetCustomerByID(ctx, customerID)
}

func (s *serviceImpl) ListCustomers(ctx context.Context) ([]*Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *serviceImpl) UpdateCustomer(ctx context.Context, c *Customer) (*Customer, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateCustomer(ctx, c)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Customer updated", "customer_id", updated.ID)
	return updated, nil
}

func (s *serviceImpl) DeleteCustomer(ctx context.Context, customerID int64) error {
	if err := s.repo.DeleteCustomer(ctx, customerID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Customer deleted", "customer_id", customerID)
	return nil
}

func (s *serviceImpl) CountCustomers(ctx context.Context) (int64, error) {
	return s.repo.CountCustomers(ctx)
}

func validate(c *Customer) error {
	if c.FullName == "" {
		return apperrors.NewValidationError("fullName", "is required")
	}
	if c.IDProofType != "" && c.IDProofNumber == "" {
		return apperrors.NewValidationError("idProofNumber", "is required when idProofType is set")
	}
	return nil
}
