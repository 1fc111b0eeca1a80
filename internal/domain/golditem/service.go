package golditem

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"goldloan-engine/internal/pkg/apperrors"
)

// Service covers inventory management. Item status is deliberately absent
// from the mutation surface here; only the ledger moves it.
type Service interface {
	AddItem(ctx context.Context, item *GoldItem) (*GoldItem, error)

	GetItem(ctx context.Context, itemID int64) (*GoldItem, error)

	ListItems(ctx context.Context) ([]*GoldItem, error)

	ListItemsByStatus(ctx context.Context, status Status) ([]*GoldItem, error)

	UpdateItem(ctx context.Context, item *GoldItem) (*GoldItem, error)

	RemoveItem(ctx context.Context, itemID int64) error
}

type serviceImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	return &serviceImpl{repo: repo, logger: logger.With("component", "GoldItemService")}
}

func (s *serviceImpl) AddItem(ctx context.Context, item *GoldItem) (*GoldItem, error) {
	if err := validateItem(item); err != nil {
		return nil, err
	}

	item.Status = StatusAvailable
	created, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create gold item", "error", err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "Gold item added", "item_id", created.ID, "customer_id", created.CustomerID)
	return created, nil
}

func (s *serviceImpl) GetItem(ctx context.Context, itemID int64) (*GoldItem, error) {
	return s.repo.GetItemByID(ctx, itemID)
}

func (s *serviceImpl) ListItems(ctx context.Context) ([]*GoldItem, error) {
	return s.repo.ListItems(ctx)
}

func (s *serviceImpl) ListItemsByStatus(ctx context.Context, status Status) ([]*GoldItem, error) {
	switch status {
	case StatusAvailable, StatusPledged, StatusPledgedToBank:
	default:
		return nil, apperrors.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
	return s.repo.ListItemsByStatus(ctx, status)
}

func (s *serviceImpl) UpdateItem(ctx context.Context, item *GoldItem) (*GoldItem, error) {
	if err := validateItem(item); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateItem(ctx, item)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Gold item updated", "item_id", updated.ID)
	return updated, nil
}

func (s *serviceImpl) RemoveItem(ctx context.Context, itemID int64) error {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.Status != StatusAvailable {
		return fmt.Errorf("%w: gold item %d is %s and cannot be deleted",
			apperrors.ErrItemUnavailable, itemID, item.Status)
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Gold item removed", "item_id", itemID)
	return nil
}

func validateItem(item *GoldItem) error {
	if item.CustomerID <= 0 {
		return apperrors.NewValidationError("customerId", "is required")
	}
	if item.ItemType == "" {
		return apperrors.NewValidationError("itemType", "is required")
	}
	if !item.WeightInGrams.IsPositive() {
		return apperrors.NewValidationError("weightInGrams", "must be greater than zero")
	}
	if item.EstimatedValue.Cmp(decimal.Zero) < 0 {
		return apperrors.NewValidationError("estimatedValue", "must not be negative")
	}
	return nil
}
