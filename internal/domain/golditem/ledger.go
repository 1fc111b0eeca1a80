package golditem

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"goldloan-engine/internal/pkg/apperrors"
)

// Ledger owns every status transition a gold item can make. Reservation and
// release always run inside the caller's transaction: either every item in
// the set transitions, or none does.
type Ledger interface {
	// ReserveForCustomerLoan flips AVAILABLE items owned by the given
	// customer to PLEDGED. Any missing, foreign or non-available item fails
	// the whole set.
	ReserveForCustomerLoan(ctx context.Context, tx pgx.Tx, itemIDs []int64, customerID int64) ([]*GoldItem, error)

	// ReserveForBankLoan re-pledges already PLEDGED items to a bank.
	ReserveForBankLoan(ctx context.Context, tx pgx.Tx, itemIDs []int64) ([]*GoldItem, error)

	// ReleaseFromCustomerLoan returns PLEDGED items to AVAILABLE. Items the
	// business has meanwhile re-pledged to a bank are left untouched; they
	// come back through ReleaseFromBankLoan first.
	ReleaseFromCustomerLoan(ctx context.Context, tx pgx.Tx, itemIDs []int64) error

	// ReleaseFromBankLoan returns PLEDGED_TO_BANK items to PLEDGED, since
	// they still collateralize the originating customer loan.
	ReleaseFromBankLoan(ctx context.Context, tx pgx.Tx, itemIDs []int64) error
}

type ledgerImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewLedger(repo Repository, logger *slog.Logger) Ledger {
	return &ledgerImpl{repo: repo, logger: logger.With("component", "GoldItemLedger")}
}

func (l *ledgerImpl) ReserveForCustomerLoan(ctx context.Context, tx pgx.Tx, itemIDs []int64, customerID int64) ([]*GoldItem, error) {
	items, err := l.lockAll(ctx, tx, itemIDs)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if item.CustomerID != customerID {
			l.logger.WarnContext(ctx, "Gold item belongs to a different customer",
				"item_id", item.ID, "owner_id", item.CustomerID, "customer_id", customerID)
			return nil, fmt.Errorf("%w: gold item %d does not belong to customer %d",
				apperrors.ErrItemUnavailable, item.ID, customerID)
		}
		if item.Status != StatusAvailable {
			return nil, fmt.Errorf("%w: gold item %d is %s", apperrors.ErrItemUnavailable, item.ID, item.Status)
		}
	}

	return items, l.transition(ctx, tx, itemIDs, StatusAvailable, StatusPledged)
}

func (l *ledgerImpl) ReserveForBankLoan(ctx context.Context, tx pgx.Tx, itemIDs []int64) ([]*GoldItem, error) {
	items, err := l.lockAll(ctx, tx, itemIDs)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if item.Status != StatusPledged {
			return nil, fmt.Errorf("%w: gold item %d is %s, only pledged stock can be re-pledged to a bank",
				apperrors.ErrItemUnavailable, item.ID, item.Status)
		}
	}

	return items, l.transition(ctx, tx, itemIDs, StatusPledged, StatusPledgedToBank)
}

func (l *ledgerImpl) ReleaseFromCustomerLoan(ctx context.Context, tx pgx.Tx, itemIDs []int64) error {
	affected, err := l.repo.UpdateStatusInTx(ctx, tx, itemIDs, StatusPledged, StatusAvailable)
	if err != nil {
		return err
	}
	if affected != int64(len(itemIDs)) {
		l.logger.InfoContext(ctx, "Some items stayed pledged to a bank on customer loan release",
			"requested", len(itemIDs), "released", affected)
	}
	return nil
}

func (l *ledgerImpl) ReleaseFromBankLoan(ctx context.Context, tx pgx.Tx, itemIDs []int64) error {
	_, err := l.repo.UpdateStatusInTx(ctx, tx, itemIDs, StatusPledgedToBank, StatusPledged)
	return err
}

func (l *ledgerImpl) lockAll(ctx context.Context, tx pgx.Tx, itemIDs []int64) ([]*GoldItem, error) {
	items, err := l.repo.LockItemsInTx(ctx, tx, itemIDs)
	if err != nil {
		return nil, err
	}
	if len(items) != len(itemIDs) {
		found := make(map[int64]bool, len(items))
		for _, item := range items {
			found[item.ID] = true
		}
		for _, id := range itemIDs {
			if !found[id] {
				return nil, fmt.Errorf("%w: gold item %d", apperrors.ErrNotFound, id)
			}
		}
	}
	return items, nil
}

func (l *ledgerImpl) transition(ctx context.Context, tx pgx.Tx, itemIDs []int64, from, to Status) error {
	affected, err := l.repo.UpdateStatusInTx(ctx, tx, itemIDs, from, to)
	if err != nil {
		return err
	}
	if affected != int64(len(itemIDs)) {
		// The rows are locked, so a shortfall here is a bug, not a race.
		return fmt.Errorf("%w: expected to transition %d items %s->%s, got %d",
			apperrors.ErrInternalServer, len(itemIDs), from, to, affected)
	}
	l.logger.InfoContext(ctx, "Gold items transitioned", "count", len(itemIDs), "from", from, "to", to)
	return nil
}
