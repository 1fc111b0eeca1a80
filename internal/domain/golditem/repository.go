package golditem

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type Repository interface {
	CreateItem(ctx context.Context, item *GoldItem) (*GoldItem, error)

	GetItemByID(ctx context.Context, itemID int64) (*GoldItem, error)

	ListItems(ctx context.Context) ([]*GoldItem, error)

	ListItemsByStatus(ctx context.Context, status Status) ([]*GoldItem, error)

	// UpdateItem persists the descriptive fields only. Status is owned by the
	// ledger and never settable through a generic update.
	UpdateItem(ctx context.Context, item *GoldItem) (*GoldItem, error)

	DeleteItem(ctx context.Context, itemID int64) error

	// LockItemsInTx locks the given item rows (ordered by id, so two
	// overlapping reservations cannot deadlock) and returns them.
	LockItemsInTx(ctx context.Context, tx pgx.Tx, itemIDs []int64) ([]*GoldItem, error)

	UpdateStatusInTx(ctx context.Context, tx pgx.Tx, itemIDs []int64, from, to Status) (int64, error)

	SumPledgedWeight(ctx context.Context) (decimal.Decimal, error)
}
