package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"goldloan-engine/internal/domain/golditem"
	"goldloan-engine/internal/infrastructure/monitoring"
	"goldloan-engine/internal/pkg/apperrors"
)

type GoldItemRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewGoldItemRepository(db DBPool, logger *slog.Logger) *GoldItemRepository {
	return &GoldItemRepository{db: db, logger: logger.With("component", "GoldItemRepository")}
}

const goldItemColumns = `id, customer_id, item_type, weight_in_grams::text, purity, description,
		estimated_value::text, status, image_url, created_at, updated_at`

func scanGoldItem(row rowScanner) (*golditem.GoldItem, error) {
	var (
		item          golditem.GoldItem
		weight, value string
	)
	err := row.Scan(
		&item.ID, &item.CustomerID, &item.ItemType, &weight, &item.Purity, &item.Description,
		&value, &item.Status, &item.ImageURL, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if item.WeightInGrams, err = scanDecimal(weight); err != nil {
		return nil, err
	}
	if item.EstimatedValue, err = scanDecimal(value); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GoldItemRepository) CreateItem(ctx context.Context, item *golditem.GoldItem) (*golditem.GoldItem, error) {
	sql := `
        INSERT INTO gold_items (customer_id, item_type, weight_in_grams, purity, description,
            estimated_value, status, image_url, created_at, updated_at)
        VALUES ($1, $2, $3::numeric, $4, $5, $6::numeric, $7, $8, NOW(), NOW())
        RETURNING ` + goldItemColumns

	row := r.db.QueryRow(ctx, sql,
		item.CustomerID, item.ItemType, item.WeightInGrams.String(), item.Purity, item.Description,
		item.EstimatedValue.String(), item.Status, item.ImageURL,
	)
	created, err := scanGoldItem(row)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert gold item", "error", err)
		return nil, translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Gold item created in DB", "item_id", created.ID)
	return created, nil
}

func (r *GoldItemRepository) GetItemByID(ctx context.Context, itemID int64) (*golditem.GoldItem, error) {
	query := `SELECT ` + goldItemColumns + ` FROM gold_items WHERE id = $1`

	item, err := scanGoldItem(r.db.QueryRow(ctx, query, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Gold item not found", "item_id", itemID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get gold item", "item_id", itemID, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return item, nil
}

func (r *GoldItemRepository) ListItems(ctx context.Context) ([]*golditem.GoldItem, error) {
	query := `SELECT ` + goldItemColumns + ` FROM gold_items ORDER BY id DESC`
	return r.queryItems(ctx, "ListItems", query)
}

func (r *GoldItemRepository) ListItemsByStatus(ctx context.Context, status golditem.Status) ([]*golditem.GoldItem, error) {
	query := `SELECT ` + goldItemColumns + ` FROM gold_items WHERE status = $1 ORDER BY id DESC`
	return r.queryItems(ctx, "ListItemsByStatus", query, status)
}

func (r *GoldItemRepository) queryItems(ctx context.Context, queryName, query string, args ...any) ([]*golditem.GoldItem, error) {
	status := "success"
	startTime := time.Now()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		monitoring.RecordDBQuery(queryName, "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Failed to query gold items", "query", queryName, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	defer rows.Close()

	items := make([]*golditem.GoldItem, 0)
	for rows.Next() {
		item, scanErr := scanGoldItem(rows)
		if scanErr != nil {
			err = scanErr
			break
		}
		items = append(items, item)
	}
	if err == nil {
		err = rows.Err()
	}
	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery(queryName, status, time.Since(startTime))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to scan gold item rows", "query", queryName, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return items, nil
}

func (r *GoldItemRepository) UpdateItem(ctx context.Context, item *golditem.GoldItem) (*golditem.GoldItem, error) {
	sql := `
        UPDATE gold_items
        SET item_type = $1, weight_in_grams = $2::numeric, purity = $3, description = $4,
            estimated_value = $5::numeric, image_url = $6, updated_at = NOW()
        WHERE id = $7
        RETURNING ` + goldItemColumns

	row := r.db.QueryRow(ctx, sql,
		item.ItemType, item.WeightInGrams.String(), item.Purity, item.Description,
		item.EstimatedValue.String(), item.ImageURL, item.ID,
	)
	updated, err := scanGoldItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to update gold item", "item_id", item.ID, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return updated, nil
}

func (r *GoldItemRepository) DeleteItem(ctx context.Context, itemID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM gold_items WHERE id = $1`, itemID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete gold item", "item_id", itemID, "error", err)
		return translateDBError(err, r.logger)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Gold item deleted", "item_id", itemID)
	return nil
}

func (r *GoldItemRepository) LockItemsInTx(ctx context.Context, tx pgx.Tx, itemIDs []int64) ([]*golditem.GoldItem, error) {
	query := `SELECT ` + goldItemColumns + ` FROM gold_items WHERE id = ANY($1) ORDER BY id ASC FOR UPDATE`

	rows, err := tx.Query(ctx, query, itemIDs)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to lock gold item rows", "error", err)
		return nil, translateDBError(err, r.logger)
	}
	defer rows.Close()

	items := make([]*golditem.GoldItem, 0, len(itemIDs))
	for rows.Next() {
		item, err := scanGoldItem(rows)
		if err != nil {
			return nil, translateDBError(err, r.logger)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return items, nil
}

func (r *GoldItemRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, itemIDs []int64, from, to golditem.Status) (int64, error) {
	sql := `UPDATE gold_items SET status = $1, updated_at = NOW() WHERE id = ANY($2) AND status = $3`

	cmdTag, err := tx.Exec(ctx, sql, to, itemIDs, from)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update gold item statuses", "from", from, "to", to, "error", err)
		return 0, translateDBError(err, r.logger)
	}
	return cmdTag.RowsAffected(), nil
}

func (r *GoldItemRepository) SumPledgedWeight(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(weight_in_grams), 0)::text FROM gold_items WHERE status IN ($1, $2)`

	var weight string
	err := r.db.QueryRow(ctx, query, golditem.StatusPledged, golditem.StatusPledgedToBank).Scan(&weight)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to sum pledged weight", "error", err)
		return decimal.Zero, translateDBError(err, r.logger)
	}
	return scanDecimal(weight)
}
