package postgres

import (
	"context"
	"log/slog"

	"goldloan-engine/internal/domain/dashboard"
)

type DashboardRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewDashboardRepository(db DBPool, logger *slog.Logger) *DashboardRepository {
	return &DashboardRepository{db: db, logger: logger.With("component", "DashboardRepository")}
}

const snapshotColumns = `id, summary_date, total_investment::text, total_receivable_interest::text,
		total_payable_interest::text, total_bank_loans::text, net_profit::text,
		active_customer_loans, active_bank_loans, total_gold_weight_pledged::text`

func scanSnapshot(row rowScanner) (*dashboard.Snapshot, error) {
	var (
		s                                                   dashboard.Snapshot
		investment, receivable, payable, bank, profit, gold string
	)
	err := row.Scan(
		&s.ID, &s.SummaryDate, &investment, &receivable,
		&payable, &bank, &profit,
		&s.ActiveCustomerLoans, &s.ActiveBankLoans, &gold,
	)
	if err != nil {
		return nil, err
	}

	if s.TotalInvestment, err = scanDecimal(investment); err != nil {
		return nil, err
	}
	if s.TotalReceivableInterest, err = scanDecimal(receivable); err != nil {
		return nil, err
	}
	if s.TotalPayableInterest, err = scanDecimal(payable); err != nil {
		return nil, err
	}
	if s.TotalBankLoans, err = scanDecimal(bank); err != nil {
		return nil, err
	}
	if s.NetProfit, err = scanDecimal(profit); err != nil {
		return nil, err
	}
	if s.TotalGoldWeightPledged, err = scanDecimal(gold); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *DashboardRepository) InsertSnapshot(ctx context.Context, s *dashboard.Snapshot) (*dashboard.Snapshot, error) {
	sql := `
        INSERT INTO dashboard_summaries (summary_date, total_investment, total_receivable_interest,
            total_payable_interest, total_bank_loans, net_profit, active_customer_loans,
            active_bank_loans, total_gold_weight_pledged)
        VALUES ($1, $2::numeric, $3::numeric, $4::numeric, $5::numeric, $6::numeric, $7, $8, $9::numeric)
        RETURNING ` + snapshotColumns

	row := r.db.QueryRow(ctx, sql,
		s.SummaryDate, s.TotalInvestment.String(), s.TotalReceivableInterest.String(),
		s.TotalPayableInterest.String(), s.TotalBankLoans.String(), s.NetProfit.String(),
		s.ActiveCustomerLoans, s.ActiveBankLoans, s.TotalGoldWeightPledged.String(),
	)
	created, err := scanSnapshot(row)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert dashboard snapshot", "error", err)
		return nil, translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Dashboard snapshot persisted", "snapshot_id", created.ID)
	return created, nil
}

func (r *DashboardRepository) ListSnapshots(ctx context.Context) ([]*dashboard.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM dashboard_summaries ORDER BY summary_date DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query dashboard snapshots", "error", err)
		return nil, translateDBError(err, r.logger)
	}
	defer rows.Close()

	snapshots := make([]*dashboard.Snapshot, 0)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, translateDBError(err, r.logger)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return snapshots, nil
}
