package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"goldloan-engine/internal/domain/loan"
	"goldloan-engine/internal/infrastructure/monitoring"
	"goldloan-engine/internal/pkg/apperrors"
)

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

const loanColumns = `id, loan_number, kind, customer_id, bank_name, principal_amount::text,
		interest_rate::text, tenure_months, start_date, maturity_date, gold_item_ids, status,
		total_interest::text, interest_paid::text, amount_paid::text, outstanding_amount::text,
		last_payment_date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(row rowScanner) (*loan.Loan, error) {
	var (
		l                                                  loan.Loan
		principal, rate, total, intPaid, amtPaid, outstand string
	)
	err := row.Scan(
		&l.ID, &l.LoanNumber, &l.Kind, &l.CustomerID, &l.BankName, &principal,
		&rate, &l.TenureMonths, &l.StartDate, &l.MaturityDate, &l.GoldItemIDs, &l.Status,
		&total, &intPaid, &amtPaid, &outstand,
		&l.LastPaymentDate, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if l.PrincipalAmount, err = scanDecimal(principal); err != nil {
		return nil, err
	}
	if l.InterestRate, err = scanDecimal(rate); err != nil {
		return nil, err
	}
	if l.TotalInterest, err = scanDecimal(total); err != nil {
		return nil, err
	}
	if l.InterestPaid, err = scanDecimal(intPaid); err != nil {
		return nil, err
	}
	if l.AmountPaid, err = scanDecimal(amtPaid); err != nil {
		return nil, err
	}
	if l.Outstanding, err = scanDecimal(outstand); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LoanRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return tx, nil
}

func (r *LoanRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		r.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) CreateLoanInTx(ctx context.Context, tx pgx.Tx, l *loan.Loan) (*loan.Loan, error) {
	sql := `
        INSERT INTO loans (loan_number, kind, customer_id, bank_name, principal_amount, interest_rate,
            tenure_months, start_date, maturity_date, gold_item_ids, status, total_interest,
            interest_paid, amount_paid, outstanding_amount, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7, $8, $9, $10, $11, $12::numeric,
            $13::numeric, $14::numeric, $15::numeric, NOW(), NOW())
        RETURNING ` + loanColumns

	row := tx.QueryRow(ctx, sql,
		l.LoanNumber, l.Kind, l.CustomerID, l.BankName, l.PrincipalAmount.String(), l.InterestRate.String(),
		l.TenureMonths, l.StartDate, l.MaturityDate, l.GoldItemIDs, l.Status, l.TotalInterest.String(),
		l.InterestPaid.String(), l.AmountPaid.String(), l.Outstanding.String(),
	)

	created, err := scanLoan(row)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return nil, translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", created.ID, "loan_number", created.LoanNumber)
	return created, nil
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, kind loan.Kind, loanID int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 AND kind = $2`
	status := "success"
	startTime := time.Now()

	l, err := scanLoan(r.db.QueryRow(ctx, query, loanID, kind))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetLoanByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID, "kind", kind)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return l, nil
}

func (r *LoanRepository) GetLoanForUpdate(ctx context.Context, tx pgx.Tx, kind loan.Kind, loanID int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 AND kind = $2 FOR UPDATE`

	l, err := scanLoan(tx.QueryRow(ctx, query, loanID, kind))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found for update", "loan_id", loanID, "kind", kind)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to lock loan row", "loan_id", loanID, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return l, nil
}

func (r *LoanRepository) UpdateLoanInTx(ctx context.Context, tx pgx.Tx, l *loan.Loan) error {
	sql := `
        UPDATE loans
        SET status = $1, interest_paid = $2::numeric, amount_paid = $3::numeric,
            outstanding_amount = $4::numeric, last_payment_date = $5, updated_at = NOW()
        WHERE id = $6`

	cmdTag, err := tx.Exec(ctx, sql,
		l.Status, l.InterestPaid.String(), l.AmountPaid.String(),
		l.Outstanding.String(), l.LastPaymentDate, l.ID,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan", "loan_id", l.ID, "error", err)
		return translateDBError(err, r.logger)
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Loan update affected zero rows", "loan_id", l.ID)
		return fmt.Errorf("%w: loan update affected zero rows", apperrors.ErrDatabase)
	}
	return nil
}

func (r *LoanRepository) ListLoans(ctx context.Context, kind loan.Kind, status *loan.Status) ([]*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE kind = $1`
	args := []any{kind}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY id DESC`

	return r.queryLoans(ctx, "ListLoans", query, args...)
}

func (r *LoanRepository) ListLoansByCustomer(ctx context.Context, customerID int64) ([]*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE kind = $1 AND customer_id = $2 ORDER BY id DESC`
	return r.queryLoans(ctx, "ListLoansByCustomer", query, loan.KindCustomer, customerID)
}

func (r *LoanRepository) ListOverdueLoans(ctx context.Context, kind loan.Kind, now time.Time) ([]*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
        WHERE kind = $1 AND status = $2 AND maturity_date < $3
        ORDER BY maturity_date ASC`
	return r.queryLoans(ctx, "ListOverdueLoans", query, kind, loan.StatusActive, now)
}

func (r *LoanRepository) ListOverdueForUpdate(ctx context.Context, tx pgx.Tx, now time.Time) ([]*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
        WHERE status = $1 AND maturity_date < $2
        ORDER BY id ASC
        FOR UPDATE`

	rows, err := tx.Query(ctx, query, loan.StatusActive, now)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query overdue loans for update", "error", err)
		return nil, translateDBError(err, r.logger)
	}
	defer rows.Close()

	return collectLoans(rows)
}

func (r *LoanRepository) queryLoans(ctx context.Context, queryName, query string, args ...any) ([]*loan.Loan, error) {
	status := "success"
	startTime := time.Now()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		monitoring.RecordDBQuery(queryName, "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Failed to query loans", "query", queryName, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	defer rows.Close()

	loans, err := collectLoans(rows)
	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery(queryName, status, time.Since(startTime))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to scan loan rows", "query", queryName, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return loans, nil
}

func collectLoans(rows pgx.Rows) ([]*loan.Loan, error) {
	loans := make([]*loan.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return loans, nil
}

func (r *LoanRepository) InsertTransactionInTx(ctx context.Context, tx pgx.Tx, t *loan.Transaction) error {
	sql := `
        INSERT INTO transactions (transaction_type, loan_id, amount, description, transaction_date)
        VALUES ($1, $2, $3::numeric, $4, $5)`

	_, err := tx.Exec(ctx, sql, t.TransactionType, t.LoanID, t.Amount.String(), t.Description, t.TransactionDate)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert transaction", "loan_id", t.LoanID, "error", err)
		return translateDBError(err, r.logger)
	}
	return nil
}

func (r *LoanRepository) ListTransactionsByLoan(ctx context.Context, loanID int64) ([]*loan.Transaction, error) {
	query := `
        SELECT id, transaction_type, loan_id, amount::text, description, transaction_date
        FROM transactions
        WHERE loan_id = $1
        ORDER BY transaction_date ASC, id ASC`

	rows, err := r.db.Query(ctx, query, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query transactions", "loan_id", loanID, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	defer rows.Close()

	txns := make([]*loan.Transaction, 0)
	for rows.Next() {
		var (
			t      loan.Transaction
			amount string
		)
		if err := rows.Scan(&t.ID, &t.TransactionType, &t.LoanID, &amount, &t.Description, &t.TransactionDate); err != nil {
			return nil, translateDBError(err, r.logger)
		}
		if t.Amount, err = scanDecimal(amount); err != nil {
			return nil, err
		}
		txns = append(txns, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return txns, nil
}

func (r *LoanRepository) GetPortfolioTotals(ctx context.Context, kind loan.Kind) (*loan.PortfolioTotals, error) {
	query := `
        SELECT COUNT(*),
               COALESCE(SUM(principal_amount), 0)::text,
               COALESCE(SUM(total_interest), 0)::text,
               COALESCE(SUM(outstanding_amount), 0)::text
        FROM loans
        WHERE kind = $1 AND status = $2`

	var (
		totals                          loan.PortfolioTotals
		principal, interest, outstandng string
	)
	err := r.db.QueryRow(ctx, query, kind, loan.StatusActive).Scan(
		&totals.ActiveCount, &principal, &interest, &outstandng,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to aggregate portfolio totals", "kind", kind, "error", err)
		return nil, translateDBError(err, r.logger)
	}

	if totals.TotalPrincipal, err = scanDecimal(principal); err != nil {
		return nil, err
	}
	if totals.TotalInterest, err = scanDecimal(interest); err != nil {
		return nil, err
	}
	if totals.TotalOutstanding, err = scanDecimal(outstandng); err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *LoanRepository) GetMonthlyOriginations(ctx context.Context, kind loan.Kind, months int, now time.Time) ([]loan.MonthlyOrigination, error) {
	query := `
        SELECT date_trunc('month', start_date) AS month, COALESCE(SUM(principal_amount), 0)::text
        FROM loans
        WHERE kind = $1 AND start_date >= date_trunc('month', $2::timestamptz) - ($3 || ' months')::interval
        GROUP BY month
        ORDER BY month ASC`

	rows, err := r.db.Query(ctx, query, kind, now, months-1)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query monthly originations", "error", err)
		return nil, translateDBError(err, r.logger)
	}
	defer rows.Close()

	result := make([]loan.MonthlyOrigination, 0, months)
	for rows.Next() {
		var (
			o     loan.MonthlyOrigination
			total string
		)
		if err := rows.Scan(&o.Month, &total); err != nil {
			return nil, translateDBError(err, r.logger)
		}
		if o.Total, err = scanDecimal(total); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return result, nil
}

func (r *LoanRepository) CountLoansByStatus(ctx context.Context, kind loan.Kind) ([]loan.StatusCount, error) {
	query := `SELECT status, COUNT(*) FROM loans WHERE kind = $1 GROUP BY status`

	rows, err := r.db.Query(ctx, query, kind)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count loans by status", "error", err)
		return nil, translateDBError(err, r.logger)
	}
	defer rows.Close()

	counts := make([]loan.StatusCount, 0, 3)
	for rows.Next() {
		var sc loan.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, translateDBError(err, r.logger)
		}
		counts = append(counts, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return counts, nil
}
