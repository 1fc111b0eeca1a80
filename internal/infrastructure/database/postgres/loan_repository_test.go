package postgres

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldloan-engine/internal/domain/loan"
	"goldloan-engine/internal/pkg/apperrors"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

const pgxmockExpectationsNotMetMsg = "pgxmock expectations were not met"

var loanColumnNames = []string{
	"id", "loan_number", "kind", "customer_id", "bank_name", "principal_amount",
	"interest_rate", "tenure_months", "start_date", "maturity_date", "gold_item_ids", "status",
	"total_interest", "interest_paid", "amount_paid", "outstanding_amount",
	"last_payment_date", "created_at", "updated_at",
}

func setupLoanRepo(t *testing.T) (context.Context, *LoanRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}
	return context.Background(), NewLoanRepository(mockPool, logger), mockPool
}

func testLoanRow(id int64) []any {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	return []any{
		id, "CL-20250115-A1B2C3D4", loan.KindCustomer, int64(7), "",
		"100000", "2", 6,
		now, now.AddDate(0, 6, 0), []int64{1, 2}, loan.StatusActive,
		"12000", "0", "0", "112000",
		nil, now, now,
	}
}

func TestGetLoanByID(t *testing.T) {
	t.Run("returns the matching loan", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanRepo(t)
		defer mockPool.Close()

		query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 AND kind = $2`
		mockPool.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(int64(42), loan.KindCustomer).
			WillReturnRows(pgxmock.NewRows(loanColumnNames).AddRow(testLoanRow(42)...))

		l, err := repo.GetLoanByID(ctx, loan.KindCustomer, 42)
		require.NoError(t, err)
		assert.Equal(t, int64(42), l.ID)
		assert.Equal(t, "CL-20250115-A1B2C3D4", l.LoanNumber)
		assert.True(t, l.PrincipalAmount.Equal(decimal.NewFromInt(100000)))
		assert.True(t, l.Outstanding.Equal(decimal.NewFromInt(112000)))
		assert.Equal(t, []int64{1, 2}, l.GoldItemIDs)
		assert.Nil(t, l.LastPaymentDate)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("maps no rows to not found", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanRepo(t)
		defer mockPool.Close()

		query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 AND kind = $2`
		mockPool.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(int64(404), loan.KindBank).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetLoanByID(ctx, loan.KindBank, 404)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})
}

func TestCreateLoanInTx(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	l := &loan.Loan{
		LoanNumber:      "CL-20250115-A1B2C3D4",
		Kind:            loan.KindCustomer,
		CustomerID:      7,
		PrincipalAmount: decimal.NewFromInt(100000),
		InterestRate:    decimal.NewFromInt(2),
		TenureMonths:    6,
		StartDate:       now,
		MaturityDate:    now.AddDate(0, 6, 0),
		GoldItemIDs:     []int64{1, 2},
		Status:          loan.StatusActive,
		TotalInterest:   decimal.NewFromInt(12000),
		InterestPaid:    decimal.Zero,
		AmountPaid:      decimal.Zero,
		Outstanding:     decimal.NewFromInt(112000),
	}

	mockPool.ExpectBegin()
	mockPool.ExpectQuery(regexp.QuoteMeta(`INSERT INTO loans`)).
		WithArgs(l.LoanNumber, l.Kind, l.CustomerID, l.BankName, "100000", "2",
			l.TenureMonths, l.StartDate, l.MaturityDate, l.GoldItemIDs, l.Status, "12000",
			"0", "0", "112000").
		WillReturnRows(pgxmock.NewRows(loanColumnNames).AddRow(testLoanRow(42)...))
	mockPool.ExpectCommit()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	created, err := repo.CreateLoanInTx(ctx, tx, l)
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)

	require.NoError(t, repo.CommitTx(ctx, tx))
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestUpdateLoanInTx(t *testing.T) {
	t.Run("updates the accounting fields", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanRepo(t)
		defer mockPool.Close()

		paid := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		l := &loan.Loan{
			ID:           42,
			Status:       loan.StatusActive,
			InterestPaid: decimal.NewFromInt(1000),
			AmountPaid:   decimal.NewFromInt(1000),
			Outstanding:  decimal.NewFromInt(111000),
		}
		l.LastPaymentDate = &paid

		mockPool.ExpectBegin()
		mockPool.ExpectExec(regexp.QuoteMeta(`UPDATE loans`)).
			WithArgs(l.Status, "1000", "1000", "111000", l.LastPaymentDate, l.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateLoanInTx(ctx, tx, l))
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("errors when no row matches", func(t *testing.T) {
		ctx, repo, mockPool := setupLoanRepo(t)
		defer mockPool.Close()

		l := &loan.Loan{
			ID:           9999,
			Status:       loan.StatusActive,
			InterestPaid: decimal.Zero,
			AmountPaid:   decimal.Zero,
			Outstanding:  decimal.Zero,
		}

		mockPool.ExpectBegin()
		mockPool.ExpectExec(regexp.QuoteMeta(`UPDATE loans`)).
			WithArgs(l.Status, "0", "0", "0", l.LastPaymentDate, l.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.UpdateLoanInTx(ctx, tx, l), apperrors.ErrDatabase)
	})
}

func TestRollbackTxToleratesClosedTx(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	mockPool.ExpectBegin()
	mockPool.ExpectRollback().WillReturnError(pgx.ErrTxClosed)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	// A rollback after commit is the deferred-cleanup path, not an error.
	assert.NoError(t, repo.RollbackTx(ctx, tx))
}

func TestListLoans(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	status := loan.StatusActive
	query := `SELECT ` + loanColumns + ` FROM loans WHERE kind = $1 AND status = $2 ORDER BY id DESC`
	mockPool.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(loan.KindCustomer, status).
		WillReturnRows(pgxmock.NewRows(loanColumnNames).
			AddRow(testLoanRow(43)...).
			AddRow(testLoanRow(42)...))

	loans, err := repo.ListLoans(ctx, loan.KindCustomer, &status)
	require.NoError(t, err)
	assert.Len(t, loans, 2)
	assert.Equal(t, int64(43), loans[0].ID)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestInsertTransactionInTx(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	txn := &loan.Transaction{
		TransactionType: loan.TransactionTypeRepayment,
		LoanID:          42,
		Amount:          decimal.NewFromInt(1000),
		Description:     "Repayment for loan CL-20250115-A1B2C3D4",
		TransactionDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	mockPool.ExpectBegin()
	mockPool.ExpectExec(regexp.QuoteMeta(`INSERT INTO transactions`)).
		WithArgs(txn.TransactionType, txn.LoanID, "1000", txn.Description, txn.TransactionDate).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.InsertTransactionInTx(ctx, tx, txn))
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestGetPortfolioTotals(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*)`)).
		WithArgs(loan.KindCustomer, loan.StatusActive).
		WillReturnRows(pgxmock.NewRows([]string{"count", "principal", "interest", "outstanding"}).
			AddRow(int64(12), "500000", "60000", "480000"))

	totals, err := repo.GetPortfolioTotals(ctx, loan.KindCustomer)
	require.NoError(t, err)
	assert.Equal(t, int64(12), totals.ActiveCount)
	assert.True(t, totals.TotalPrincipal.Equal(decimal.NewFromInt(500000)))
	assert.True(t, totals.TotalInterest.Equal(decimal.NewFromInt(60000)))
	assert.True(t, totals.TotalOutstanding.Equal(decimal.NewFromInt(480000)))
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestCountLoansByStatus(t *testing.T) {
	ctx, repo, mockPool := setupLoanRepo(t)
	defer mockPool.Close()

	query := `SELECT status, COUNT(*) FROM loans WHERE kind = $1 GROUP BY status`
	mockPool.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(loan.KindCustomer).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow(loan.StatusActive, int64(12)).
			AddRow(loan.StatusClosed, int64(30)))

	counts, err := repo.CountLoansByStatus(ctx, loan.KindCustomer)
	require.NoError(t, err)
	assert.Len(t, counts, 2)
	assert.Equal(t, loan.StatusActive, counts[0].Status)
	assert.Equal(t, int64(12), counts[0].Count)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}
