package loan

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Transaction is the audit record written for every disbursement and payment.
type Transaction struct {
	ID              int64
	TransactionType string
	LoanID          int64
	Amount          decimal.Decimal
	Description     string
	TransactionDate time.Time
}

const (
	TransactionTypeDisbursement = "DISBURSEMENT"
	TransactionTypeRepayment    = "REPAYMENT"
	TransactionTypeBankPayment  = "BANK_PAYMENT"
)

// PortfolioTotals is the per-kind aggregate the dashboard reads in one query
// instead of scanning loans row by row.
type PortfolioTotals struct {
	ActiveCount      int64
	TotalPrincipal   decimal.Decimal
	TotalInterest    decimal.Decimal
	TotalOutstanding decimal.Decimal
}

// MonthlyOrigination is one bucket of the originated-amount trend, keyed by
// the first day of the start-date's calendar month.
type MonthlyOrigination struct {
	Month time.Time
	Total decimal.Decimal
}

type StatusCount struct {
	Status Status
	Count  int64
}

type Repository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error

	CreateLoanInTx(ctx context.Context, tx pgx.Tx, l *Loan) (*Loan, error)

	GetLoanByID(ctx context.Context, kind Kind, loanID int64) (*Loan, error)

	// GetLoanForUpdate locks the loan row for the duration of the enclosing
	// transaction, serializing concurrent repayments on the same loan.
	GetLoanForUpdate(ctx context.Context, tx pgx.Tx, kind Kind, loanID int64) (*Loan, error)

	UpdateLoanInTx(ctx context.Context, tx pgx.Tx, l *Loan) error

	ListLoans(ctx context.Context, kind Kind, status *Status) ([]*Loan, error)

	ListLoansByCustomer(ctx context.Context, customerID int64) ([]*Loan, error)

	ListOverdueLoans(ctx context.Context, kind Kind, now time.Time) ([]*Loan, error)

	// ListOverdueForUpdate locks every active, past-maturity loan row so the
	// sweep and a concurrent repayment cannot race.
	ListOverdueForUpdate(ctx context.Context, tx pgx.Tx, now time.Time) ([]*Loan, error)

	InsertTransactionInTx(ctx context.Context, tx pgx.Tx, t *Transaction) error

	ListTransactionsByLoan(ctx context.Context, loanID int64) ([]*Transaction, error)

	GetPortfolioTotals(ctx context.Context, kind Kind) (*PortfolioTotals, error)

	GetMonthlyOriginations(ctx context.Context, kind Kind, months int, now time.Time) ([]MonthlyOrigination, error)

	CountLoansByStatus(ctx context.Context, kind Kind) ([]StatusCount, error)
}
