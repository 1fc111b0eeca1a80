package loan

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"goldloan-engine/internal/pkg/apperrors"
	"goldloan-engine/internal/pkg/money"
)

// Kind distinguishes money lent to a customer against pledged jewellery from
// money the business borrows from a bank against its own stock. The two share
// one accounting model; only the counterparty and the item-status transitions
// differ.
type Kind string

const (
	KindCustomer Kind = "CUSTOMER"
	KindBank     Kind = "BANK"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusClosed    Status = "CLOSED"
	StatusDefaulted Status = "DEFAULTED"
)

var hundred = decimal.NewFromInt(100)

// Policy bounds loan terms. Loaded from configuration; the zero value rejects
// everything.
type Policy struct {
	MaxMonthlyRate  decimal.Decimal
	MaxTenureMonths int
}

type Loan struct {
	ID         int64
	LoanNumber string
	Kind       Kind

	// CustomerID is set for customer loans, BankName for bank loans.
	CustomerID int64
	BankName   string

	PrincipalAmount decimal.Decimal
	InterestRate    decimal.Decimal // percent per month
	TenureMonths    int
	StartDate       time.Time
	MaturityDate    time.Time
	GoldItemIDs     []int64
	Status          Status

	// TotalInterest is flat simple interest over the full tenure:
	// principal * rate/100 * tenure. It never compounds.
	TotalInterest   decimal.Decimal
	InterestPaid    decimal.Decimal
	AmountPaid      decimal.Decimal
	Outstanding     decimal.Decimal
	LastPaymentDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewLoan(kind Kind, principal, monthlyRate decimal.Decimal, tenureMonths int, itemIDs []int64, startDate time.Time, policy Policy) (*Loan, error) {
	if !principal.IsPositive() {
		return nil, apperrors.NewValidationError("principalAmount", "must be greater than zero")
	}
	if !monthlyRate.IsPositive() {
		return nil, apperrors.NewValidationError("interestRate", "must be greater than zero")
	}
	if monthlyRate.GreaterThan(policy.MaxMonthlyRate) {
		return nil, apperrors.NewValidationError("interestRate",
			fmt.Sprintf("must not exceed %s%% per month", policy.MaxMonthlyRate))
	}
	if tenureMonths < 1 {
		return nil, apperrors.NewValidationError("tenureMonths", "must be at least 1")
	}
	if tenureMonths > policy.MaxTenureMonths {
		return nil, apperrors.NewValidationError("tenureMonths",
			fmt.Sprintf("must not exceed %d months", policy.MaxTenureMonths))
	}
	if len(itemIDs) == 0 {
		return nil, apperrors.NewValidationError("goldItemIds", "at least one gold item is required")
	}
	if startDate.IsZero() {
		startDate = time.Now().Truncate(24 * time.Hour)
	}

	totalInterest := principal.Mul(monthlyRate).Div(hundred).Mul(decimal.NewFromInt(int64(tenureMonths)))

	l := &Loan{
		LoanNumber:      NewLoanNumber(kind, startDate),
		Kind:            kind,
		PrincipalAmount: principal,
		InterestRate:    monthlyRate,
		TenureMonths:    tenureMonths,
		StartDate:       startDate,
		MaturityDate:    money.AddMonths(startDate, tenureMonths),
		GoldItemIDs:     itemIDs,
		Status:          StatusActive,
		TotalInterest:   totalInterest,
		InterestPaid:    decimal.Zero,
		AmountPaid:      decimal.Zero,
		Outstanding:     principal.Add(totalInterest),
	}
	return l, nil
}

// ApplyRepayment allocates a payment against the loan, interest first: the
// interest bucket fills before anything counts against principal. A payment
// that drives the outstanding balance to exactly zero closes the loan.
func (l *Loan) ApplyRepayment(amount decimal.Decimal, now time.Time) error {
	if l.Status != StatusActive {
		return fmt.Errorf("%w: loan %s is %s", apperrors.ErrLoanNotActive, l.LoanNumber, l.Status)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrInvalidAmount)
	}
	if amount.GreaterThan(l.Outstanding) {
		return fmt.Errorf("%w: amount %s exceeds outstanding balance %s",
			apperrors.ErrInvalidAmount, money.Format(amount), money.Format(l.Outstanding))
	}

	interestDue := l.TotalInterest.Sub(l.InterestPaid)
	interestPortion := amount
	if interestPortion.GreaterThan(interestDue) {
		interestPortion = interestDue
	}

	l.InterestPaid = l.InterestPaid.Add(interestPortion)
	l.AmountPaid = l.AmountPaid.Add(amount)
	l.Outstanding = l.Outstanding.Sub(amount)
	l.LastPaymentDate = &now

	if l.Outstanding.IsZero() {
		l.Status = StatusClosed
	}
	return nil
}

// MarkDefaulted transitions an active loan past its maturity date. Reports
// whether the loan changed, so a repeated sweep is a no-op.
func (l *Loan) MarkDefaulted(now time.Time) bool {
	if l.Status != StatusActive || !l.MaturityDate.Before(now) {
		return false
	}
	l.Status = StatusDefaulted
	return true
}

// IsOverdue reports whether the loan is active and past maturity.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == StatusActive && l.MaturityDate.Before(now)
}

// NewLoanNumber builds the human-readable reference, e.g. CL-20250829-7F3A91BC.
func NewLoanNumber(kind Kind, at time.Time) string {
	prefix := "CL"
	if kind == KindBank {
		prefix = "BL"
	}
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), suffix)
}
