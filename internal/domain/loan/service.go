package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"goldloan-engine/internal/domain/customer"
	"goldloan-engine/internal/domain/golditem"
	"goldloan-engine/internal/event"
	"goldloan-engine/internal/infrastructure/monitoring"
	"goldloan-engine/internal/pkg/apperrors"
	"goldloan-engine/internal/pkg/money"
)

// Policies holds the configured bounds per loan kind.
type Policies struct {
	Customer Policy
	Bank     Policy
}

func (p Policies) For(kind Kind) Policy {
	if kind == KindBank {
		return p.Bank
	}
	return p.Customer
}

// NewPolicy parses the configured rate bound. Rates travel as decimal strings
// end to end so a config value like "2.5" never picks up float noise.
func NewPolicy(maxMonthlyRate string, maxTenureMonths int) (Policy, error) {
	rate, err := money.Parse(maxMonthlyRate)
	if err != nil {
		return Policy{}, fmt.Errorf("invalid policy rate: %w", err)
	}
	if maxTenureMonths < 1 {
		return Policy{}, fmt.Errorf("invalid policy tenure %d", maxTenureMonths)
	}
	return Policy{MaxMonthlyRate: rate, MaxTenureMonths: maxTenureMonths}, nil
}

type CreateLoanInput struct {
	Kind         Kind
	CustomerID   int64
	BankName     string
	Principal    decimal.Decimal
	MonthlyRate  decimal.Decimal
	TenureMonths int
	GoldItemIDs  []int64
	StartDate    time.Time
}

// Notifier is what the engine needs from the SMS layer; the notification
// package implements it. Delivery is best effort and never rolls back
// committed accounting state.
type Notifier interface {
	LoanCreated(ctx context.Context, l *Loan)
	PaymentReceived(ctx context.Context, l *Loan, amount decimal.Decimal)
}

type Service interface {
	CreateLoan(ctx context.Context, in CreateLoanInput) (*Loan, error)

	GetLoan(ctx context.Context, kind Kind, loanID int64) (*Loan, error)

	ListLoans(ctx context.Context, kind Kind, status *Status) ([]*Loan, error)

	ListLoansByCustomer(ctx context.Context, customerID int64) ([]*Loan, error)

	ListOverdueLoans(ctx context.Context, kind Kind, now time.Time) ([]*Loan, error)

	ApplyRepayment(ctx context.Context, kind Kind, loanID int64, amount decimal.Decimal) (*Loan, error)

	// ExpireOverdueLoans marks every active loan past maturity as DEFAULTED
	// and returns the loans transitioned in this run. Running it again on the
	// same state transitions nothing.
	ExpireOverdueLoans(ctx context.Context, now time.Time) ([]*Loan, error)

	ListTransactions(ctx context.Context, loanID int64) ([]*Transaction, error)
}

type serviceImpl struct {
	repo            Repository
	ledger          golditem.Ledger
	customerService customer.Service
	events          event.Publisher
	notifier        Notifier
	policies        Policies
	logger          *slog.Logger
}

func NewService(
	repo Repository,
	ledger golditem.Ledger,
	customerService customer.Service,
	events event.Publisher,
	notifier Notifier,
	policies Policies,
	logger *slog.Logger,
) Service {
	return &serviceImpl{
		repo:            repo,
		ledger:          ledger,
		customerService: customerService,
		events:          events,
		notifier:        notifier,
		policies:        policies,
		logger:          logger.With("component", "LoanService"),
	}
}

func (s *serviceImpl) CreateLoan(ctx context.Context, in CreateLoanInput) (createdLoan *Loan, err error) {
	s.logger.InfoContext(ctx, "Creating new loan", "kind", in.Kind)

	switch in.Kind {
	case KindCustomer:
		if _, err := s.customerService.GetCustomer(ctx, in.CustomerID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: customer %d not found", apperrors.ErrValidation, in.CustomerID)
			}
			return nil, fmt.Errorf("failed to verify customer: %w", err)
		}
	case KindBank:
		if in.BankName == "" {
			return nil, apperrors.NewValidationError("bankName", "is required")
		}
	default:
		return nil, apperrors.NewValidationError("kind", fmt.Sprintf("unknown loan kind %q", in.Kind))
	}

	newLoan, err := NewLoan(in.Kind, in.Principal, in.MonthlyRate, in.TenureMonths, in.GoldItemIDs, in.StartDate, s.policies.For(in.Kind))
	if err != nil {
		s.logger.WarnContext(ctx, "Loan validation failed", "error", err)
		return nil, err
	}
	newLoan.CustomerID = in.CustomerID
	newLoan.BankName = in.BankName

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: could not begin transaction: %v", apperrors.ErrInternalServer, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		} else if err != nil {
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	// Reservation and loan insert share one transaction: if any item cannot
	// be pledged, no loan exists and no item moved.
	switch in.Kind {
	case KindCustomer:
		_, err = s.ledger.ReserveForCustomerLoan(ctx, tx, in.GoldItemIDs, in.CustomerID)
	case KindBank:
		_, err = s.ledger.ReserveForBankLoan(ctx, tx, in.GoldItemIDs)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Gold item reservation failed", "error", err)
		return nil, err
	}

	createdLoan, err = s.repo.CreateLoanInTx(ctx, tx, newLoan)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return nil, err
	}

	err = s.repo.InsertTransactionInTx(ctx, tx, &Transaction{
		TransactionType: TransactionTypeDisbursement,
		LoanID:          createdLoan.ID,
		Amount:          createdLoan.PrincipalAmount,
		Description:     fmt.Sprintf("Disbursement for %s", createdLoan.LoanNumber),
		TransactionDate: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err = s.repo.CommitTx(ctx, tx); err != nil {
		return nil, err
	}

	monitoring.RecordLoanCreated(string(createdLoan.Kind))
	monitoring.RecordGoldItemsPledged(string(createdLoan.Kind), len(createdLoan.GoldItemIDs))
	s.publishLoanCreated(ctx, createdLoan)
	s.notifier.LoanCreated(ctx, createdLoan)

	s.logger.InfoContext(ctx, "Loan created successfully",
		"loan_id", createdLoan.ID, "loan_number", createdLoan.LoanNumber,
		"outstanding", money.Format(createdLoan.Outstanding))
	return createdLoan, nil
}

func (s *serviceImpl) GetLoan(ctx context.Context, kind Kind, loanID int64) (*Loan, error) {
	l, err := s.repo.GetLoanByID(ctx, kind, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: loan %d", apperrors.ErrNotFound, loanID)
		}
		return nil, err
	}
	return l, nil
}

func (s *serviceImpl) ListLoans(ctx context.Context, kind Kind, status *Status) ([]*Loan, error) {
	return s.repo.ListLoans(ctx, kind, status)
}

func (s *serviceImpl) ListLoansByCustomer(ctx context.Context, customerID int64) ([]*Loan, error) {
	return s.repo.ListLoansByCustomer(ctx, customerID)
}

func (s *serviceImpl) ListOverdueLoans(ctx context.Context, kind Kind, now time.Time) ([]*Loan, error) {
	return s.repo.ListOverdueLoans(ctx, kind, now)
}

func (s *serviceImpl) ApplyRepayment(ctx context.Context, kind Kind, loanID int64, amount decimal.Decimal) (updated *Loan, err error) {
	s.logger.InfoContext(ctx, "Applying repayment", "loan_id", loanID, "amount", money.Format(amount))

	defer func() {
		switch {
		case err == nil:
			monitoring.RecordRepayment("success")
		case errors.Is(err, apperrors.ErrInvalidAmount):
			monitoring.RecordRepayment("failure_amount")
		case errors.Is(err, apperrors.ErrLoanNotActive):
			monitoring.RecordRepayment("failure_not_active")
		case errors.Is(err, apperrors.ErrNotFound):
			monitoring.RecordRepayment("failure_not_found")
		default:
			monitoring.RecordRepayment("failure_internal")
		}
	}()

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: could not begin transaction: %v", apperrors.ErrInternalServer, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		} else if err != nil {
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	// The row lock serializes concurrent repayments on the same loan; two
	// writers can never both read the same outstanding balance.
	l, err := s.repo.GetLoanForUpdate(ctx, tx, kind, loanID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err = l.ApplyRepayment(amount, now); err != nil {
		s.logger.WarnContext(ctx, "Repayment rejected", "loan_id", loanID, "error", err)
		return nil, err
	}

	if err = s.repo.UpdateLoanInTx(ctx, tx, l); err != nil {
		return nil, err
	}

	txType := TransactionTypeRepayment
	if kind == KindBank {
		txType = TransactionTypeBankPayment
	}
	err = s.repo.InsertTransactionInTx(ctx, tx, &Transaction{
		TransactionType: txType,
		LoanID:          l.ID,
		Amount:          amount,
		Description:     fmt.Sprintf("Payment against %s", l.LoanNumber),
		TransactionDate: now,
	})
	if err != nil {
		return nil, err
	}

	if l.Status == StatusClosed {
		switch kind {
		case KindCustomer:
			err = s.ledger.ReleaseFromCustomerLoan(ctx, tx, l.GoldItemIDs)
		case KindBank:
			err = s.ledger.ReleaseFromBankLoan(ctx, tx, l.GoldItemIDs)
		}
		if err != nil {
			return nil, err
		}
	}

	if err = s.repo.CommitTx(ctx, tx); err != nil {
		return nil, err
	}

	s.publishPaymentReceived(ctx, l, amount)
	s.notifier.PaymentReceived(ctx, l, amount)
	if l.Status == StatusClosed {
		s.publishLoanClosed(ctx, l)
		s.logger.InfoContext(ctx, "Loan closed, collateral released", "loan_id", l.ID, "loan_number", l.LoanNumber)
	}

	return l, nil
}

func (s *serviceImpl) ExpireOverdueLoans(ctx context.Context, now time.Time) (defaulted []*Loan, err error) {
	s.logger.InfoContext(ctx, "Running overdue loan sweep", "as_of", now)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: could not begin transaction: %v", apperrors.ErrInternalServer, err)
	}
	defer func() {
		if err != nil {
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	overdue, err := s.repo.ListOverdueForUpdate(ctx, tx, now)
	if err != nil {
		return nil, err
	}

	defaulted = make([]*Loan, 0, len(overdue))
	for _, l := range overdue {
		if !l.MarkDefaulted(now) {
			continue
		}
		if err = s.repo.UpdateLoanInTx(ctx, tx, l); err != nil {
			return nil, err
		}
		defaulted = append(defaulted, l)
	}

	if err = s.repo.CommitTx(ctx, tx); err != nil {
		return nil, err
	}

	for _, l := range defaulted {
		monitoring.RecordLoanDefaulted()
		s.publishLoanDefaulted(ctx, l, now)
	}

	s.logger.InfoContext(ctx, "Overdue loan sweep finished", "defaulted", len(defaulted))
	return defaulted, nil
}

func (s *serviceImpl) ListTransactions(ctx context.Context, loanID int64) ([]*Transaction, error) {
	return s.repo.ListTransactionsByLoan(ctx, loanID)
}

func (s *serviceImpl) publishLoanCreated(ctx context.Context, l *Loan) {
	evt := event.LoanCreatedEvent{
		LoanID:       l.ID,
		LoanNumber:   l.LoanNumber,
		Kind:         string(l.Kind),
		Principal:    money.Format(l.PrincipalAmount),
		Outstanding:  money.Format(l.Outstanding),
		MaturityDate: l.MaturityDate,
		Timestamp:    time.Now(),
	}
	if err := s.events.PublishLoanCreated(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish loan created event", "loan_id", l.ID, "error", err)
	}
}

func (s *serviceImpl) publishPaymentReceived(ctx context.Context, l *Loan, amount decimal.Decimal) {
	evt := event.PaymentReceivedEvent{
		LoanID:      l.ID,
		LoanNumber:  l.LoanNumber,
		Kind:        string(l.Kind),
		Amount:      money.Format(amount),
		Outstanding: money.Format(l.Outstanding),
		Timestamp:   time.Now(),
	}
	if err := s.events.PublishPaymentReceived(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish payment event", "loan_id", l.ID, "error", err)
	}
}

func (s *serviceImpl) publishLoanClosed(ctx context.Context, l *Loan) {
	evt := event.LoanClosedEvent{
		LoanID:     l.ID,
		LoanNumber: l.LoanNumber,
		Kind:       string(l.Kind),
		Timestamp:  time.Now(),
	}
	if err := s.events.PublishLoanClosed(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish loan closed event", "loan_id", l.ID, "error", err)
	}
}

func (s *serviceImpl) publishLoanDefaulted(ctx context.Context, l *Loan, now time.Time) {
	evt := event.LoanDefaultedEvent{
		LoanID:       l.ID,
		LoanNumber:   l.LoanNumber,
		Kind:         string(l.Kind),
		Outstanding:  money.Format(l.Outstanding),
		MaturityDate: l.MaturityDate,
		Timestamp:    now,
	}
	if err := s.events.PublishLoanDefaulted(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish loan defaulted event", "loan_id", l.ID, "error", err)
	}
}
