// Package notification records and dispatches the SMS messages the business
// sends on loan lifecycle changes. Dispatch is best effort: a failed or
// unsent SMS never affects accounting state.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"goldloan-engine/internal/domain/loan"
	"goldloan-engine/internal/pkg/money"
)

const (
	TypeLoanCreated     = "LOAN_CREATED"
	TypePaymentReceived = "PAYMENT_RECEIVED"

	StatusSent   = "SENT"
	StatusFailed = "FAILED"
)

type SMS struct {
	ID          int64
	PhoneNumber string
	Message     string
	Type        string
	ReferenceID int64
	Status      string
	SentAt      time.Time
}

type Repository interface {
	InsertSMS(ctx context.Context, sms *SMS) error
	ListSMSByReference(ctx context.Context, referenceID int64) ([]*SMS, error)
}

// Sender is the delivery gateway. The default implementation only logs; a
// real gateway slots in behind the same interface.
type Sender interface {
	Send(ctx context.Context, phoneNumber, message string) error
}

type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, phoneNumber, message string) error {
	s.Logger.InfoContext(ctx, "SMS dispatched", "to", phoneNumber, "message", message)
	return nil
}

// PhoneLookup resolves a customer's phone number; the customer service
// satisfies it through a thin adapter at startup.
type PhoneLookup interface {
	PhoneNumberForCustomer(ctx context.Context, customerID int64) (string, error)
}

type Service struct {
	repo   Repository
	sender Sender
	phones PhoneLookup
	logger *slog.Logger
}

func NewService(repo Repository, sender Sender, phones PhoneLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		sender: sender,
		phones: phones,
		logger: logger.With("component", "NotificationService"),
	}
}

var _ loan.Notifier = (*Service)(nil)

func (s *Service) LoanCreated(ctx context.Context, l *loan.Loan) {
	if l.Kind != loan.KindCustomer {
		return
	}
	msg := fmt.Sprintf("Your gold loan of %s has been approved. Loan Number: %s. Maturity Date: %s",
		money.Format(l.PrincipalAmount), l.LoanNumber, l.MaturityDate.Format("2006-01-02"))
	s.dispatch(ctx, l, TypeLoanCreated, msg)
}

func (s *Service) PaymentReceived(ctx context.Context, l *loan.Loan, amount decimal.Decimal) {
	if l.Kind != loan.KindCustomer {
		return
	}
	msg := fmt.Sprintf("Payment of %s received for loan %s. Outstanding: %s",
		money.Format(amount), l.LoanNumber, money.Format(l.Outstanding))
	s.dispatch(ctx, l, TypePaymentReceived, msg)
}

func (s *Service) dispatch(ctx context.Context, l *loan.Loan, smsType, message string) {
	phone, err := s.customerPhone(ctx, l)
	if err != nil {
		s.logger.WarnContext(ctx, "No phone number for SMS", "loan_id", l.ID, "error", err)
		return
	}

	status := StatusSent
	if err := s.sender.Send(ctx, phone, message); err != nil {
		s.logger.WarnContext(ctx, "SMS delivery failed", "loan_id", l.ID, "error", err)
		status = StatusFailed
	}

	record := &SMS{
		PhoneNumber: phone,
		Message:     message,
		Type:        smsType,
		ReferenceID: l.ID,
		Status:      status,
		SentAt:      time.Now(),
	}
	if err := s.repo.InsertSMS(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "Failed to record SMS", "loan_id", l.ID, "error", err)
	}
}

func (s *Service) customerPhone(ctx context.Context, l *loan.Loan) (string, error) {
	if s.phones == nil {
		return "", fmt.Errorf("phone lookup not configured")
	}
	return s.phones.PhoneNumberForCustomer(ctx, l.CustomerID)
}
