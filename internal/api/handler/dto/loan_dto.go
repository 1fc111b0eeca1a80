package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"goldloan-engine/internal/domain/loan"
)

type CreateCustomerLoanRequest struct {
	CustomerID   int64   `json:"customerId"`
	Principal    string  `json:"principalAmount"`
	MonthlyRate  string  `json:"interestRate"`
	TenureMonths int     `json:"tenureMonths"`
	GoldItemIDs  []int64 `json:"goldItemIds"`
	StartDate    string  `json:"startDate,omitempty"`
}

func (r *CreateCustomerLoanRequest) Validate() error {
	if r.CustomerID <= 0 {
		return fmt.Errorf("customerId must be a positive number")
	}
	return validateLoanTerms(r.Principal, r.MonthlyRate, r.TenureMonths, r.GoldItemIDs, r.StartDate)
}

type CreateBankLoanRequest struct {
	BankName     string  `json:"bankName"`
	Principal    string  `json:"principalAmount"`
	MonthlyRate  string  `json:"interestRate"`
	TenureMonths int     `json:"tenureMonths"`
	GoldItemIDs  []int64 `json:"goldItemIds"`
	StartDate    string  `json:"startDate,omitempty"`
}

func (r *CreateBankLoanRequest) Validate() error {
	if strings.TrimSpace(r.BankName) == "" {
		return fmt.Errorf("bankName cannot be empty")
	}
	return validateLoanTerms(r.Principal, r.MonthlyRate, r.TenureMonths, r.GoldItemIDs, r.StartDate)
}

func validateLoanTerms(principal, rate string, tenure int, itemIDs []int64, startDate string) error {
	if _, err := decimal.NewFromString(principal); err != nil {
		return fmt.Errorf("invalid principalAmount: %w", err)
	}
	if _, err := decimal.NewFromString(rate); err != nil {
		return fmt.Errorf("invalid interestRate: %w", err)
	}
	if tenure <= 0 {
		return fmt.Errorf("tenureMonths must be positive")
	}
	if len(itemIDs) == 0 {
		return fmt.Errorf("goldItemIds cannot be empty")
	}
	if startDate != "" {
		if _, err := time.Parse(time.RFC3339[:10], startDate); err != nil {
			return fmt.Errorf("invalid startDate format (use YYYY-MM-DD): %w", err)
		}
	}
	return nil
}

type LoanResponse struct {
	ID              int64      `json:"id"`
	LoanNumber      string     `json:"loanNumber"`
	Kind            string     `json:"kind"`
	CustomerID      int64      `json:"customerId,omitempty"`
	BankName        string     `json:"bankName,omitempty"`
	PrincipalAmount string     `json:"principalAmount"`
	InterestRate    string     `json:"interestRate"`
	TenureMonths    int        `json:"tenureMonths"`
	StartDate       string     `json:"startDate"`
	MaturityDate    string     `json:"maturityDate"`
	GoldItemIDs     []int64    `json:"goldItemIds"`
	Status          string     `json:"status"`
	TotalInterest   string     `json:"totalInterest"`
	InterestPaid    string     `json:"interestPaid"`
	AmountPaid      string     `json:"amountPaid"`
	Outstanding     string     `json:"outstandingAmount"`
	LastPaymentDate *time.Time `json:"lastPaymentDate,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func NewLoanResponse(l *loan.Loan) LoanResponse {
	return LoanResponse{
		ID:              l.ID,
		LoanNumber:      l.LoanNumber,
		Kind:            string(l.Kind),
		CustomerID:      l.CustomerID,
		BankName:        l.BankName,
		PrincipalAmount: l.PrincipalAmount.StringFixed(2),
		InterestRate:    l.InterestRate.String(),
		TenureMonths:    l.TenureMonths,
		StartDate:       l.StartDate.Format(time.RFC3339[:10]),
		MaturityDate:    l.MaturityDate.Format(time.RFC3339[:10]),
		GoldItemIDs:     l.GoldItemIDs,
		Status:          string(l.Status),
		TotalInterest:   l.TotalInterest.StringFixed(2),
		InterestPaid:    l.InterestPaid.StringFixed(2),
		AmountPaid:      l.AmountPaid.StringFixed(2),
		Outstanding:     l.Outstanding.StringFixed(2),
		LastPaymentDate: l.LastPaymentDate,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

func NewLoanListResponse(loans []*loan.Loan) []LoanResponse {
	out := make([]LoanResponse, len(loans))
	for i, l := range loans {
		out[i] = NewLoanResponse(l)
	}
	return out
}

type TransactionResponse struct {
	ID              int64     `json:"id"`
	TransactionType string    `json:"transactionType"`
	LoanID          int64     `json:"loanId"`
	Amount          string    `json:"amount"`
	Description     string    `json:"description"`
	TransactionDate time.Time `json:"transactionDate"`
}

func NewTransactionListResponse(txns []*loan.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		out[i] = TransactionResponse{
			ID:              t.ID,
			TransactionType: t.TransactionType,
			LoanID:          t.LoanID,
			Amount:          t.Amount.StringFixed(2),
			Description:     t.Description,
			TransactionDate: t.TransactionDate,
		}
	}
	return out
}
