package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"goldloan-engine/internal/api/handler/dto"
	"goldloan-engine/internal/domain/loan"
	"goldloan-engine/internal/pkg/apperrors"
)

type LoanHandler struct {
	service loan.Service
	logger  *slog.Logger
}

func NewLoanHandler(s loan.Service, l *slog.Logger) *LoanHandler {
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

// CreateCustomerLoan disburses a loan to a customer against pledged items.
//
// @Summary Create a customer loan
// @Description Creates a loan against the customer's gold items. Every item must be AVAILABLE and owned by the borrower; otherwise nothing is created.
// @Tags CustomerLoans
// @Accept json
// @Produce json
// @Param request body dto.CreateCustomerLoanRequest true "Loan creation request payload"
// @Success 201 {object} dto.LoanResponse "Loan successfully created"
// @Failure 400 {object} dto.Response "Invalid request payload or validation error"
// @Failure 409 {object} dto.Response "One or more gold items cannot be pledged"
// @Router /admin/customer-loans [post]
// @Security BearerAuth
func (h *LoanHandler) CreateCustomerLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCustomerLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	h.createLoan(w, r, loan.CreateLoanInput{
		Kind:         loan.KindCustomer,
		CustomerID:   req.CustomerID,
		Principal:    mustDecimal(req.Principal),
		MonthlyRate:  mustDecimal(req.MonthlyRate),
		TenureMonths: req.TenureMonths,
		GoldItemIDs:  req.GoldItemIDs,
		StartDate:    parseDate(req.StartDate),
	})
}

// CreateBankLoan records a borrowing from a bank against already-pledged items.
//
// @Summary Create a bank loan
// @Description Records a loan the business takes from a bank, re-pledging PLEDGED gold items as security.
// @Tags BankLoans
// @Accept json
// @Produce json
// @Param request body dto.CreateBankLoanRequest true "Loan creation request payload"
// @Success 201 {object} dto.LoanResponse "Loan successfully created"
// @Failure 400 {object} dto.Response "Invalid request payload or validation error"
// @Failure 409 {object} dto.Response "One or more gold items cannot be re-pledged"
// @Router /admin/bank-loans [post]
// @Security BearerAuth
func (h *LoanHandler) CreateBankLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBankLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	h.createLoan(w, r, loan.CreateLoanInput{
		Kind:         loan.KindBank,
		BankName:     req.BankName,
		Principal:    mustDecimal(req.Principal),
		MonthlyRate:  mustDecimal(req.MonthlyRate),
		TenureMonths: req.TenureMonths,
		GoldItemIDs:  req.GoldItemIDs,
		StartDate:    parseDate(req.StartDate),
	})
}

func (h *LoanHandler) createLoan(w http.ResponseWriter, r *http.Request, in loan.CreateLoanInput) {
	created, err := h.service.CreateLoan(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.NewLoanResponse(created))
}

// GetCustomerLoan retrieves a customer loan.
//
// @Summary Retrieve customer loan details
// @Tags CustomerLoans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 404 {object} dto.Response "Loan not found"
// @Router /admin/customer-loans/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetCustomerLoan(w http.ResponseWriter, r *http.Request) {
	h.getLoan(w, r, loan.KindCustomer)
}

// GetBankLoan retrieves a bank loan.
//
// @Summary Retrieve bank loan details
// @Tags BankLoans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {object} dto.LoanResponse
// @Failure 404 {object} dto.Response "Loan not found"
// @Router /admin/bank-loans/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetBankLoan(w http.ResponseWriter, r *http.Request) {
	h.getLoan(w, r, loan.KindBank)
}

func (h *LoanHandler) getLoan(w http.ResponseWriter, r *http.Request, kind loan.Kind) {
	loanID, err := getIDParam(r, "loanID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	l, err := h.service.GetLoan(r.Context(), kind, loanID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanResponse(l))
}

// ListCustomerLoans lists customer loans, optionally filtered by status.
//
// @Summary List customer loans
// @Tags CustomerLoans
// @Produce json
// @Param status query string false "Filter by status (ACTIVE, CLOSED, DEFAULTED)"
// @Success 200 {array} dto.LoanResponse
// @Router /admin/customer-loans [get]
// @Security BearerAuth
func (h *LoanHandler) ListCustomerLoans(w http.ResponseWriter, r *http.Request) {
	h.listLoans(w, r, loan.KindCustomer)
}

// ListBankLoans lists bank loans, optionally filtered by status.
//
// @Summary List bank loans
// @Tags BankLoans
// @Produce json
// @Param status query string false "Filter by status (ACTIVE, CLOSED, DEFAULTED)"
// @Success 200 {array} dto.LoanResponse
// @Router /admin/bank-loans [get]
// @Security BearerAuth
func (h *LoanHandler) ListBankLoans(w http.ResponseWriter, r *http.Request) {
	h.listLoans(w, r, loan.KindBank)
}

func (h *LoanHandler) listLoans(w http.ResponseWriter, r *http.Request, kind loan.Kind) {
	var status *loan.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := loan.Status(raw)
		switch s {
		case loan.StatusActive, loan.StatusClosed, loan.StatusDefaulted:
			status = &s
		default:
			respondError(w, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidArgument, raw))
			return
		}
	}

	loans, err := h.service.ListLoans(r.Context(), kind, status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanListResponse(loans))
}

// ListLoansByCustomer lists every customer loan held by one borrower.
//
// @Summary List loans by customer
// @Tags CustomerLoans
// @Produce json
// @Param customerID path int true "Customer ID"
// @Success 200 {array} dto.LoanResponse
// @Router /admin/customer-loans/customer/{customerID} [get]
// @Security BearerAuth
func (h *LoanHandler) ListLoansByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getIDParam(r, "customerID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	loans, err := h.service.ListLoansByCustomer(r.Context(), customerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanListResponse(loans))
}

// ListExpiredCustomerLoans lists active customer loans past their maturity date.
//
// @Summary List expired (overdue) customer loans
// @Tags CustomerLoans
// @Produce json
// @Success 200 {array} dto.LoanResponse
// @Router /admin/customer-loans/expired [get]
// @Security BearerAuth
func (h *LoanHandler) ListExpiredCustomerLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.ListOverdueLoans(r.Context(), loan.KindCustomer, time.Now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanListResponse(loans))
}

// ApplyRepayment records a payment against a customer loan.
//
// @Summary Apply a repayment to a customer loan
// @Description Allocates the amount interest first, then principal. A payment that clears the outstanding balance closes the loan and releases the collateral.
// @Tags CustomerLoans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param amount query string true "Payment amount"
// @Success 200 {object} dto.LoanResponse "Updated loan state"
// @Failure 400 {object} dto.Response "Invalid or excessive amount"
// @Failure 404 {object} dto.Response "Loan not found"
// @Failure 409 {object} dto.Response "Loan is not active"
// @Router /admin/customer-loans/{loanID}/repayment [post]
// @Security BearerAuth
func (h *LoanHandler) ApplyRepayment(w http.ResponseWriter, r *http.Request) {
	h.applyPayment(w, r, loan.KindCustomer)
}

// ApplyBankPayment records a payment the business makes against a bank loan.
//
// @Summary Apply a payment to a bank loan
// @Tags BankLoans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param amount query string true "Payment amount"
// @Success 200 {object} dto.LoanResponse "Updated loan state"
// @Failure 400 {object} dto.Response "Invalid or excessive amount"
// @Failure 404 {object} dto.Response "Loan not found"
// @Failure 409 {object} dto.Response "Loan is not active"
// @Router /admin/bank-loans/{loanID}/payment [post]
// @Security BearerAuth
func (h *LoanHandler) ApplyBankPayment(w http.ResponseWriter, r *http.Request) {
	h.applyPayment(w, r, loan.KindBank)
}

func (h *LoanHandler) applyPayment(w http.ResponseWriter, r *http.Request, kind loan.Kind) {
	loanID, err := getIDParam(r, "loanID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	amount, err := getAmountQuery(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidAmount, err))
		return
	}

	updated, err := h.service.ApplyRepayment(r.Context(), kind, loanID, amount)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanResponse(updated))
}

// ListTransactions returns the audit ledger for a loan.
//
// @Summary List transactions for a loan
// @Tags Transactions
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {array} dto.TransactionResponse
// @Router /admin/transactions/loan/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	loanID, err := getIDParam(r, "loanID")
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	txns, err := h.service.ListTransactions(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewTransactionListResponse(txns))
}

// mustDecimal assumes the value already passed request validation.
func mustDecimal(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339[:10], s)
	return t
}
