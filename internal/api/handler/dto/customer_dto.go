package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"goldloan-engine/internal/domain/customer"
)

type CustomerRequest struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phoneNumber"`
	Address       string `json:"address"`
	IDProofType   string `json:"idProofType"`
	IDProofNumber string `json:"idProofNumber"`
	Occupation    string `json:"occupation"`
	AnnualIncome  string `json:"annualIncome,omitempty"`
}

func (r *CustomerRequest) Validate() error {
	if strings.TrimSpace(r.FullName) == "" {
		return fmt.Errorf("fullName cannot be empty")
	}
	if strings.TrimSpace(r.PhoneNumber) == "" {
		return fmt.Errorf("phoneNumber cannot be empty")
	}
	if r.AnnualIncome != "" {
		if _, err := decimal.NewFromString(r.AnnualIncome); err != nil {
			return fmt.Errorf("invalid annualIncome: %w", err)
		}
	}
	return nil
}

func (r *CustomerRequest) ToDomain() *customer.Customer {
	income := decimal.Zero
	if r.AnnualIncome != "" {
		income, _ = decimal.NewFromString(r.AnnualIncome)
	}
	return &customer.Customer{
		FullName:      r.FullName,
		Email:         r.Email,
		PhoneNumber:   r.PhoneNumber,
		Address:       r.Address,
		IDProofType:   r.IDProofType,
		IDProofNumber: r.IDProofNumber,
		Occupation:    r.Occupation,
		AnnualIncome:  income,
	}
}

type CustomerResponse struct {
	ID            int64     `json:"id"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	PhoneNumber   string    `json:"phoneNumber"`
	Address       string    `json:"address"`
	IDProofType   string    `json:"idProofType"`
	IDProofNumber string    `json:"idProofNumber"`
	Occupation    string    `json:"occupation"`
	AnnualIncome  string    `json:"annualIncome"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func NewCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:            c.ID,
		FullName:      c.FullName,
		Email:         c.Email,
		PhoneNumber:   c.PhoneNumber,
		Address:       c.Address,
		IDProofType:   c.IDProofType,
		IDProofNumber: c.IDProofNumber,
		Occupation:    c.Occupation,
		AnnualIncome:  c.AnnualIncome.StringFixed(2),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func NewCustomerListResponse(customers []*customer.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i, c := range customers {
		out[i] = NewCustomerResponse(c)
	}
	return out
}
