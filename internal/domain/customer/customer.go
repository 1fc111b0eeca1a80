package customer

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a borrower's identity and KYC record. Loans reference it by ID
// only; nothing financial is embedded here.
type Customer struct {
	ID            int64
	FullName      string
	Email         string
	PhoneNumber   string
	Address       string
	IDProofType   string
	IDProofNumber string
	Occupation    string
	AnnualIncome  decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
