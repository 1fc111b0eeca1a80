package golditem

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	// StatusAvailable means the item backs no loan at all.
	StatusAvailable Status = "AVAILABLE"
	// StatusPledged means the item collateralizes an active customer loan.
	StatusPledged Status = "PLEDGED"
	// StatusPledgedToBank means the item has been re-pledged to a bank
	// against a loan the business itself took out.
	StatusPledgedToBank Status = "PLEDGED_TO_BANK"
)

type GoldItem struct {
	ID             int64
	CustomerID     int64
	ItemType       string
	WeightInGrams  decimal.Decimal
	Purity         string
	Description    string
	EstimatedValue decimal.Decimal
	Status         Status
	ImageURL       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
