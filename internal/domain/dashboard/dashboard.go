package dashboard

import (
	"time"

	"github.com/shopspring/decimal"
)

// Metrics is the point-in-time portfolio aggregate. It is derived, never
// authoritative: every field is recomputable from the loan and customer sets.
type Metrics struct {
	TotalInvestment         decimal.Decimal
	TotalReceivableInterest decimal.Decimal
	TotalPayableInterest    decimal.Decimal
	TotalBankLoans          decimal.Decimal
	NetProfit               decimal.Decimal

	ActiveCustomerLoans int64
	ActiveBankLoans     int64
	TotalCustomers      int64

	TotalGoldWeightPledged decimal.Decimal

	MonthlyLoanTrend       []TrendPoint
	LoanStatusDistribution map[string]int64

	GeneratedAt time.Time
}

// TrendPoint is one calendar-month bucket of originated customer-loan
// principal, keyed by the month of the loan's start date.
type TrendPoint struct {
	Month time.Time
	Total decimal.Decimal
}

// Snapshot is a persisted historical record of the aggregate. Snapshots are
// written once and never mutated.
type Snapshot struct {
	ID                      int64
	SummaryDate             time.Time
	TotalInvestment         decimal.Decimal
	TotalReceivableInterest decimal.Decimal
	TotalPayableInterest    decimal.Decimal
	TotalBankLoans          decimal.Decimal
	NetProfit               decimal.Decimal
	ActiveCustomerLoans     int64
	ActiveBankLoans         int64
	TotalGoldWeightPledged  decimal.Decimal
}
