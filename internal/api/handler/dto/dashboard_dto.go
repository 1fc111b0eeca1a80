package dto

import (
	"time"

	"goldloan-engine/internal/domain/dashboard"
)

type TrendPointResponse struct {
	Month string `json:"month"`
	Total string `json:"total"`
}

type DashboardResponse struct {
	TotalInvestment         string               `json:"totalInvestment"`
	TotalReceivableInterest string               `json:"totalReceivableInterest"`
	TotalPayableInterest    string               `json:"totalPayableInterest"`
	TotalBankLoans          string               `json:"totalBankLoans"`
	NetProfit               string               `json:"netProfit"`
	ActiveCustomerLoans     int64                `json:"activeCustomerLoans"`
	ActiveBankLoans         int64                `json:"activeBankLoans"`
	TotalCustomers          int64                `json:"totalCustomers"`
	TotalGoldWeightPledged  string               `json:"totalGoldWeightPledged"`
	MonthlyLoanTrend        []TrendPointResponse `json:"monthlyLoanTrend"`
	LoanStatusDistribution  map[string]int64     `json:"loanStatusDistribution"`
	GeneratedAt             time.Time            `json:"generatedAt"`
}

func NewDashboardResponse(m *dashboard.Metrics) DashboardResponse {
	trend := make([]TrendPointResponse, len(m.MonthlyLoanTrend))
	for i, p := range m.MonthlyLoanTrend {
		trend[i] = TrendPointResponse{
			Month: p.Month.Format("2006-01"),
			Total: p.Total.StringFixed(2),
		}
	}
	return DashboardResponse{
		TotalInvestment:         m.TotalInvestment.StringFixed(2),
		TotalReceivableInterest: m.TotalReceivableInterest.StringFixed(2),
		TotalPayableInterest:    m.TotalPayableInterest.StringFixed(2),
		TotalBankLoans:          m.TotalBankLoans.StringFixed(2),
		NetProfit:               m.NetProfit.StringFixed(2),
		ActiveCustomerLoans:     m.ActiveCustomerLoans,
		ActiveBankLoans:         m.ActiveBankLoans,
		TotalCustomers:          m.TotalCustomers,
		TotalGoldWeightPledged:  m.TotalGoldWeightPledged.String(),
		MonthlyLoanTrend:        trend,
		LoanStatusDistribution:  m.LoanStatusDistribution,
		GeneratedAt:             m.GeneratedAt,
	}
}

type SnapshotResponse struct {
	ID                      int64     `json:"id"`
	SummaryDate             time.Time `json:"summaryDate"`
	TotalInvestment         string    `json:"totalInvestment"`
	TotalReceivableInterest string    `json:"totalReceivableInterest"`
	TotalPayableInterest    string    `json:"totalPayableInterest"`
	TotalBankLoans          string    `json:"totalBankLoans"`
	NetProfit               string    `json:"netProfit"`
	ActiveCustomerLoans     int64     `json:"activeCustomerLoans"`
	ActiveBankLoans         int64     `json:"activeBankLoans"`
	TotalGoldWeightPledged  string    `json:"totalGoldWeightPledged"`
}

func NewSnapshotResponse(s *dashboard.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:                      s.ID,
		SummaryDate:             s.SummaryDate,
		TotalInvestment:         s.TotalInvestment.StringFixed(2),
		TotalReceivableInterest: s.TotalReceivableInterest.StringFixed(2),
		TotalPayableInterest:    s.TotalPayableInterest.StringFixed(2),
		TotalBankLoans:          s.TotalBankLoans.StringFixed(2),
		NetProfit:               s.NetProfit.StringFixed(2),
		ActiveCustomerLoans:     s.ActiveCustomerLoans,
		ActiveBankLoans:         s.ActiveBankLoans,
		TotalGoldWeightPledged:  s.TotalGoldWeightPledged.String(),
	}
}

func NewSnapshotListResponse(snapshots []*dashboard.Snapshot) []SnapshotResponse {
	out := make([]SnapshotResponse, len(snapshots))
	for i, s := range snapshots {
		out[i] = NewSnapshotResponse(s)
	}
	return out
}
