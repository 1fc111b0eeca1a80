package dashboard

import (
	"context"
	"log/slog"
	"time"

	"goldloan-engine/internal/domain/customer"
	"goldloan-engine/internal/domain/golditem"
	"goldloan-engine/internal/domain/loan"
)

const trendMonths = 6

type SnapshotRepository interface {
	InsertSnapshot(ctx context.Context, s *Snapshot) (*Snapshot, error)
	ListSnapshots(ctx context.Context) ([]*Snapshot, error)
}

// Cache fronts the aggregate with a short TTL. A stale read is acceptable:
// the dashboard is a derived artifact, not the ledger of record.
type Cache interface {
	GetMetrics(ctx context.Context) (*Metrics, bool)
	SetMetrics(ctx context.Context, m *Metrics)
}

type Service interface {
	GetMetrics(ctx context.Context) (*Metrics, error)
	SaveSnapshot(ctx context.Context) (*Snapshot, error)
	ListSnapshots(ctx context.Context) ([]*Snapshot, error)
}

type serviceImpl struct {
	loanRepo        loan.Repository
	goldItemRepo    golditem.Repository
	customerService customer.Service
	snapshots       SnapshotRepository
	cache           Cache
	logger          *slog.Logger
}

func NewService(
	loanRepo loan.Repository,
	goldItemRepo golditem.Repository,
	customerService customer.Service,
	snapshots SnapshotRepository,
	cache Cache,
	logger *slog.Logger,
) Service {
	return &serviceImpl{
		loanRepo:        loanRepo,
		goldItemRepo:    goldItemRepo,
		customerService: customerService,
		snapshots:       snapshots,
		cache:           cache,
		logger:          logger.With("component", "DashboardService"),
	}
}

func (s *serviceImpl) GetMetrics(ctx context.Context) (*Metrics, error) {
	if s.cache != nil {
		if m, ok := s.cache.GetMetrics(ctx); ok {
			s.logger.DebugContext(ctx, "Dashboard metrics served from cache")
			return m, nil
		}
	}

	m, err := s.computeMetrics(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetMetrics(ctx, m)
	}
	return m, nil
}

func (s *serviceImpl) computeMetrics(ctx context.Context) (*Metrics, error) {
	now := time.Now()

	customerTotals, err := s.loanRepo.GetPortfolioTotals(ctx, loan.KindCustomer)
	if err != nil {
		return nil, err
	}
	bankTotals, err := s.loanRepo.GetPortfolioTotals(ctx, loan.KindBank)
	if err != nil {
		return nil, err
	}

	totalCustomers, err := s.customerService.CountCustomers(ctx)
	if err != nil {
		return nil, err
	}

	goldWeight, err := s.goldItemRepo.SumPledgedWeight(ctx)
	if err != nil {
		return nil, err
	}

	originations, err := s.loanRepo.GetMonthlyOriginations(ctx, loan.KindCustomer, trendMonths, now)
	if err != nil {
		return nil, err
	}
	trend := make([]TrendPoint, 0, len(originations))
	for _, o := range originations {
		trend = append(trend, TrendPoint{Month: o.Month, Total: o.Total})
	}

	statusCounts, err := s.loanRepo.CountLoansByStatus(ctx, loan.KindCustomer)
	if err != nil {
		return nil, err
	}
	distribution := make(map[string]int64, len(statusCounts))
	for _, sc := range statusCounts {
		distribution[string(sc.Status)] = sc.Count
	}

	m := &Metrics{
		TotalInvestment:         customerTotals.TotalPrincipal,
		TotalReceivableInterest: customerTotals.TotalInterest,
		TotalPayableInterest:    bankTotals.TotalInterest,
		TotalBankLoans:          bankTotals.TotalPrincipal,
		NetProfit:               customerTotals.TotalInterest.Sub(bankTotals.TotalInterest),
		ActiveCustomerLoans:     customerTotals.ActiveCount,
		ActiveBankLoans:         bankTotals.ActiveCount,
		TotalCustomers:          totalCustomers,
		TotalGoldWeightPledged:  goldWeight,
		MonthlyLoanTrend:        trend,
		LoanStatusDistribution:  distribution,
		GeneratedAt:             now,
	}
	return m, nil
}

func (s *serviceImpl) SaveSnapshot(ctx context.Context) (*Snapshot, error) {
	// Snapshots always come from a fresh aggregate, never the cache.
	m, err := s.computeMetrics(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		SummaryDate:             m.GeneratedAt,
		TotalInvestment:         m.TotalInvestment,
		TotalReceivableInterest: m.TotalReceivableInterest,
		TotalPayableInterest:    m.TotalPayableInterest,
		TotalBankLoans:          m.TotalBankLoans,
		NetProfit:               m.NetProfit,
		ActiveCustomerLoans:     m.ActiveCustomerLoans,
		ActiveBankLoans:         m.ActiveBankLoans,
		TotalGoldWeightPledged:  m.TotalGoldWeightPledged,
	}

	saved, err := s.snapshots.InsertSnapshot(ctx, snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist dashboard snapshot", "error", err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "Dashboard snapshot saved", "snapshot_id", saved.ID)
	return saved, nil
}

func (s *serviceImpl) ListSnapshots(ctx context.Context) ([]*Snapshot, error) {
	return s.snapshots.ListSnapshots(ctx)
}
