package dashboard_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"goldloan-engine/internal/domain/customer"
	"goldloan-engine/internal/domain/dashboard"
	"goldloan-engine/internal/domain/golditem"
	"goldloan-engine/internal/domain/loan"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockLoanRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockLoanRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockLoanRepository) CreateLoanInTx(ctx context.Context, tx pgx.Tx, l *loan.Loan) (*loan.Loan, error) {
	args := m.Called(ctx, tx, l)
	if created, ok := args.Get(0).(*loan.Loan); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) GetLoanByID(ctx context.Context, kind loan.Kind, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, kind, loanID)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) GetLoanForUpdate(ctx context.Context, tx pgx.Tx, kind loan.Kind, loanID int64) (*loan.Loan, error) {
	args := m.Called(ctx, tx, kind, loanID)
	if l, ok := args.Get(0).(*loan.Loan); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) UpdateLoanInTx(ctx context.Context, tx pgx.Tx, l *loan.Loan) error {
	return m.Called(ctx, tx, l).Error(0)
}

func (m *MockLoanRepository) ListLoans(ctx context.Context, kind loan.Kind, status *loan.Status) ([]*loan.Loan, error) {
	args := m.Called(ctx, kind, status)
	if loans, ok := args.Get(0).([]*loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) ListLoansByCustomer(ctx context.Context, customerID int64) ([]*loan.Loan, error) {
	args := m.Called(ctx, customerID)
	if loans, ok := args.Get(0).([]*loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) ListOverdueLoans(ctx context.Context, kind loan.Kind, now time.Time) ([]*loan.Loan, error) {
	args := m.Called(ctx, kind, now)
	if loans, ok := args.Get(0).([]*loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) ListOverdueForUpdate(ctx context.Context, tx pgx.Tx, now time.Time) ([]*loan.Loan, error) {
	args := m.Called(ctx, tx, now)
	if loans, ok := args.Get(0).([]*loan.Loan); ok {
		return loans, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) InsertTransactionInTx(ctx context.Context, tx pgx.Tx, t *loan.Transaction) error {
	return m.Called(ctx, tx, t).Error(0)
}

func (m *MockLoanRepository) ListTransactionsByLoan(ctx context.Context, loanID int64) ([]*loan.Transaction, error) {
	args := m.Called(ctx, loanID)
	if txns, ok := args.Get(0).([]*loan.Transaction); ok {
		return txns, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) GetPortfolioTotals(ctx context.Context, kind loan.Kind) (*loan.PortfolioTotals, error) {
	args := m.Called(ctx, kind)
	if totals, ok := args.Get(0).(*loan.PortfolioTotals); ok {
		return totals, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) GetMonthlyOriginations(ctx context.Context, kind loan.Kind, months int, now time.Time) ([]loan.MonthlyOrigination, error) {
	args := m.Called(ctx, kind, months, now)
	if origs, ok := args.Get(0).([]loan.MonthlyOrigination); ok {
		return origs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRepository) CountLoansByStatus(ctx context.Context, kind loan.Kind) ([]loan.StatusCount, error) {
	args := m.Called(ctx, kind)
	if counts, ok := args.Get(0).([]loan.StatusCount); ok {
		return counts, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockGoldItemRepository struct {
	mock.Mock
}

func (m *MockGoldItemRepository) CreateItem(ctx context.Context, item *golditem.GoldItem) (*golditem.GoldItem, error) {
	args := m.Called(ctx, item)
	if created, ok := args.Get(0).(*golditem.GoldItem); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGoldItemRepository) GetItemByID(ctx context.Context, itemID int64) (*golditem.GoldItem, error) {
	args := m.Called(ctx, itemID)
	if item, ok := args.Get(0).(*golditem.GoldItem); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGoldItemRepository) ListItems(ctx context.Context) ([]*golditem.GoldItem, error) {
	args := m.Called(ctx)
	if items, ok := args.Get(0).([]*golditem.GoldItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGoldItemRepository) ListItemsByStatus(ctx context.Context, status golditem.Status) ([]*golditem.GoldItem, error) {
	args := m.Called(ctx, status)
	if items, ok := args.Get(0).([]*golditem.GoldItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGoldItemRepository) UpdateItem(ctx context.Context, item *golditem.GoldItem) (*golditem.GoldItem, error) {
	args := m.Called(ctx, item)
	if updated, ok := args.Get(0).(*golditem.GoldItem); ok {
		return updated, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGoldItemRepository) DeleteItem(ctx context.Context, itemID int64) error {
	return m.Called(ctx, itemID).Error(0)
}

func (m *MockGoldItemRepository) LockItemsInTx(ctx context.Context, tx pgx.Tx, itemIDs []int64) ([]*golditem.GoldItem, error) {
	args := m.Called(ctx, tx, itemIDs)
	if items, ok := args.Get(0).([]*golditem.GoldItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGoldItemRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, itemIDs []int64, from, to golditem.Status) (int64, error) {
	args := m.Called(ctx, tx, itemIDs, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGoldItemRepository) SumPledgedWeight(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	args := m.Called(ctx, c)
	if created, ok := args.Get(0).(*customer.Customer); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if c, ok := args.Get(0).(*customer.Customer); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	args := m.Called(ctx)
	if customers, ok := args.Get(0).([]*customer.Customer); ok {
		return customers, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) UpdateCustomer(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	args := m.Called(ctx, c)
	if updated, ok := args.Get(0).(*customer.Customer); ok {
		return updated, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCustomerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	return m.Called(ctx, customerID).Error(0)
}

func (m *MockCustomerService) CountCustomers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) InsertSnapshot(ctx context.Context, s *dashboard.Snapshot) (*dashboard.Snapshot, error) {
	args := m.Called(ctx, s)
	if saved, ok := args.Get(0).(*dashboard.Snapshot); ok {
		return saved, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSnapshotRepository) ListSnapshots(ctx context.Context) ([]*dashboard.Snapshot, error) {
	args := m.Called(ctx)
	if snapshots, ok := args.Get(0).([]*dashboard.Snapshot); ok {
		return snapshots, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetMetrics(ctx context.Context) (*dashboard.Metrics, bool) {
	args := m.Called(ctx)
	if metrics, ok := args.Get(0).(*dashboard.Metrics); ok {
		return metrics, args.Bool(1)
	}
	return nil, args.Bool(1)
}

func (m *MockCache) SetMetrics(ctx context.Context, metrics *dashboard.Metrics) {
	m.Called(ctx, metrics)
}

type dashboardFixture struct {
	loanRepo     *MockLoanRepository
	goldItemRepo *MockGoldItemRepository
	customerSvc  *MockCustomerService
	snapshots    *MockSnapshotRepository
	cache        *MockCache
	service      dashboard.Service
}

func newFixture(t *testing.T, withCache bool) *dashboardFixture {
	t.Helper()
	f := &dashboardFixture{
		loanRepo:     new(MockLoanRepository),
		goldItemRepo: new(MockGoldItemRepository),
		customerSvc:  new(MockCustomerService),
		snapshots:    new(MockSnapshotRepository),
		cache:        new(MockCache),
	}
	var cache dashboard.Cache
	if withCache {
		cache = f.cache
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = dashboard.NewService(f.loanRepo, f.goldItemRepo, f.customerSvc, f.snapshots, cache, logger)
	return f
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (f *dashboardFixture) expectAggregateQueries() {
	f.loanRepo.On("GetPortfolioTotals", mock.Anything, loan.KindCustomer).Return(&loan.PortfolioTotals{
		ActiveCount:    12,
		TotalPrincipal: d("500000"),
		TotalInterest:  d("60000"),
	}, nil)
	f.loanRepo.On("GetPortfolioTotals", mock.Anything, loan.KindBank).Return(&loan.PortfolioTotals{
		ActiveCount:    3,
		TotalPrincipal: d("200000"),
		TotalInterest:  d("18000"),
	}, nil)
	f.customerSvc.On("CountCustomers", mock.Anything).Return(int64(40), nil)
	f.goldItemRepo.On("SumPledgedWeight", mock.Anything).Return(d("812.5"), nil)
	f.loanRepo.On("GetMonthlyOriginations", mock.Anything, loan.KindCustomer, 6, mock.Anything).
		Return([]loan.MonthlyOrigination{
			{Month: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), Total: d("90000")},
			{Month: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), Total: d("110000")},
		}, nil)
	f.loanRepo.On("CountLoansByStatus", mock.Anything, loan.KindCustomer).Return([]loan.StatusCount{
		{Status: loan.StatusActive, Count: 12},
		{Status: loan.StatusClosed, Count: 30},
		{Status: loan.StatusDefaulted, Count: 2},
	}, nil)
}

func TestGetMetricsComputesAggregate(t *testing.T) {
	f := newFixture(t, false)
	f.expectAggregateQueries()

	m, err := f.service.GetMetrics(context.Background())
	require.NoError(t, err)

	assert.True(t, m.TotalInvestment.Equal(d("500000")))
	assert.True(t, m.TotalReceivableInterest.Equal(d("60000")))
	assert.True(t, m.TotalPayableInterest.Equal(d("18000")))
	assert.True(t, m.TotalBankLoans.Equal(d("200000")))
	// Net profit is receivable interest less payable interest.
	assert.True(t, m.NetProfit.Equal(d("42000")))
	assert.Equal(t, int64(12), m.ActiveCustomerLoans)
	assert.Equal(t, int64(3), m.ActiveBankLoans)
	assert.Equal(t, int64(40), m.TotalCustomers)
	assert.True(t, m.TotalGoldWeightPledged.Equal(d("812.5")))
	assert.Len(t, m.MonthlyLoanTrend, 2)
	assert.Equal(t, int64(30), m.LoanStatusDistribution["CLOSED"])
	assert.False(t, m.GeneratedAt.IsZero())
}

func TestGetMetricsCacheHitSkipsQueries(t *testing.T) {
	f := newFixture(t, true)
	cached := &dashboard.Metrics{NetProfit: d("42000"), GeneratedAt: time.Now()}
	f.cache.On("GetMetrics", mock.Anything).Return(cached, true)

	m, err := f.service.GetMetrics(context.Background())
	require.NoError(t, err)
	assert.Same(t, cached, m)
	f.loanRepo.AssertNotCalled(t, "GetPortfolioTotals", mock.Anything, mock.Anything)
}

func TestGetMetricsCacheMissPopulatesCache(t *testing.T) {
	f := newFixture(t, true)
	f.cache.On("GetMetrics", mock.Anything).Return(nil, false)
	f.cache.On("SetMetrics", mock.Anything, mock.AnythingOfType("*dashboard.Metrics")).Return()
	f.expectAggregateQueries()

	_, err := f.service.GetMetrics(context.Background())
	require.NoError(t, err)
	f.cache.AssertCalled(t, "SetMetrics", mock.Anything, mock.AnythingOfType("*dashboard.Metrics"))
}

func TestSaveSnapshotBypassesCache(t *testing.T) {
	f := newFixture(t, true)
	f.expectAggregateQueries()
	f.snapshots.On("InsertSnapshot", mock.Anything, mock.MatchedBy(func(s *dashboard.Snapshot) bool {
		return s.NetProfit.Equal(d("42000")) && s.ActiveCustomerLoans == 12
	})).Return(&dashboard.Snapshot{ID: 9, NetProfit: d("42000")}, nil)

	saved, err := f.service.SaveSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), saved.ID)
	// Snapshots must reflect the live portfolio, never a cached read.
	f.cache.AssertNotCalled(t, "GetMetrics", mock.Anything)
}

func TestGetMetricsPropagatesQueryError(t *testing.T) {
	f := newFixture(t, false)
	f.loanRepo.On("GetPortfolioTotals", mock.Anything, loan.KindCustomer).
		Return(nil, assert.AnError)

	_, err := f.service.GetMetrics(context.Background())
	assert.Error(t, err)
}
