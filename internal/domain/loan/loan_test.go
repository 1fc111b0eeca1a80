package loan

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldloan-engine/internal/pkg/apperrors"
)

var testPolicy = Policy{
	MaxMonthlyRate:  decimal.NewFromInt(5),
	MaxTenureMonths: 36,
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newTestLoan(t *testing.T) *Loan {
	t.Helper()
	l, err := NewLoan(KindCustomer, d("100000"), d("2"), 6, []int64{1, 2}, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), testPolicy)
	require.NoError(t, err)
	return l
}

func TestNewLoanComputesFlatInterest(t *testing.T) {
	l := newTestLoan(t)

	// 100000 at 2% per month over 6 months: 100000 * 0.02 * 6 = 12000.
	assert.True(t, l.TotalInterest.Equal(d("12000")), "total interest = %s", l.TotalInterest)
	assert.True(t, l.Outstanding.Equal(d("112000")), "outstanding = %s", l.Outstanding)
	assert.Equal(t, StatusActive, l.Status)
	assert.True(t, l.InterestPaid.IsZero())
	assert.True(t, l.AmountPaid.IsZero())
	assert.Equal(t, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), l.MaturityDate)
}

func TestNewLoanClampsMaturityToMonthEnd(t *testing.T) {
	l, err := NewLoan(KindCustomer, d("5000"), d("1"), 1, []int64{1}, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), testPolicy)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), l.MaturityDate)

	leap, err := NewLoan(KindCustomer, d("5000"), d("1"), 1, []int64{1}, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), testPolicy)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), leap.MaturityDate)
}

func TestNewLoanValidation(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		tenure    int
		items     []int64
	}{
		{"zero principal", decimal.Zero, d("2"), 6, []int64{1}},
		{"negative principal", d("-100"), d("2"), 6, []int64{1}},
		{"zero rate", d("100000"), decimal.Zero, 6, []int64{1}},
		{"rate above policy", d("100000"), d("5.01"), 6, []int64{1}},
		{"zero tenure", d("100000"), d("2"), 0, []int64{1}},
		{"tenure above policy", d("100000"), d("2"), 37, []int64{1}},
		{"no items", d("100000"), d("2"), 6, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoan(KindCustomer, tc.principal, tc.rate, tc.tenure, tc.items, start, testPolicy)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestApplyRepaymentAllocatesInterestFirst(t *testing.T) {
	l := newTestLoan(t)
	now := time.Now()

	// First payment smaller than the interest bucket: all interest.
	require.NoError(t, l.ApplyRepayment(d("1000"), now))
	assert.True(t, l.InterestPaid.Equal(d("1000")), "interest paid = %s", l.InterestPaid)
	assert.True(t, l.Outstanding.Equal(d("111000")))

	// 11000 more fills the 12000 interest bucket exactly.
	require.NoError(t, l.ApplyRepayment(d("11000"), now))
	assert.True(t, l.InterestPaid.Equal(d("12000")))

	// Interest exhausted: further payments reduce principal only.
	require.NoError(t, l.ApplyRepayment(d("40000"), now))
	assert.True(t, l.InterestPaid.Equal(d("12000")))
	assert.True(t, l.AmountPaid.Equal(d("52000")))
	assert.True(t, l.Outstanding.Equal(d("60000")))
	assert.Equal(t, StatusActive, l.Status)
	require.NotNil(t, l.LastPaymentDate)
}

func TestApplyRepaymentSpanningInterestBoundary(t *testing.T) {
	l := newTestLoan(t)
	now := time.Now()

	// 13000 covers the full 12000 interest bucket plus 1000 of principal.
	require.NoError(t, l.ApplyRepayment(d("13000"), now))
	assert.True(t, l.InterestPaid.Equal(d("12000")))
	assert.True(t, l.Outstanding.Equal(d("99000")))
}

func TestApplyRepaymentClosesLoanAtExactZero(t *testing.T) {
	l := newTestLoan(t)
	now := time.Now()

	require.NoError(t, l.ApplyRepayment(d("112000"), now))
	assert.True(t, l.Outstanding.IsZero())
	assert.Equal(t, StatusClosed, l.Status)

	// No further payments on a closed loan.
	err := l.ApplyRepayment(d("1"), now)
	assert.ErrorIs(t, err, apperrors.ErrLoanNotActive)
}

func TestApplyRepaymentRejectsBadAmounts(t *testing.T) {
	l := newTestLoan(t)
	now := time.Now()

	assert.ErrorIs(t, l.ApplyRepayment(decimal.Zero, now), apperrors.ErrInvalidAmount)
	assert.ErrorIs(t, l.ApplyRepayment(d("-5"), now), apperrors.ErrInvalidAmount)
	assert.ErrorIs(t, l.ApplyRepayment(d("112000.01"), now), apperrors.ErrInvalidAmount)

	// A rejected payment leaves the loan untouched.
	assert.True(t, l.Outstanding.Equal(d("112000")))
	assert.True(t, l.AmountPaid.IsZero())
	assert.Nil(t, l.LastPaymentDate)
}

func TestRepaymentAccountingIdentity(t *testing.T) {
	l := newTestLoan(t)
	now := time.Now()

	payments := []string{"600", "500", "25000", "3000.50"}
	for _, p := range payments {
		require.NoError(t, l.ApplyRepayment(d(p), now))
		// principal + totalInterest - amountPaid == outstanding, always.
		expected := l.PrincipalAmount.Add(l.TotalInterest).Sub(l.AmountPaid)
		assert.True(t, l.Outstanding.Equal(expected), "outstanding %s != %s", l.Outstanding, expected)
		assert.True(t, l.InterestPaid.LessThanOrEqual(l.TotalInterest))
	}
}

func TestMarkDefaulted(t *testing.T) {
	l := newTestLoan(t)
	beforeMaturity := l.MaturityDate.Add(-time.Hour)
	afterMaturity := l.MaturityDate.Add(time.Hour)

	assert.False(t, l.MarkDefaulted(beforeMaturity))
	assert.Equal(t, StatusActive, l.Status)

	assert.True(t, l.MarkDefaulted(afterMaturity))
	assert.Equal(t, StatusDefaulted, l.Status)

	// Second sweep over the same loan is a no-op.
	assert.False(t, l.MarkDefaulted(afterMaturity))
	assert.Equal(t, StatusDefaulted, l.Status)
}

func TestIsOverdue(t *testing.T) {
	l := newTestLoan(t)
	assert.False(t, l.IsOverdue(l.MaturityDate))
	assert.True(t, l.IsOverdue(l.MaturityDate.Add(time.Second)))

	l.Status = StatusClosed
	assert.False(t, l.IsOverdue(l.MaturityDate.Add(time.Second)))
}

func TestNewLoanNumberFormat(t *testing.T) {
	at := time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC)

	cl := NewLoanNumber(KindCustomer, at)
	assert.True(t, strings.HasPrefix(cl, "CL-20250829-"), "got %s", cl)
	assert.Len(t, cl, len("CL-20250829-")+8)
	assert.Equal(t, strings.ToUpper(cl), cl)

	bl := NewLoanNumber(KindBank, at)
	assert.True(t, strings.HasPrefix(bl, "BL-20250829-"), "got %s", bl)

	// Suffixes are random; two numbers minted together must differ.
	assert.NotEqual(t, cl, NewLoanNumber(KindCustomer, at))
}

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy("2.5", 12)
	require.NoError(t, err)
	assert.True(t, p.MaxMonthlyRate.Equal(d("2.5")))
	assert.Equal(t, 12, p.MaxTenureMonths)

	_, err = NewPolicy("abc", 12)
	assert.Error(t, err)

	_, err = NewPolicy("2.5", 0)
	assert.Error(t, err)
}

func TestPoliciesFor(t *testing.T) {
	p := Policies{
		Customer: Policy{MaxMonthlyRate: d("5"), MaxTenureMonths: 36},
		Bank:     Policy{MaxMonthlyRate: d("3"), MaxTenureMonths: 60},
	}
	assert.Equal(t, 36, p.For(KindCustomer).MaxTenureMonths)
	assert.Equal(t, 60, p.For(KindBank).MaxTenureMonths)
}

func TestValidationErrorsCarryKind(t *testing.T) {
	_, err := NewLoan(KindCustomer, decimal.Zero, d("2"), 6, []int64{1}, time.Time{}, testPolicy)
	require.Error(t, err)

	var vErr *apperrors.ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "VALIDATION_ERROR", apperrors.Kind(err))
}
