// Package money holds the fixed-precision currency and calendar-month
// primitives shared by the accounting engine. All monetary amounts in the
// system are shopspring decimals; binary floating point never touches a
// currency total.
package money

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Parse converts a decimal string into an amount, rejecting malformed input.
func Parse(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// Format renders an amount with two fractional digits, the wire and display
// representation used across the API.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// AddMonths adds whole calendar months, clamping to the last valid day of the
// target month: Jan 31 + 1 month is Feb 28 (or Feb 29 in a leap year). Both
// the maturity-date computation and schedule display use this, so the two can
// never disagree.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
