package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch is a derived view, never a stored row: it aggregates the ledger
// entries sharing a (product, batch_number, batch_expiry_date) key. A batch
// whose quantity has been drawn down to zero is exhausted and dropped from
// active views.
type Batch struct {
	ProductID       int
	ProductName     string
	BatchNumber     string
	ExpiryDate      *time.Time
	CurrentQuantity decimal.Decimal
	Unit            string
}

func (b Batch) Exhausted() bool {
	return !b.CurrentQuantity.IsPositive()
}

// DaysUntilExpiry returns the whole days until the batch expires. The second
// return is false for undated batches.
func (b Batch) DaysUntilExpiry(now time.Time) (int, bool) {
	if b.ExpiryDate == nil {
		return 0, false
	}
	return DaysUntil(*b.ExpiryDate, now), true
}

// DaysUntil computes floor(date - now) in whole calendar days, comparing
// dates only. Negative for dates already in the past.
func DaysUntil(date, now time.Time) int {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = date.Date()
	target := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(target.Sub(today).Hours() / 24)
}
