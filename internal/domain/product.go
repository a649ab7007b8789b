package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID                int
	Name              string
	SKU               *string
	Barcode           *string
	Category          string
	PurchasePrice     decimal.Decimal
	SellingPrice      decimal.Decimal
	CurrentStock      decimal.Decimal
	Unit              string
	MinStockThreshold decimal.Decimal
	ExpiryDate        *time.Time
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ProductFilter narrows listing queries. Zero value means "all products".
type ProductFilter struct {
	ActiveOnly bool
	Category   string
	Search     string
}

// IsLowStock reports whether the cached balance has reached the alert
// threshold. A zero threshold means alerting is disabled for the product.
func (p Product) IsLowStock() bool {
	if !p.MinStockThreshold.IsPositive() {
		return false
	}
	return p.CurrentStock.LessThanOrEqual(p.MinStockThreshold)
}

// DaysUntilExpiry returns the whole days between today and the product's
// legacy expiry date. The second return is false when no expiry date is set.
func (p Product) DaysUntilExpiry(now time.Time) (int, bool) {
	if p.ExpiryDate == nil {
		return 0, false
	}
	return DaysUntil(*p.ExpiryDate, now), true
}
