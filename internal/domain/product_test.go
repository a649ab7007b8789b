package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProduct_IsLowStock_BelowThreshold(t *testing.T) {
	p := Product{
		CurrentStock:      decimal.NewFromInt(5),
		MinStockThreshold: decimal.NewFromInt(10),
	}

	assert.True(t, p.IsLowStock())
}

func TestProduct_IsLowStock_ExactlyAtThreshold(t *testing.T) {
	// The low-stock comparison is inclusive.
	p := Product{
		CurrentStock:      decimal.NewFromInt(10),
		MinStockThreshold: decimal.NewFromInt(10),
	}

	assert.True(t, p.IsLowStock())
}

func TestProduct_IsLowStock_AboveThreshold(t *testing.T) {
	p := Product{
		CurrentStock:      decimal.NewFromInt(11),
		MinStockThreshold: decimal.NewFromInt(10),
	}

	assert.False(t, p.IsLowStock())
}

func TestProduct_IsLowStock_ZeroThresholdDisablesAlert(t *testing.T) {
	p := Product{
		CurrentStock:      decimal.Zero,
		MinStockThreshold: decimal.Zero,
	}

	assert.False(t, p.IsLowStock())
}

func TestProduct_IsLowStock_FractionalQuantities(t *testing.T) {
	p := Product{
		CurrentStock:      decimal.RequireFromString("2.25"),
		MinStockThreshold: decimal.RequireFromString("2.5"),
	}

	assert.True(t, p.IsLowStock())
}

func TestProduct_DaysUntilExpiry_NoDate(t *testing.T) {
	p := Product{}

	_, ok := p.DaysUntilExpiry(time.Now())
	assert.False(t, ok)
}

func TestProduct_DaysUntilExpiry_FutureDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
	expiry := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	p := Product{ExpiryDate: &expiry}

	days, ok := p.DaysUntilExpiry(now)
	assert.True(t, ok)
	assert.Equal(t, 10, days)
}
