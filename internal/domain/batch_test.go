package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDaysUntil_IgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	date := time.Date(2025, 3, 15, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 5, DaysUntil(date, now))
}

func TestDaysUntil_SameDayIsZero(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	date := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysUntil(date, now))
}

func TestDaysUntil_PastDateIsNegative(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	date := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, -3, DaysUntil(date, now))
}

func TestBatch_Exhausted(t *testing.T) {
	assert.True(t, Batch{CurrentQuantity: decimal.Zero}.Exhausted())
	assert.True(t, Batch{CurrentQuantity: decimal.NewFromInt(-1)}.Exhausted())
	assert.False(t, Batch{CurrentQuantity: decimal.RequireFromString("0.0001")}.Exhausted())
}

func TestBatch_DaysUntilExpiry_Undated(t *testing.T) {
	_, ok := Batch{}.DaysUntilExpiry(time.Now())
	assert.False(t, ok)
}
