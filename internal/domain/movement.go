package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementIn     MovementType = "IN"
	MovementOut    MovementType = "OUT"
	MovementAdjust MovementType = "ADJUST"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjust:
		return true
	}
	return false
}

// StockMovement is one immutable ledger entry. Rows are never updated in
// place; the only way to undo one is an explicit reversal, which deletes the
// row and re-adjusts the product's cached balance in the same transaction.
type StockMovement struct {
	ID              int64
	ProductID       int
	Type            MovementType
	Quantity        decimal.Decimal
	Unit            string
	ReferenceNo     *string
	Notes           *string
	BatchNumber     *string
	BatchExpiryDate *time.Time
	BalanceAfter    decimal.Decimal
	CreatedAt       time.Time
}

// BatchTagged reports whether the movement participates in batch accounting.
func (m StockMovement) BatchTagged() bool {
	return m.BatchNumber != nil
}
