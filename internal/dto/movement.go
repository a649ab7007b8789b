package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"stockroom/internal/domain"
)

// RecordMovementInput is the single entry point payload for all stock
// mutations. Quantity is a positive delta for IN/OUT and the absolute target
// balance for ADJUST. Batch fields are an opt-in pair.
type RecordMovementInput struct {
	ProductID       int
	Type            domain.MovementType
	Quantity        decimal.Decimal
	Notes           *string
	ReferenceNo     *string
	BatchNumber     *string
	BatchExpiryDate *time.Time
}

type MovementResult struct {
	Movement      domain.StockMovement
	ProductName   string
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}
