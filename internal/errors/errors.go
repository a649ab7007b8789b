package errors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	if ve, ok := err.(*ValidationError); ok {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	if nfe, ok := err.(*NotFoundError); ok {
		return nfe, true
	}
	return nil, false
}

// InsufficientStockError rejects an OUT movement that would drive the balance
// negative. Shortfall is how much the request exceeds the available stock.
type InsufficientStockError struct {
	ProductID int
	Available decimal.Decimal
	Requested decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %s, requested %s",
		e.ProductID, e.Available, e.Requested)
}

func NewInsufficientStockError(productID int, available, requested decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID: productID,
		Available: available,
		Requested: requested,
		Shortfall: requested.Sub(available),
	}
}

func IsInsufficientStockError(err error) (*InsufficientStockError, bool) {
	if ise, ok := err.(*InsufficientStockError); ok {
		return ise, true
	}
	return nil, false
}

// IrreversibleMovementError refuses a reversal that would violate the
// non-negative stock invariant, or one with no well-defined inverse.
type IrreversibleMovementError struct {
	MovementID int64
	Message    string
}

func (e *IrreversibleMovementError) Error() string {
	return e.Message
}

func NewIrreversibleMovementError(movementID int64, message string) *IrreversibleMovementError {
	return &IrreversibleMovementError{MovementID: movementID, Message: message}
}

func IsIrreversibleMovementError(err error) (*IrreversibleMovementError, bool) {
	if ime, ok := err.(*IrreversibleMovementError); ok {
		return ime, true
	}
	return nil, false
}

// PersistenceError wraps a storage-layer failure. Nothing retries these
// internally; the caller decides whether to resubmit the whole operation.
type PersistenceError struct {
	Message string
	Cause   error
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

func NewPersistenceError(message string, cause error) *PersistenceError {
	return &PersistenceError{Message: message, Cause: cause}
}

func IsPersistenceError(err error) (*PersistenceError, bool) {
	if pe, ok := err.(*PersistenceError); ok {
		return pe, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}
