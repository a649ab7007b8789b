package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stockroom/internal/domain"
	"stockroom/internal/dto"
	apperrors "stockroom/internal/errors"
	ledgerrepo "stockroom/internal/ledger/repository"
	productrepo "stockroom/internal/product/repository"
)

func newTestService(t *testing.T) (*LedgerService, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewLedgerService(
		db,
		productrepo.NewMySQLProductRepository(db),
		ledgerrepo.NewMySQLMovementRepository(db),
		zap.NewNop(),
		2*time.Second,
	)
	return svc, mock
}

var productCols = []string{
	"id", "name", "sku", "barcode", "category", "purchase_price", "selling_price",
	"current_stock", "unit", "min_stock_threshold", "expiry_date", "is_active",
	"created_at", "updated_at",
}

func productRow(id int, stock string, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(productCols).AddRow(
		id, "Rice 5kg", nil, nil, "Groceries", "40", "55",
		stock, "pcs", "10", nil, active, now, now,
	)
}

var movementCols = []string{
	"id", "product_id", "type", "quantity", "unit", "reference_no", "notes",
	"batch_number", "batch_expiry_date", "balance_after", "created_at",
}

func movementRow(id int64, productID int, mtype string, qty string) *sqlmock.Rows {
	return sqlmock.NewRows(movementCols).AddRow(
		id, productID, mtype, qty, "pcs", nil, nil, nil, nil, "0", time.Now(),
	)
}

func TestRecordMovement_In_AppendsRowAndUpdatesCache(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \? FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(productRow(1, "50", true))
	// The insert writes the timestamp the service computed, so the stored
	// row and the returned movement share one clock.
	mock.ExpectExec(`INSERT INTO stock_movements \(product_id, type, quantity, unit, reference_no, notes,\s+batch_number, batch_expiry_date, balance_after, created_at\)`).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(`UPDATE products SET current_stock = \? WHERE id = \?`).
		WithArgs("60", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.RecordMovement(context.Background(), dto.RecordMovementInput{
		ProductID: 1,
		Type:      domain.MovementIn,
		Quantity:  decimal.NewFromInt(10),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), result.Movement.ID)
	assert.Equal(t, "Rice 5kg", result.ProductName)
	assert.True(t, result.BalanceBefore.Equal(decimal.NewFromInt(50)))
	assert.True(t, result.BalanceAfter.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, "pcs", result.Movement.Unit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMovement_Out_ToExactlyZeroIsAllowed(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \? FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(productRow(1, "50", true))
	mock.ExpectExec(`INSERT INTO stock_movements`).
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectExec(`UPDATE products SET current_stock = \? WHERE id = \?`).
		WithArgs("0", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.RecordMovement(context.Background(), dto.RecordMovementInput{
		ProductID: 1,
		Type:      domain.MovementOut,
		Quantity:  decimal.NewFromInt(50),
	})

	require.NoError(t, err)
	assert.True(t, result.BalanceAfter.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMovement_Out_InsufficientStockWritesNothing(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \? FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(productRow(1, "50", true))
	mock.ExpectRollback()

	_, err := svc.RecordMovement(context.Background(), dto.RecordMovementInput{
		ProductID: 1,
		Type:      domain.MovementOut,
		Quantity:  decimal.NewFromInt(60),
	})

	require.Error(t, err)
	stockErr, ok := apperrors.IsInsufficientStockError(err)
	require.True(t, ok)
	assert.Equal(t, 1, stockErr.ProductID)
	assert.True(t, stockErr.Available.Equal(decimal.NewFromInt(50)))
	assert.True(t, stockErr.Requested.Equal(decimal.NewFromInt(60)))
	assert.True(t, stockErr.Shortfall.Equal(decimal.NewFromInt(10)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMovement_Adjust_SetsAbsoluteBalance(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \? FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(productRow(1, "50", true))
	mock.ExpectExec(`INSERT INTO stock_movements`).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec(`UPDATE products SET current_stock = \? WHERE id = \?`).
		WithArgs("42", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.RecordMovement(context.Background(), dto.RecordMovementInput{
		ProductID: 1,
		Type:      domain.MovementAdjust,
		Quantity:  decimal.NewFromInt(42),
	})

	require.NoError(t, err)
	assert.True(t, result.BalanceAfter.Equal(decimal.NewFromInt(42)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMovement_CacheWriteFailureRollsBack(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \? FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(productRow(1, "50", true))
	mock.ExpectExec(`INSERT INTO stock_movements`).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec(`UPDATE products SET current_stock = \? WHERE id = \?`).
		WillReturnError(errors.New("connection lost"))
	mock.ExpectRollback()

	_, err := svc.RecordMovement(context.Background(), dto.RecordMovementInput{
		ProductID: 1,
		Type:      domain.MovementIn,
		Quantity:  decimal.NewFromInt(5),
	})

	require.Error(t, err)
	_, ok := apperrors.IsPersistenceError(err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMovement_InactiveProductRejected(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \? FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(productRow(1, "50", false))
	mock.ExpectRollback()

	_, err := svc.RecordMovement(context.Background(), dto.RecordMovementInput{
		ProductID: 1,
		Type:      domain.MovementIn,
		Quantity:  decimal.NewFromInt(5),
	})

	require.Error(t, err)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordMovement_ValidationFailures(t *testing.T) {
	svc, mock := newTestService(t)
	expiry := time.Now().AddDate(0, 0, 30)

	tests := []struct {
		name  string
		input dto.RecordMovementInput
	}{
		{
			name: "unknown type",
			input: dto.RecordMovementInput{
				ProductID: 1, Type: "TRANSFER", Quantity: decimal.NewFromInt(1),
			},
		},
		{
			name: "zero quantity for IN",
			input: dto.RecordMovementInput{
				ProductID: 1, Type: domain.MovementIn, Quantity: decimal.Zero,
			},
		},
		{
			name: "negative quantity for OUT",
			input: dto.RecordMovementInput{
				ProductID: 1, Type: domain.MovementOut, Quantity: decimal.NewFromInt(-3),
			},
		},
		{
			name: "negative target for ADJUST",
			input: dto.RecordMovementInput{
				ProductID: 1, Type: domain.MovementAdjust, Quantity: decimal.NewFromInt(-1),
			},
		},
		{
			name: "non-positive product id",
			input: dto.RecordMovementInput{
				ProductID: 0, Type: domain.MovementIn, Quantity: decimal.NewFromInt(1),
			},
		},
		{
			name: "batch expiry without batch number",
			input: dto.RecordMovementInput{
				ProductID: 1, Type: domain.MovementIn, Quantity: decimal.NewFromInt(1),
				BatchExpiryDate: &expiry,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordMovement(context.Background(), tt.input)
			require.Error(t, err)
			_, ok := apperrors.IsValidationError(err)
			assert.True(t, ok)
		})
	}

	// Validation failures never reach the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReverseMovement_In_RestoresPriorBalance(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM stock_movements WHERE id = \?`).
		WithArgs(int64(7)).
		WillReturnRows(movementRow(7, 1, "IN", "10"))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM stock_movements WHERE id = \? FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(movementRow(7, 1, "IN", "10"))
	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \? FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(productRow(1, "60", true))
	mock.ExpectExec(`DELETE FROM stock_movements WHERE id = \?`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE products SET current_stock = \? WHERE id = \?`).
		WithArgs("50", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.ReverseMovement(context.Background(), 7)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReverseMovement_In_RefusedWhenBalanceWouldGoNegative(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM stock_movements WHERE id = \?`).
		WithArgs(int64(7)).
		WillReturnRows(movementRow(7, 1, "IN", "10"))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM stock_movements WHERE id = \? FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(movementRow(7, 1, "IN", "10"))
	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \? FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(productRow(1, "4", true))
	mock.ExpectRollback()

	err := svc.ReverseMovement(context.Background(), 7)

	require.Error(t, err)
	_, ok := apperrors.IsIrreversibleMovementError(err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReverseMovement_Out_AddsQuantityBack(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM stock_movements WHERE id = \?`).
		WithArgs(int64(8)).
		WillReturnRows(movementRow(8, 1, "OUT", "15"))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM stock_movements WHERE id = \? FOR UPDATE`).
		WithArgs(int64(8)).
		WillReturnRows(movementRow(8, 1, "OUT", "15"))
	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \? FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(productRow(1, "35", true))
	mock.ExpectExec(`DELETE FROM stock_movements WHERE id = \?`).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE products SET current_stock = \? WHERE id = \?`).
		WithArgs("50", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.ReverseMovement(context.Background(), 8)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReverseMovement_Adjust_Refused(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM stock_movements WHERE id = \?`).
		WithArgs(int64(9)).
		WillReturnRows(movementRow(9, 1, "ADJUST", "42"))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM stock_movements WHERE id = \? FOR UPDATE`).
		WithArgs(int64(9)).
		WillReturnRows(movementRow(9, 1, "ADJUST", "42"))
	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \? FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(productRow(1, "42", true))
	mock.ExpectRollback()

	err := svc.ReverseMovement(context.Background(), 9)

	require.Error(t, err)
	irrevErr, ok := apperrors.IsIrreversibleMovementError(err)
	require.True(t, ok)
	assert.Equal(t, int64(9), irrevErr.MovementID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReverseMovement_UnknownMovement(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT (.+) FROM stock_movements WHERE id = \?`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	err := svc.ReverseMovement(context.Background(), 404)

	require.Error(t, err)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
