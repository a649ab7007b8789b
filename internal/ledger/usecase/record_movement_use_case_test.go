package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stockroom/internal/domain"
	"stockroom/internal/dto"
)

type mockLedgerService struct {
	recordFunc  func(ctx context.Context, in dto.RecordMovementInput) (*dto.MovementResult, error)
	reverseFunc func(ctx context.Context, movementID int64) error
	listFunc    func(ctx context.Context, productID int) ([]domain.StockMovement, error)
}

func (m *mockLedgerService) RecordMovement(ctx context.Context, in dto.RecordMovementInput) (*dto.MovementResult, error) {
	return m.recordFunc(ctx, in)
}

func (m *mockLedgerService) ReverseMovement(ctx context.Context, movementID int64) error {
	return m.reverseFunc(ctx, movementID)
}

func (m *mockLedgerService) ListMovements(ctx context.Context, productID int) ([]domain.StockMovement, error) {
	return m.listFunc(ctx, productID)
}

type mockAlertEngine struct {
	emitFunc          func(ctx context.Context, ntype domain.NotificationType, payload dto.AlertPayload) (*domain.Notification, error)
	checkLowStockFunc func(ctx context.Context, productID int) (bool, error)

	emittedTypes    []domain.NotificationType
	checkedProducts []int
}

func (m *mockAlertEngine) Emit(ctx context.Context, ntype domain.NotificationType, payload dto.AlertPayload) (*domain.Notification, error) {
	m.emittedTypes = append(m.emittedTypes, ntype)
	if m.emitFunc != nil {
		return m.emitFunc(ctx, ntype, payload)
	}
	return &domain.Notification{ID: 1, Type: ntype}, nil
}

func (m *mockAlertEngine) CheckLowStockForProduct(ctx context.Context, productID int) (bool, error) {
	m.checkedProducts = append(m.checkedProducts, productID)
	if m.checkLowStockFunc != nil {
		return m.checkLowStockFunc(ctx, productID)
	}
	return false, nil
}

func movementResult(productID int, mtype domain.MovementType, qty int64) *dto.MovementResult {
	return &dto.MovementResult{
		Movement: domain.StockMovement{
			ID:        1,
			ProductID: productID,
			Type:      mtype,
			Quantity:  decimal.NewFromInt(qty),
			Unit:      "pcs",
		},
		ProductName:   "Rice 5kg",
		BalanceBefore: decimal.NewFromInt(50),
		BalanceAfter:  decimal.NewFromInt(50 + qty),
	}
}

func TestRecordMovement_InEmitsStockInAndEvaluatesLowStock(t *testing.T) {
	ledger := &mockLedgerService{
		recordFunc: func(ctx context.Context, in dto.RecordMovementInput) (*dto.MovementResult, error) {
			return movementResult(1, domain.MovementIn, 10), nil
		},
	}
	alerts := &mockAlertEngine{}
	uc := NewRecordMovementUseCase(ledger, alerts, zap.NewNop())

	result, err := uc.RecordMovement(context.Background(), dto.RecordMovementInput{
		ProductID: 1,
		Type:      domain.MovementIn,
		Quantity:  decimal.NewFromInt(10),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Movement.ID)
	assert.Equal(t, []domain.NotificationType{domain.NotificationStockIn}, alerts.emittedTypes)
	assert.Equal(t, []int{1}, alerts.checkedProducts)
}

func TestRecordMovement_OutEmitsStockOut(t *testing.T) {
	ledger := &mockLedgerService{
		recordFunc: func(ctx context.Context, in dto.RecordMovementInput) (*dto.MovementResult, error) {
			return movementResult(1, domain.MovementOut, 5), nil
		},
	}
	alerts := &mockAlertEngine{}
	uc := NewRecordMovementUseCase(ledger, alerts, zap.NewNop())

	_, err := uc.RecordMovement(context.Background(), dto.RecordMovementInput{
		ProductID: 1,
		Type:      domain.MovementOut,
		Quantity:  decimal.NewFromInt(5),
	})

	require.NoError(t, err)
	assert.Equal(t, []domain.NotificationType{domain.NotificationStockOut}, alerts.emittedTypes)
}

func TestRecordMovement_AdjustEmitsNoEventButStillEvaluatesLowStock(t *testing.T) {
	ledger := &mockLedgerService{
		recordFunc: func(ctx context.Context, in dto.RecordMovementInput) (*dto.MovementResult, error) {
			return movementResult(1, domain.MovementAdjust, 42), nil
		},
	}
	alerts := &mockAlertEngine{}
	uc := NewRecordMovementUseCase(ledger, alerts, zap.NewNop())

	_, err := uc.RecordMovement(context.Background(), dto.RecordMovementInput{
		ProductID: 1,
		Type:      domain.MovementAdjust,
		Quantity:  decimal.NewFromInt(42),
	})

	require.NoError(t, err)
	assert.Empty(t, alerts.emittedTypes)
	assert.Equal(t, []int{1}, alerts.checkedProducts)
}

func TestRecordMovement_LedgerFailureSkipsAlerts(t *testing.T) {
	ledger := &mockLedgerService{
		recordFunc: func(ctx context.Context, in dto.RecordMovementInput) (*dto.MovementResult, error) {
			return nil, errors.New("insufficient stock")
		},
	}
	alerts := &mockAlertEngine{}
	uc := NewRecordMovementUseCase(ledger, alerts, zap.NewNop())

	_, err := uc.RecordMovement(context.Background(), dto.RecordMovementInput{
		ProductID: 1,
		Type:      domain.MovementOut,
		Quantity:  decimal.NewFromInt(99),
	})

	require.Error(t, err)
	assert.Empty(t, alerts.emittedTypes)
	assert.Empty(t, alerts.checkedProducts)
}

func TestRecordMovement_EmitFailurePropagates(t *testing.T) {
	ledger := &mockLedgerService{
		recordFunc: func(ctx context.Context, in dto.RecordMovementInput) (*dto.MovementResult, error) {
			return movementResult(1, domain.MovementIn, 10), nil
		},
	}
	alerts := &mockAlertEngine{
		emitFunc: func(ctx context.Context, ntype domain.NotificationType, payload dto.AlertPayload) (*domain.Notification, error) {
			return nil, errors.New("notification store unavailable")
		},
	}
	uc := NewRecordMovementUseCase(ledger, alerts, zap.NewNop())

	_, err := uc.RecordMovement(context.Background(), dto.RecordMovementInput{
		ProductID: 1,
		Type:      domain.MovementIn,
		Quantity:  decimal.NewFromInt(10),
	})

	require.Error(t, err)
	assert.Empty(t, alerts.checkedProducts)
}

func TestReverseMovement_DelegatesToLedger(t *testing.T) {
	var reversed int64
	ledger := &mockLedgerService{
		reverseFunc: func(ctx context.Context, movementID int64) error {
			reversed = movementID
			return nil
		},
	}
	uc := NewRecordMovementUseCase(ledger, &mockAlertEngine{}, zap.NewNop())

	err := uc.ReverseMovement(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, int64(7), reversed)
}
