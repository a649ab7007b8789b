package usecase

import (
	"context"

	"go.uber.org/zap"

	"stockroom/internal/domain"
	"stockroom/internal/dto"
)

type LedgerService interface {
	RecordMovement(ctx context.Context, in dto.RecordMovementInput) (*dto.MovementResult, error)
	ReverseMovement(ctx context.Context, movementID int64) error
	ListMovements(ctx context.Context, productID int) ([]domain.StockMovement, error)
}

type AlertEngine interface {
	Emit(ctx context.Context, ntype domain.NotificationType, payload dto.AlertPayload) (*domain.Notification, error)
	CheckLowStockForProduct(ctx context.Context, productID int) (bool, error)
}

// RecordMovementUseCase is the orchestrator between the ledger and the
// notification engine: the ledger itself never emits, so the post-movement
// alert evaluation happens here, after the movement has committed.
type RecordMovementUseCase struct {
	ledger LedgerService
	alerts AlertEngine
	logger *zap.Logger
}

func NewRecordMovementUseCase(ledger LedgerService, alerts AlertEngine, logger *zap.Logger) *RecordMovementUseCase {
	return &RecordMovementUseCase{
		ledger: ledger,
		alerts: alerts,
		logger: logger,
	}
}

func (uc *RecordMovementUseCase) RecordMovement(ctx context.Context, in dto.RecordMovementInput) (*dto.MovementResult, error) {
	result, err := uc.ledger.RecordMovement(ctx, in)
	if err != nil {
		return nil, err
	}

	ntype, hasEvent := movementNotificationType(in.Type)
	if hasEvent {
		_, err = uc.alerts.Emit(ctx, ntype, dto.AlertPayload{
			ProductID:   &result.Movement.ProductID,
			ProductName: result.ProductName,
			Quantity:    &result.Movement.Quantity,
			Unit:        result.Movement.Unit,
		})
		if err != nil {
			uc.logger.Error("failed to emit movement notification",
				zap.Int64("movementId", result.Movement.ID), zap.Error(err))
			return nil, err
		}
	}

	emitted, err := uc.alerts.CheckLowStockForProduct(ctx, result.Movement.ProductID)
	if err != nil {
		uc.logger.Error("low-stock evaluation failed",
			zap.Int("productId", result.Movement.ProductID), zap.Error(err))
		return nil, err
	}
	if emitted {
		uc.logger.Info("low-stock alert emitted after movement",
			zap.Int("productId", result.Movement.ProductID),
			zap.String("balance", result.BalanceAfter.String()),
		)
	}

	return result, nil
}

func (uc *RecordMovementUseCase) ReverseMovement(ctx context.Context, movementID int64) error {
	return uc.ledger.ReverseMovement(ctx, movementID)
}

func (uc *RecordMovementUseCase) ListMovements(ctx context.Context, productID int) ([]domain.StockMovement, error) {
	return uc.ledger.ListMovements(ctx, productID)
}

// movementNotificationType maps ledger directions to their notification
// types. ADJUST movements are corrections and produce no event.
func movementNotificationType(t domain.MovementType) (domain.NotificationType, bool) {
	switch t {
	case domain.MovementIn:
		return domain.NotificationStockIn, true
	case domain.MovementOut:
		return domain.NotificationStockOut, true
	default:
		return "", false
	}
}
