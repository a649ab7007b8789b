package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockroom/internal/domain"
	"stockroom/internal/dto"
	apperrors "stockroom/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ProductRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error)
	UpdateCurrentStock(ctx context.Context, tx *sql.Tx, id int, balance decimal.Decimal) error
}

type MovementRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, m domain.StockMovement) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.StockMovement, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.StockMovement, error)
	Delete(ctx context.Context, tx *sql.Tx, id int64) error
	ListByProduct(ctx context.Context, productID int) ([]domain.StockMovement, error)
}

// LedgerService is the single authority over stock balances. Every balance
// change appends one immutable movement row and rewrites the product's cached
// current_stock inside the same transaction; the two can never diverge.
//
// Movements on the same product are additionally serialized with a keyed
// mutex, so two near-simultaneous OUTs cannot both pass the sufficiency
// check before either commits.
type LedgerService struct {
	db           TransactionManager
	productRepo  ProductRepository
	movementRepo MovementRepository
	logger       *zap.Logger
	txTimeout    time.Duration

	mu           sync.Mutex
	productLocks map[int]*sync.Mutex
}

func NewLedgerService(
	db TransactionManager,
	productRepo ProductRepository,
	movementRepo MovementRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *LedgerService {
	return &LedgerService{
		db:           db,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		logger:       logger,
		txTimeout:    txTimeout,
		productLocks: make(map[int]*sync.Mutex),
	}
}

func (s *LedgerService) lockProduct(productID int) func() {
	s.mu.Lock()
	lock, ok := s.productLocks[productID]
	if !ok {
		lock = &sync.Mutex{}
		s.productLocks[productID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// RecordMovement validates and applies one stock mutation. On any failure
// nothing is written: the movement row and the cache update commit together
// or not at all.
func (s *LedgerService) RecordMovement(ctx context.Context, in dto.RecordMovementInput) (*dto.MovementResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	unlock := s.lockProduct(in.ProductID)
	defer unlock()

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, apperrors.NewPersistenceError("beginning transaction", err)
	}
	// Rollback is a no-op after a successful commit.
	defer tx.Rollback()

	product, err := s.productRepo.FindByIDForUpdate(txCtx, tx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, apperrors.NewValidationError("product is inactive", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "movements are not allowed on inactive products",
		})
	}

	balanceBefore := product.CurrentStock
	newBalance, err := transition(product, in)
	if err != nil {
		return nil, err
	}

	movement := domain.StockMovement{
		ProductID:       in.ProductID,
		Type:            in.Type,
		Quantity:        in.Quantity,
		Unit:            product.Unit,
		ReferenceNo:     in.ReferenceNo,
		Notes:           in.Notes,
		BatchNumber:     in.BatchNumber,
		BatchExpiryDate: in.BatchExpiryDate,
		BalanceAfter:    newBalance,
		// Truncated to the DATETIME precision so the stored row reads back
		// equal to what the caller was handed.
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	movementID, err := s.movementRepo.Insert(txCtx, tx, movement)
	if err != nil {
		s.logger.Error("failed to insert movement", zap.Int("productId", in.ProductID), zap.Error(err))
		return nil, err
	}
	movement.ID = movementID

	if err := s.productRepo.UpdateCurrentStock(txCtx, tx, in.ProductID, newBalance); err != nil {
		s.logger.Error("failed to update cached stock", zap.Int("productId", in.ProductID), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit movement", zap.Int("productId", in.ProductID), zap.Error(err))
		return nil, apperrors.NewPersistenceError("committing movement", err)
	}

	s.logger.Info("movement recorded",
		zap.Int64("movementId", movementID),
		zap.Int("productId", in.ProductID),
		zap.String("type", string(in.Type)),
		zap.String("quantity", in.Quantity.String()),
		zap.String("balanceAfter", newBalance.String()),
	)

	return &dto.MovementResult{
		Movement:      movement,
		ProductName:   product.Name,
		BalanceBefore: balanceBefore,
		BalanceAfter:  newBalance,
	}, nil
}

// ReverseMovement deletes a ledger entry and restores the cached balance to
// what it would be had the entry never existed. Refused when that balance
// would go negative, and for ADJUST entries, which have no defined inverse.
func (s *LedgerService) ReverseMovement(ctx context.Context, movementID int64) error {
	// Read outside the transaction only to learn which product to serialize on.
	peek, err := s.movementRepo.FindByID(ctx, movementID)
	if err != nil {
		return err
	}

	unlock := s.lockProduct(peek.ProductID)
	defer unlock()

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return apperrors.NewPersistenceError("beginning transaction", err)
	}
	defer tx.Rollback()

	movement, err := s.movementRepo.FindByIDForUpdate(txCtx, tx, movementID)
	if err != nil {
		return err
	}

	product, err := s.productRepo.FindByIDForUpdate(txCtx, tx, movement.ProductID)
	if err != nil {
		return err
	}

	var restored decimal.Decimal
	switch movement.Type {
	case domain.MovementIn:
		restored = product.CurrentStock.Sub(movement.Quantity)
		if restored.IsNegative() {
			return apperrors.NewIrreversibleMovementError(movementID,
				"reversing this stock-in would drive the balance negative")
		}
	case domain.MovementOut:
		restored = product.CurrentStock.Add(movement.Quantity)
	default:
		return apperrors.NewIrreversibleMovementError(movementID,
			"adjustment movements cannot be reversed")
	}

	if err := s.movementRepo.Delete(txCtx, tx, movementID); err != nil {
		return err
	}

	if err := s.productRepo.UpdateCurrentStock(txCtx, tx, movement.ProductID, restored); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit reversal", zap.Int64("movementId", movementID), zap.Error(err))
		return apperrors.NewPersistenceError("committing reversal", err)
	}

	s.logger.Info("movement reversed",
		zap.Int64("movementId", movementID),
		zap.Int("productId", movement.ProductID),
		zap.String("restoredBalance", restored.String()),
	)

	return nil
}

func (s *LedgerService) ListMovements(ctx context.Context, productID int) ([]domain.StockMovement, error) {
	return s.movementRepo.ListByProduct(ctx, productID)
}

// transition computes the new balance for a movement, enforcing the
// non-negative invariant. OUT to exactly zero is allowed; below zero is not.
func transition(product *domain.Product, in dto.RecordMovementInput) (decimal.Decimal, error) {
	switch in.Type {
	case domain.MovementIn:
		return product.CurrentStock.Add(in.Quantity), nil
	case domain.MovementOut:
		newBalance := product.CurrentStock.Sub(in.Quantity)
		if newBalance.IsNegative() {
			return decimal.Zero, apperrors.NewInsufficientStockError(product.ID, product.CurrentStock, in.Quantity)
		}
		return newBalance, nil
	default:
		// ADJUST: the quantity is the absolute target balance.
		return in.Quantity, nil
	}
}

func validateInput(in dto.RecordMovementInput) error {
	var details []apperrors.ValidationDetail

	if in.ProductID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
	}

	switch in.Type {
	case domain.MovementIn, domain.MovementOut:
		if !in.Quantity.IsPositive() {
			details = append(details, apperrors.ValidationDetail{
				Field:   "quantity",
				Message: "quantity must be positive for IN and OUT movements",
			})
		}
	case domain.MovementAdjust:
		if in.Quantity.IsNegative() {
			details = append(details, apperrors.ValidationDetail{
				Field:   "quantity",
				Message: "quantity must be zero or positive for ADJUST movements",
			})
		}
	default:
		details = append(details, apperrors.ValidationDetail{
			Field:   "type",
			Message: "type must be one of IN, OUT, ADJUST",
		})
	}

	if in.BatchExpiryDate != nil && in.BatchNumber == nil {
		details = append(details, apperrors.ValidationDetail{
			Field:   "batchNumber",
			Message: "batchNumber is required when batchExpiryDate is set",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
