package service

import (
	"context"

	"go.uber.org/zap"

	"stockroom/internal/domain"
	apperrors "stockroom/internal/errors"
)

type Repository interface {
	ActiveBatchesForProduct(ctx context.Context, productID int) ([]domain.Batch, error)
	ExpiringBatches(ctx context.Context, days int) ([]domain.Batch, error)
	OldestBatch(ctx context.Context, productID int) (*domain.Batch, error)
	CountExpiringProducts(ctx context.Context, days int) (int, error)
}

// BatchService is a read-only view over the ledger; it never writes.
type BatchService struct {
	repo   Repository
	logger *zap.Logger
}

func NewBatchService(repo Repository, logger *zap.Logger) *BatchService {
	return &BatchService{repo: repo, logger: logger}
}

func (s *BatchService) ActiveBatchesForProduct(ctx context.Context, productID int) ([]domain.Batch, error) {
	if productID <= 0 {
		return nil, invalidProductID()
	}
	return s.repo.ActiveBatchesForProduct(ctx, productID)
}

func (s *BatchService) ExpiringBatches(ctx context.Context, days int) ([]domain.Batch, error) {
	if days < 0 {
		return nil, invalidDays()
	}
	return s.repo.ExpiringBatches(ctx, days)
}

// OldestBatch is the advisory FIFO hint: callers may consult it before
// choosing which batch an OUT movement draws from, but nothing enforces it.
func (s *BatchService) OldestBatch(ctx context.Context, productID int) (*domain.Batch, error) {
	if productID <= 0 {
		return nil, invalidProductID()
	}
	return s.repo.OldestBatch(ctx, productID)
}

func (s *BatchService) CountExpiringProducts(ctx context.Context, days int) (int, error) {
	if days < 0 {
		return 0, invalidDays()
	}
	return s.repo.CountExpiringProducts(ctx, days)
}

func invalidProductID() error {
	return apperrors.NewValidationError("invalid productId", apperrors.ValidationDetail{
		Field:   "productId",
		Message: "productId must be a positive integer",
	})
}

func invalidDays() error {
	return apperrors.NewValidationError("invalid days", apperrors.ValidationDetail{
		Field:   "days",
		Message: "days must be zero or positive",
	})
}
