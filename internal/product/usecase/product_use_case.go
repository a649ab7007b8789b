package usecase

import (
	"context"

	"go.uber.org/zap"

	"stockroom/internal/domain"
	"stockroom/internal/dto"
)

type Service interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Get(ctx context.Context, id int) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name string) (int, error)
}

type Notifier interface {
	Emit(ctx context.Context, ntype domain.NotificationType, payload dto.AlertPayload) (*domain.Notification, error)
}

// ProductUseCase orchestrates registry mutations with their registry-event
// notifications. The service itself never emits.
type ProductUseCase struct {
	service  Service
	notifier Notifier
	logger   *zap.Logger
}

func NewProductUseCase(service Service, notifier Notifier, logger *zap.Logger) *ProductUseCase {
	return &ProductUseCase{
		service:  service,
		notifier: notifier,
		logger:   logger,
	}
}

func (uc *ProductUseCase) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	created, err := uc.service.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	_, err = uc.notifier.Emit(ctx, domain.NotificationProductAdded, dto.AlertPayload{
		ProductID:   &created.ID,
		ProductName: created.Name,
		Unit:        created.Unit,
	})
	if err != nil {
		uc.logger.Error("failed to emit product-added notification", zap.Int("productId", created.ID), zap.Error(err))
		return nil, err
	}

	return created, nil
}

func (uc *ProductUseCase) Get(ctx context.Context, id int) (*domain.Product, error) {
	return uc.service.Get(ctx, id)
}

func (uc *ProductUseCase) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return uc.service.List(ctx, filter)
}

func (uc *ProductUseCase) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	updated, err := uc.service.Update(ctx, p)
	if err != nil {
		return nil, err
	}

	_, err = uc.notifier.Emit(ctx, domain.NotificationProductEdited, dto.AlertPayload{
		ProductID:   &updated.ID,
		ProductName: updated.Name,
		Unit:        updated.Unit,
	})
	if err != nil {
		uc.logger.Error("failed to emit product-edited notification", zap.Int("productId", updated.ID), zap.Error(err))
		return nil, err
	}

	return updated, nil
}

func (uc *ProductUseCase) Delete(ctx context.Context, id int) error {
	return uc.service.Delete(ctx, id)
}

func (uc *ProductUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return uc.service.ListCategories(ctx)
}

func (uc *ProductUseCase) CreateCategory(ctx context.Context, name string) (int, error) {
	return uc.service.CreateCategory(ctx, name)
}
