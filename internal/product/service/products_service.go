package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockroom/internal/domain"
	apperrors "stockroom/internal/errors"
)

type Repository interface {
	Insert(ctx context.Context, p domain.Product) (int, error)
	FindByID(ctx context.Context, id int) (*domain.Product, error)
	FindBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, p domain.Product) error
	SoftDelete(ctx context.Context, id int) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	Insert(ctx context.Context, name string) (int, error)
}

// ProductService owns product records. It never touches current_stock: the
// cached balance belongs to the ledger and is written only through it.
type ProductService struct {
	repo       Repository
	categories CategoryRepository
	logger     *zap.Logger
}

func NewProductService(repo Repository, categories CategoryRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		logger:     logger,
	}
}

func (s *ProductService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := s.validate(p); err != nil {
		return nil, err
	}

	if err := s.checkSKUAvailable(ctx, p.SKU, 0); err != nil {
		return nil, err
	}

	p.IsActive = true
	p.CurrentStock = decimal.Zero

	id, err := s.repo.Insert(ctx, p)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created", zap.Int("productId", id), zap.String("name", p.Name))

	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) Get(ctx context.Context, id int) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.repo.List(ctx, filter)
}

func (s *ProductService) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := s.validate(p); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByID(ctx, p.ID); err != nil {
		return nil, err
	}

	if err := s.checkSKUAvailable(ctx, p.SKU, p.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("product updated", zap.Int("productId", p.ID))

	return s.repo.FindByID(ctx, p.ID)
}

func (s *ProductService) Delete(ctx context.Context, id int) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deactivated", zap.Int("productId", id))
	return nil
}

func (s *ProductService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *ProductService) CreateCategory(ctx context.Context, name string) (int, error) {
	if name == "" {
		return 0, apperrors.NewValidationError("name is required", apperrors.ValidationDetail{
			Field:   "name",
			Message: "name must not be empty",
		})
	}
	return s.categories.Insert(ctx, name)
}

func (s *ProductService) validate(p domain.Product) error {
	var details []apperrors.ValidationDetail

	if p.Name == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "name",
			Message: "name is required",
		})
	}
	if p.Unit == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "unit",
			Message: "unit is required",
		})
	}
	if p.PurchasePrice.IsNegative() {
		details = append(details, apperrors.ValidationDetail{
			Field:   "purchasePrice",
			Message: "purchasePrice must not be negative",
		})
	}
	if p.SellingPrice.IsNegative() {
		details = append(details, apperrors.ValidationDetail{
			Field:   "sellingPrice",
			Message: "sellingPrice must not be negative",
		})
	}
	if p.MinStockThreshold.IsNegative() {
		details = append(details, apperrors.ValidationDetail{
			Field:   "minStockThreshold",
			Message: "minStockThreshold must not be negative",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

// checkSKUAvailable enforces SKU uniqueness when a SKU is present. excludeID
// lets an update keep its own SKU.
func (s *ProductService) checkSKUAvailable(ctx context.Context, sku *string, excludeID int) error {
	if sku == nil || *sku == "" {
		return nil
	}

	existing, err := s.repo.FindBySKU(ctx, *sku)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil
		}
		return err
	}

	if existing.ID != excludeID {
		return apperrors.NewValidationError("sku already in use", apperrors.ValidationDetail{
			Field:   "sku",
			Message: "a product with this sku already exists",
		})
	}
	return nil
}
