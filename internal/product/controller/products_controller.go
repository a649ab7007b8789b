package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockroom/internal/domain"
	apperrors "stockroom/internal/errors"
)

type ProductUseCase interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Get(ctx context.Context, id int) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name string) (int, error)
}

type Controller struct {
	useCase ProductUseCase
	logger  *zap.Logger
}

func NewController(useCase ProductUseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		logger:  logger,
	}
}

type ProductRequest struct {
	Name              string          `json:"name"`
	SKU               *string         `json:"sku"`
	Barcode           *string         `json:"barcode"`
	Category          string          `json:"category"`
	PurchasePrice     decimal.Decimal `json:"purchasePrice"`
	SellingPrice      decimal.Decimal `json:"sellingPrice"`
	Unit              string          `json:"unit"`
	MinStockThreshold decimal.Decimal `json:"minStockThreshold"`
	ExpiryDate        *string         `json:"expiryDate"`
}

type ProductDTO struct {
	ID                int             `json:"id"`
	Name              string          `json:"name"`
	SKU               *string         `json:"sku"`
	Barcode           *string         `json:"barcode"`
	Category          string          `json:"category"`
	PurchasePrice     decimal.Decimal `json:"purchasePrice"`
	SellingPrice      decimal.Decimal `json:"sellingPrice"`
	CurrentStock      decimal.Decimal `json:"currentStock"`
	Unit              string          `json:"unit"`
	MinStockThreshold decimal.Decimal `json:"minStockThreshold"`
	ExpiryDate        *string         `json:"expiryDate"`
	IsLowStock        bool            `json:"isLowStock"`
	IsActive          bool            `json:"isActive"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func toProductDTO(p domain.Product) ProductDTO {
	dto := ProductDTO{
		ID:                p.ID,
		Name:              p.Name,
		SKU:               p.SKU,
		Barcode:           p.Barcode,
		Category:          p.Category,
		PurchasePrice:     p.PurchasePrice,
		SellingPrice:      p.SellingPrice,
		CurrentStock:      p.CurrentStock,
		Unit:              p.Unit,
		MinStockThreshold: p.MinStockThreshold,
		IsLowStock:        p.IsLowStock(),
		IsActive:          p.IsActive,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.ExpiryDate != nil {
		formatted := p.ExpiryDate.Format("2006-01-02")
		dto.ExpiryDate = &formatted
	}
	return dto
}

func (c *Controller) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	p, err := productFromRequest(req, 0)
	if err != nil {
		c.handleError(w, err)
		return
	}

	created, err := c.useCase.Create(r.Context(), *p)
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, toProductDTO(*created))
}

func (c *Controller) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathID(w, r, "productId")
	if !ok {
		return
	}

	p, err := c.useCase.Get(r.Context(), id)
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, toProductDTO(*p))
}

func (c *Controller) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Category:   r.URL.Query().Get("category"),
		Search:     r.URL.Query().Get("search"),
	}

	products, err := c.useCase.List(r.Context(), filter)
	if err != nil {
		c.handleError(w, err)
		return
	}

	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, toProductDTO(p))
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{"products": dtos})
}

func (c *Controller) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathID(w, r, "productId")
	if !ok {
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	p, err := productFromRequest(req, id)
	if err != nil {
		c.handleError(w, err)
		return
	}
	p.IsActive = true

	updated, err := c.useCase.Update(r.Context(), *p)
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, toProductDTO(*updated))
}

func (c *Controller) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathID(w, r, "productId")
	if !ok {
		return
	}

	if err := c.useCase.Delete(r.Context(), id); err != nil {
		c.handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.useCase.ListCategories(r.Context())
	if err != nil {
		c.handleError(w, err)
		return
	}

	type categoryDTO struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	dtos := make([]categoryDTO, 0, len(categories))
	for _, cat := range categories {
		dtos = append(dtos, categoryDTO{ID: cat.ID, Name: cat.Name})
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{"categories": dtos})
}

func (c *Controller) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	id, err := c.useCase.CreateCategory(r.Context(), req.Name)
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id, "name": req.Name})
}

func productFromRequest(req ProductRequest, id int) (*domain.Product, error) {
	p := domain.Product{
		ID:                id,
		Name:              req.Name,
		SKU:               req.SKU,
		Barcode:           req.Barcode,
		Category:          req.Category,
		PurchasePrice:     req.PurchasePrice,
		SellingPrice:      req.SellingPrice,
		Unit:              req.Unit,
		MinStockThreshold: req.MinStockThreshold,
	}

	if req.ExpiryDate != nil && *req.ExpiryDate != "" {
		expiry, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid expiryDate", apperrors.ValidationDetail{
				Field:   "expiryDate",
				Message: "expiryDate must be formatted YYYY-MM-DD",
			})
		}
		p.ExpiryDate = &expiry
	}

	return &p, nil
}

func (c *Controller) pathID(w http.ResponseWriter, r *http.Request, param string) (int, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		c.writeValidationError(w, "invalid "+param, apperrors.ValidationDetail{
			Field:   param,
			Message: param + " must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

func (c *Controller) handleError(w http.ResponseWriter, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "NOT_FOUND",
			"message": err.Error(),
		})
		return
	}

	c.logger.Error("product operation failed", zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "INTERNAL_ERROR",
		"message": "an unexpected error occurred",
	})
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *Controller) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
