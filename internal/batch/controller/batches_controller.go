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

type BatchService interface {
	ActiveBatchesForProduct(ctx context.Context, productID int) ([]domain.Batch, error)
	ExpiringBatches(ctx context.Context, days int) ([]domain.Batch, error)
	OldestBatch(ctx context.Context, productID int) (*domain.Batch, error)
	CountExpiringProducts(ctx context.Context, days int) (int, error)
}

type Controller struct {
	service BatchService
	logger  *zap.Logger
}

func NewController(service BatchService, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

type BatchDTO struct {
	ProductID       int             `json:"productId"`
	ProductName     string          `json:"productName"`
	BatchNumber     string          `json:"batchNumber"`
	ExpiryDate      *string         `json:"expiryDate"`
	DaysUntilExpiry *int            `json:"daysUntilExpiry"`
	CurrentQuantity decimal.Decimal `json:"currentQuantity"`
	Unit            string          `json:"unit"`
}

func toBatchDTO(b domain.Batch) BatchDTO {
	d := BatchDTO{
		ProductID:       b.ProductID,
		ProductName:     b.ProductName,
		BatchNumber:     b.BatchNumber,
		CurrentQuantity: b.CurrentQuantity,
		Unit:            b.Unit,
	}
	if b.ExpiryDate != nil {
		formatted := b.ExpiryDate.Format("2006-01-02")
		d.ExpiryDate = &formatted
		days, _ := b.DaysUntilExpiry(time.Now())
		d.DaysUntilExpiry = &days
	}
	return d
}

func (c *Controller) HandleActiveBatches(w http.ResponseWriter, r *http.Request) {
	productID, ok := c.pathProductID(w, r)
	if !ok {
		return
	}

	batches, err := c.service.ActiveBatchesForProduct(r.Context(), productID)
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{"batches": toBatchDTOs(batches)})
}

func (c *Controller) HandleExpiringBatches(w http.ResponseWriter, r *http.Request) {
	days, ok := c.queryDays(w, r)
	if !ok {
		return
	}

	batches, err := c.service.ExpiringBatches(r.Context(), days)
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{"batches": toBatchDTOs(batches)})
}

func (c *Controller) HandleOldestBatch(w http.ResponseWriter, r *http.Request) {
	productID, ok := c.pathProductID(w, r)
	if !ok {
		return
	}

	batch, err := c.service.OldestBatch(r.Context(), productID)
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, toBatchDTO(*batch))
}

func (c *Controller) HandleCountExpiringProducts(w http.ResponseWriter, r *http.Request) {
	days, ok := c.queryDays(w, r)
	if !ok {
		return
	}

	count, err := c.service.CountExpiringProducts(r.Context(), days)
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func toBatchDTOs(batches []domain.Batch) []BatchDTO {
	dtos := make([]BatchDTO, 0, len(batches))
	for _, b := range batches {
		dtos = append(dtos, toBatchDTO(b))
	}
	return dtos
}

func (c *Controller) pathProductID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "productId")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		c.writeValidationError(w, "invalid productId", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

func (c *Controller) queryDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		raw = "30"
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		c.writeValidationError(w, "invalid days", apperrors.ValidationDetail{
			Field:   "days",
			Message: "days must be zero or positive",
		})
		return 0, false
	}
	return days, true
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

	c.logger.Error("batch query failed", zap.Error(err))
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
