package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockroom/internal/domain"
	"stockroom/internal/dto"
	apperrors "stockroom/internal/errors"
)

type MovementUseCase interface {
	RecordMovement(ctx context.Context, in dto.RecordMovementInput) (*dto.MovementResult, error)
	ReverseMovement(ctx context.Context, movementID int64) error
	ListMovements(ctx context.Context, productID int) ([]domain.StockMovement, error)
}

type Controller struct {
	useCase MovementUseCase
	logger  *zap.Logger
}

func NewController(useCase MovementUseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		logger:  logger,
	}
}

type RecordMovementRequest struct {
	ProductID       int             `json:"productId"`
	Type            string          `json:"type"`
	Quantity        decimal.Decimal `json:"quantity"`
	Notes           *string         `json:"notes"`
	ReferenceNo     *string         `json:"referenceNo"`
	BatchNumber     *string         `json:"batchNumber"`
	BatchExpiryDate *string         `json:"batchExpiryDate"`
}

type MovementDTO struct {
	ID              int64           `json:"id"`
	ProductID       int             `json:"productId"`
	Type            string          `json:"type"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	ReferenceNo     *string         `json:"referenceNo"`
	Notes           *string         `json:"notes"`
	BatchNumber     *string         `json:"batchNumber"`
	BatchExpiryDate *string         `json:"batchExpiryDate"`
	BalanceAfter    decimal.Decimal `json:"balanceAfter"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type RecordMovementResponse struct {
	TraceID       string          `json:"traceId"`
	Movement      MovementDTO     `json:"movement"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	Timestamp     time.Time       `json:"timestamp"`
}

func toMovementDTO(m domain.StockMovement) MovementDTO {
	d := MovementDTO{
		ID:           m.ID,
		ProductID:    m.ProductID,
		Type:         string(m.Type),
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		ReferenceNo:  m.ReferenceNo,
		Notes:        m.Notes,
		BatchNumber:  m.BatchNumber,
		BalanceAfter: m.BalanceAfter,
		CreatedAt:    m.CreatedAt,
	}
	if m.BatchExpiryDate != nil {
		formatted := m.BatchExpiryDate.Format("2006-01-02")
		d.BatchExpiryDate = &formatted
	}
	return d
}

func (c *Controller) HandleRecordMovement(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req RecordMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	in := dto.RecordMovementInput{
		ProductID:   req.ProductID,
		Type:        domain.MovementType(req.Type),
		Quantity:    req.Quantity,
		Notes:       req.Notes,
		ReferenceNo: req.ReferenceNo,
		BatchNumber: req.BatchNumber,
	}

	if req.BatchExpiryDate != nil && *req.BatchExpiryDate != "" {
		expiry, err := time.Parse("2006-01-02", *req.BatchExpiryDate)
		if err != nil {
			c.writeValidationError(w, "invalid batchExpiryDate", apperrors.ValidationDetail{
				Field:   "batchExpiryDate",
				Message: "batchExpiryDate must be formatted YYYY-MM-DD",
			})
			return
		}
		in.BatchExpiryDate = &expiry
	}

	result, err := c.useCase.RecordMovement(r.Context(), in)
	if err != nil {
		c.handleError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, RecordMovementResponse{
		TraceID:       traceID,
		Movement:      toMovementDTO(result.Movement),
		BalanceBefore: result.BalanceBefore,
		BalanceAfter:  result.BalanceAfter,
		Timestamp:     time.Now().UTC(),
	})
}

func (c *Controller) HandleReverseMovement(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	raw := chi.URLParam(r, "movementId")
	movementID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || movementID <= 0 {
		c.writeValidationError(w, "invalid movementId", apperrors.ValidationDetail{
			Field:   "movementId",
			Message: "movementId must be a positive integer",
		})
		return
	}

	if err := c.useCase.ReverseMovement(r.Context(), movementID); err != nil {
		c.handleError(w, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) HandleListMovements(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "productId")
	productID, err := strconv.Atoi(raw)
	if err != nil || productID <= 0 {
		c.writeValidationError(w, "invalid productId", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
		return
	}

	movements, err := c.useCase.ListMovements(r.Context(), productID)
	if err != nil {
		c.handleError(w, err, c.logger)
		return
	}

	dtos := make([]MovementDTO, 0, len(movements))
	for _, m := range movements {
		dtos = append(dtos, toMovementDTO(m))
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{"movements": dtos})
}

func (c *Controller) handleError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return
	}

	if ise, ok := apperrors.IsInsufficientStockError(err); ok {
		c.writeError(w, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error(), map[string]interface{}{
			"productId": ise.ProductID,
			"available": ise.Available,
			"requested": ise.Requested,
			"shortfall": ise.Shortfall,
		})
		return
	}

	if _, ok := apperrors.IsIrreversibleMovementError(err); ok {
		c.writeError(w, http.StatusConflict, "IRREVERSIBLE_MOVEMENT", err.Error(), nil)
		return
	}

	logger.Error("movement operation failed", zap.Error(err))
	c.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil)
}

func (c *Controller) writeError(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	c.writeJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
		"details": details,
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
