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

type NotificationService interface {
	CheckLowStockAlerts(ctx context.Context) (int, error)
	CheckExpiringAlerts(ctx context.Context) (int, error)
	List(ctx context.Context, unreadOnly bool) ([]domain.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkAsRead(ctx context.Context, id int64) error
	MarkAllAsRead(ctx context.Context) error
	ClearRead(ctx context.Context) (int64, error)
	ClearAll(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type Controller struct {
	service NotificationService
	logger  *zap.Logger
}

func NewController(service NotificationService, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

type NotificationDTO struct {
	ID          int64            `json:"id"`
	Type        string           `json:"type"`
	Priority    string           `json:"priority"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Icon        string           `json:"icon"`
	ProductID   *int             `json:"productId"`
	ProductName *string          `json:"productName"`
	Quantity    *decimal.Decimal `json:"quantity"`
	Unit        *string          `json:"unit"`
	IsRead      bool             `json:"isRead"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func toNotificationDTO(n domain.Notification) NotificationDTO {
	return NotificationDTO{
		ID:          n.ID,
		Type:        string(n.Type),
		Priority:    string(n.Priority),
		Title:       n.Title,
		Message:     n.Message,
		Icon:        n.Icon,
		ProductID:   n.ProductID,
		ProductName: n.ProductName,
		Quantity:    n.Quantity,
		Unit:        n.Unit,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
}

func (c *Controller) HandleList(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := c.service.List(r.Context(), unreadOnly)
	if err != nil {
		c.handleError(w, err)
		return
	}

	dtos := make([]NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		dtos = append(dtos, toNotificationDTO(n))
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": dtos})
}

func (c *Controller) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := c.service.UnreadCount(r.Context())
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (c *Controller) HandleMarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathNotificationID(w, r)
	if !ok {
		return
	}

	if err := c.service.MarkAsRead(r.Context(), id); err != nil {
		c.handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) HandleMarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	if err := c.service.MarkAllAsRead(r.Context()); err != nil {
		c.handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) HandleClearRead(w http.ResponseWriter, r *http.Request) {
	deleted, err := c.service.ClearRead(r.Context())
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (c *Controller) HandleClearAll(w http.ResponseWriter, r *http.Request) {
	deleted, err := c.service.ClearAll(r.Context())
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (c *Controller) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathNotificationID(w, r)
	if !ok {
		return
	}

	if err := c.service.Delete(r.Context(), id); err != nil {
		c.handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) HandleCheckLowStock(w http.ResponseWriter, r *http.Request) {
	emitted, err := c.service.CheckLowStockAlerts(r.Context())
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]int{"emitted": emitted})
}

func (c *Controller) HandleCheckExpiring(w http.ResponseWriter, r *http.Request) {
	emitted, err := c.service.CheckExpiringAlerts(r.Context())
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]int{"emitted": emitted})
}

func (c *Controller) pathNotificationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "notificationId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.writeValidationError(w, "invalid notificationId", apperrors.ValidationDetail{
			Field:   "notificationId",
			Message: "notificationId must be a positive integer",
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

	c.logger.Error("notification operation failed", zap.Error(err))
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
