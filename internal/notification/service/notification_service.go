package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stockroom/internal/domain"
	"stockroom/internal/dto"
)

type Repository interface {
	Insert(ctx context.Context, n domain.Notification) (int64, error)
	ExistsRecent(ctx context.Context, ntype domain.NotificationType, productID int, within time.Duration) (bool, error)
	List(ctx context.Context, unreadOnly bool) ([]domain.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkAsRead(ctx context.Context, id int64) error
	MarkAllAsRead(ctx context.Context) error
	ClearRead(ctx context.Context) (int64, error)
	ClearAll(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// ProductSource is the registry slice the sweeps read from.
type ProductSource interface {
	FindByID(ctx context.Context, id int) (*domain.Product, error)
	FindLowStock(ctx context.Context) ([]domain.Product, error)
	FindExpiringWithin(ctx context.Context, days int) ([]domain.Product, error)
}

// NotificationService derives user-facing alerts from registry and ledger
// state. Direct events (movements, registry mutations) emit unconditionally;
// sweeps dedup against the lookback window so repeated refreshes cannot storm
// the same alert.
type NotificationService struct {
	repo             Repository
	products         ProductSource
	logger           *zap.Logger
	dedupWindow      time.Duration
	expiryWindowDays int
}

func NewNotificationService(
	repo Repository,
	products ProductSource,
	logger *zap.Logger,
	dedupWindow time.Duration,
	expiryWindowDays int,
) *NotificationService {
	return &NotificationService{
		repo:             repo,
		products:         products,
		logger:           logger,
		dedupWindow:      dedupWindow,
		expiryWindowDays: expiryWindowDays,
	}
}

// Emit renders and persists one notification. Title, message and icon are
// computed here, once; they are never recomputed from live product state.
func (s *NotificationService) Emit(ctx context.Context, ntype domain.NotificationType, payload dto.AlertPayload) (*domain.Notification, error) {
	n := render(ntype, payload)

	id, err := s.repo.Insert(ctx, n)
	if err != nil {
		return nil, err
	}
	n.ID = id

	s.logger.Info("notification emitted",
		zap.Int64("notificationId", id),
		zap.String("type", string(ntype)),
		zap.String("priority", string(n.Priority)),
	)

	return &n, nil
}

// CheckLowStockAlerts sweeps all active products at or below their alert
// threshold and emits LOW_STOCK for each, unless one was already emitted for
// that product within the dedup window. A persistence failure aborts the
// whole sweep.
func (s *NotificationService) CheckLowStockAlerts(ctx context.Context) (int, error) {
	products, err := s.products.FindLowStock(ctx)
	if err != nil {
		return 0, err
	}

	emitted := 0
	for _, p := range products {
		created, err := s.emitDeduped(ctx, domain.NotificationLowStock, p, 0)
		if err != nil {
			return emitted, err
		}
		if created {
			emitted++
		}
	}

	s.logger.Info("low-stock sweep finished",
		zap.Int("candidates", len(products)), zap.Int("emitted", emitted))

	return emitted, nil
}

// CheckExpiringAlerts sweeps products whose legacy expiry date falls within
// the configured window (strictly in the future) with the same dedup rule.
func (s *NotificationService) CheckExpiringAlerts(ctx context.Context) (int, error) {
	products, err := s.products.FindExpiringWithin(ctx, s.expiryWindowDays)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	emitted := 0
	for _, p := range products {
		days, ok := p.DaysUntilExpiry(now)
		if !ok {
			continue
		}
		created, err := s.emitDeduped(ctx, domain.NotificationExpiringSoon, p, days)
		if err != nil {
			return emitted, err
		}
		if created {
			emitted++
		}
	}

	s.logger.Info("expiry sweep finished",
		zap.Int("candidates", len(products)), zap.Int("emitted", emitted))

	return emitted, nil
}

// CheckLowStockForProduct evaluates a single product after a movement.
// Returns whether an alert was emitted.
func (s *NotificationService) CheckLowStockForProduct(ctx context.Context, productID int) (bool, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return false, err
	}
	if !p.IsLowStock() {
		return false, nil
	}
	return s.emitDeduped(ctx, domain.NotificationLowStock, *p, 0)
}

func (s *NotificationService) emitDeduped(ctx context.Context, ntype domain.NotificationType, p domain.Product, daysLeft int) (bool, error) {
	exists, err := s.repo.ExistsRecent(ctx, ntype, p.ID, s.dedupWindow)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	productID := p.ID
	quantity := p.CurrentStock
	threshold := p.MinStockThreshold
	_, err = s.Emit(ctx, ntype, dto.AlertPayload{
		ProductID:   &productID,
		ProductName: p.Name,
		Quantity:    &quantity,
		Unit:        p.Unit,
		Threshold:   &threshold,
		DaysLeft:    daysLeft,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *NotificationService) List(ctx context.Context, unreadOnly bool) ([]domain.Notification, error) {
	return s.repo.List(ctx, unreadOnly)
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	return s.repo.UnreadCount(ctx)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id int64) error {
	return s.repo.MarkAsRead(ctx, id)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context) error {
	return s.repo.MarkAllAsRead(ctx)
}

func (s *NotificationService) ClearRead(ctx context.Context) (int64, error) {
	return s.repo.ClearRead(ctx)
}

func (s *NotificationService) ClearAll(ctx context.Context) (int64, error) {
	return s.repo.ClearAll(ctx)
}

func (s *NotificationService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// render builds the stored form of a notification from its type and payload.
func render(ntype domain.NotificationType, payload dto.AlertPayload) domain.Notification {
	n := domain.Notification{
		Type:      ntype,
		Priority:  ntype.Priority(),
		ProductID: payload.ProductID,
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
	}
	if payload.ProductName != "" {
		name := payload.ProductName
		n.ProductName = &name
	}
	if payload.Quantity != nil {
		q := *payload.Quantity
		n.Quantity = &q
	}
	if payload.Unit != "" {
		unit := payload.Unit
		n.Unit = &unit
	}

	switch ntype {
	case domain.NotificationLowStock:
		n.Title = "Low stock"
		n.Icon = "alert-circle"
		if payload.Quantity != nil && payload.Threshold != nil {
			n.Message = fmt.Sprintf("%s is down to %s %s (threshold %s)",
				payload.ProductName, payload.Quantity, payload.Unit, payload.Threshold)
		} else {
			n.Message = fmt.Sprintf("%s is low on stock", payload.ProductName)
		}
	case domain.NotificationExpiringSoon:
		n.Title = "Expiring soon"
		n.Icon = "time"
		n.Message = fmt.Sprintf("%s expires in %d days", payload.ProductName, payload.DaysLeft)
	case domain.NotificationStockIn:
		n.Title = "Stock in"
		n.Icon = "arrow-down-circle"
		n.Message = fmt.Sprintf("Received %s %s of %s", payload.Quantity, payload.Unit, payload.ProductName)
	case domain.NotificationStockOut:
		n.Title = "Stock out"
		n.Icon = "arrow-up-circle"
		n.Message = fmt.Sprintf("Issued %s %s of %s", payload.Quantity, payload.Unit, payload.ProductName)
	case domain.NotificationProductAdded:
		n.Title = "Product added"
		n.Icon = "add-circle"
		n.Message = fmt.Sprintf("%s was added to the catalog", payload.ProductName)
	case domain.NotificationProductEdited:
		n.Title = "Product updated"
		n.Icon = "create"
		n.Message = fmt.Sprintf("%s was updated", payload.ProductName)
	}

	return n
}
