package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type NotificationType string

const (
	NotificationLowStock      NotificationType = "LOW_STOCK"
	NotificationExpiringSoon  NotificationType = "EXPIRING_SOON"
	NotificationStockIn       NotificationType = "STOCK_IN"
	NotificationStockOut      NotificationType = "STOCK_OUT"
	NotificationProductAdded  NotificationType = "PRODUCT_ADDED"
	NotificationProductEdited NotificationType = "PRODUCT_EDITED"
)

type NotificationPriority string

const (
	PriorityHigh   NotificationPriority = "HIGH"
	PriorityMedium NotificationPriority = "MEDIUM"
	PriorityLow    NotificationPriority = "LOW"
)

// Priority classifies a notification type into its fixed priority band.
func (t NotificationType) Priority() NotificationPriority {
	switch t {
	case NotificationLowStock, NotificationExpiringSoon:
		return PriorityHigh
	case NotificationStockIn, NotificationStockOut:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Notification carries a denormalized product snapshot so it stays readable
// after the product is edited or deleted. Title, message and icon are
// rendered once at creation and never recomputed.
type Notification struct {
	ID          int64
	Type        NotificationType
	Priority    NotificationPriority
	Title       string
	Message     string
	Icon        string
	ProductID   *int
	ProductName *string
	Quantity    *decimal.Decimal
	Unit        *string
	IsRead      bool
	CreatedAt   time.Time
}
