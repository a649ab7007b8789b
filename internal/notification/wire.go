package notification

import (
	"database/sql"

	"go.uber.org/zap"

	"stockroom/internal/config"
	"stockroom/internal/notification/controller"
	notifrepo "stockroom/internal/notification/repository"
	"stockroom/internal/notification/service"
	productrepo "stockroom/internal/product/repository"
)

// NewModule wires the notification engine. The service is returned alongside
// the controller because the ledger and registry orchestrators emit through it.
func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) (*controller.Controller, *service.NotificationService) {
	repo := notifrepo.NewMySQLNotificationRepository(db)
	products := productrepo.NewMySQLProductRepository(db)

	svc := service.NewNotificationService(
		repo,
		products,
		logger,
		cfg.Alerts.DedupWindow,
		cfg.Alerts.ExpiryWindowDays,
	)

	return controller.NewController(svc, logger), svc
}
