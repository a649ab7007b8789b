package ledger

import (
	"database/sql"

	"go.uber.org/zap"

	"stockroom/internal/config"
	"stockroom/internal/ledger/controller"
	ledgerrepo "stockroom/internal/ledger/repository"
	"stockroom/internal/ledger/service"
	"stockroom/internal/ledger/usecase"
	productrepo "stockroom/internal/product/repository"
)

func NewModule(db *sql.DB, cfg *config.Config, alerts usecase.AlertEngine, logger *zap.Logger) *controller.Controller {
	movementRepo := ledgerrepo.NewMySQLMovementRepository(db)
	productRepo := productrepo.NewMySQLProductRepository(db)

	svc := service.NewLedgerService(db, productRepo, movementRepo, logger, cfg.Ledger.TxTimeout)
	uc := usecase.NewRecordMovementUseCase(svc, alerts, logger)

	return controller.NewController(uc, logger)
}
