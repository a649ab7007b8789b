package batch

import (
	"database/sql"

	"go.uber.org/zap"

	"stockroom/internal/batch/controller"
	"stockroom/internal/batch/repository"
	"stockroom/internal/batch/service"
)

func NewModule(db *sql.DB, logger *zap.Logger) *controller.Controller {
	repo := repository.NewMySQLBatchRepository(db)
	svc := service.NewBatchService(repo, logger)
	return controller.NewController(svc, logger)
}
