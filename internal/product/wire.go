package product

import (
	"database/sql"

	"go.uber.org/zap"

	"stockroom/internal/product/controller"
	"stockroom/internal/product/repository"
	"stockroom/internal/product/service"
	"stockroom/internal/product/usecase"
)

func NewModule(db *sql.DB, notifier usecase.Notifier, logger *zap.Logger) *controller.Controller {
	repo := repository.NewMySQLProductRepository(db)
	categoryRepo := repository.NewMySQLCategoryRepository(db)
	svc := service.NewProductService(repo, categoryRepo, logger)
	uc := usecase.NewProductUseCase(svc, notifier, logger)
	return controller.NewController(uc, logger)
}
