package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	batchctrl "stockroom/internal/batch/controller"
	ledgerctrl "stockroom/internal/ledger/controller"
	notifctrl "stockroom/internal/notification/controller"
	productctrl "stockroom/internal/product/controller"
)

func NewRouter(
	productCtrl *productctrl.Controller,
	ledgerCtrl *ledgerctrl.Controller,
	batchCtrl *batchctrl.Controller,
	notifCtrl *notifctrl.Controller,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	r.Use(requestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/products", func(r chi.Router) {
		r.Post("/", productCtrl.HandleCreate)
		r.Get("/", productCtrl.HandleList)
		r.Route("/{productId}", func(r chi.Router) {
			r.Get("/", productCtrl.HandleGet)
			r.Put("/", productCtrl.HandleUpdate)
			r.Delete("/", productCtrl.HandleDelete)
			r.Get("/movements", ledgerCtrl.HandleListMovements)
			r.Get("/batches", batchCtrl.HandleActiveBatches)
			r.Get("/batches/oldest", batchCtrl.HandleOldestBatch)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", productCtrl.HandleListCategories)
		r.Post("/", productCtrl.HandleCreateCategory)
	})

	r.Route("/movements", func(r chi.Router) {
		r.Post("/", ledgerCtrl.HandleRecordMovement)
		r.Delete("/{movementId}", ledgerCtrl.HandleReverseMovement)
	})

	r.Route("/batches", func(r chi.Router) {
		r.Get("/expiring", batchCtrl.HandleExpiringBatches)
		r.Get("/expiring/count", batchCtrl.HandleCountExpiringProducts)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", notifCtrl.HandleList)
		r.Delete("/", notifCtrl.HandleClearAll)
		r.Get("/unread-count", notifCtrl.HandleUnreadCount)
		r.Post("/read-all", notifCtrl.HandleMarkAllAsRead)
		r.Delete("/read", notifCtrl.HandleClearRead)
		r.Post("/{notificationId}/read", notifCtrl.HandleMarkAsRead)
		r.Delete("/{notificationId}", notifCtrl.HandleDelete)
	})

	r.Route("/alerts", func(r chi.Router) {
		r.Post("/low-stock/check", notifCtrl.HandleCheckLowStock)
		r.Post("/expiry/check", notifCtrl.HandleCheckExpiring)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			next.ServeHTTP(w, r)
		})
	}
}
