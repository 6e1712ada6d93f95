package settings

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/feniix/family-gallery-sub000/internal/core/port"
)

// HandlerV1 is the handler for v1 settings routes
type HandlerV1 struct {
	settingsService port.SettingsService
	logger          *slog.Logger
}

// NewSettingsHandlerV1 creates HandlerV1
func NewSettingsHandlerV1(service port.SettingsService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		settingsService: service,
		logger:          logger,
	}
}

// Routes exposes routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", h.GetSettingsV1)
	router.Put("/", h.UpdateSettingsV1)

	return router
}
