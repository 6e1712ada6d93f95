package user

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/feniix/family-gallery-sub000/internal/core/port"
)

// HandlerV1 is the handler for v1 user routes
type HandlerV1 struct {
	userService port.UserService
	logger      *slog.Logger
}

// NewUserHandlerV1 creates HandlerV1
func NewUserHandlerV1(service port.UserService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		userService: service,
		logger:      logger,
	}
}

// Routes exposes routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", h.ListUsersV1)
	router.Get("/{id}", h.GetUserV1)

	return router
}
