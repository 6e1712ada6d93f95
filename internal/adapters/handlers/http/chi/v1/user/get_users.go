package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
)

// ListUsersV1 is the handler for listing users v1
func (h *HandlerV1) ListUsersV1(w http.ResponseWriter, r *http.Request) {

	users, err := h.userService.List(r.Context())
	if err != nil {
		h.logger.Error("error listing users", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(users)
}

// GetUserV1 is the handler for resolving one user v1
func (h *HandlerV1) GetUserV1(w http.ResponseWriter, r *http.Request) {

	id := chi.URLParam(r, "id")

	u, err := h.userService.Get(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("error resolving user", "id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(u)
}
