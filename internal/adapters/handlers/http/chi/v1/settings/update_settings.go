package settings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
)

// UpdateSettingsV1 is the handler for updating gallery settings v1
func (h *HandlerV1) UpdateSettingsV1(w http.ResponseWriter, r *http.Request) {

	var req domain.GallerySettings

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.logger.Error("error decoding settings request", "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	updated, err := h.settingsService.Update(r.Context(), req)
	switch {
	case errors.Is(err, domain.ErrLockTimeout):
		http.Error(w, "storage busy, retry later", http.StatusServiceUnavailable)
		return
	case err != nil:
		h.logger.Error("error updating settings", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}
