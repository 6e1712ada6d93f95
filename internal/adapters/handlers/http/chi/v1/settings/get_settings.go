package settings

import (
	"encoding/json"
	"net/http"
)

// GetSettingsV1 is the handler for reading gallery settings v1
func (h *HandlerV1) GetSettingsV1(w http.ResponseWriter, r *http.Request) {

	current, err := h.settingsService.Get(r.Context())
	if err != nil {
		h.logger.Error("error reading settings", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(current)
}
