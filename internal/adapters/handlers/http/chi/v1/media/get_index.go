package media

import (
	"encoding/json"
	"net/http"
)

// GetIndexV1 is the handler for the gallery index v1
func (h *HandlerV1) GetIndexV1(w http.ResponseWriter, r *http.Request) {

	idx, err := h.galleryService.Index(r.Context())
	if err != nil {
		h.logger.Error("error reading media index", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(idx)
}
