package media

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// GetYearV1 is the handler for one year of media v1
func (h *HandlerV1) GetYearV1(w http.ResponseWriter, r *http.Request) {

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1800 || year > 9999 {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}

	records, err := h.galleryService.MediaForYear(r.Context(), year)
	if err != nil {
		h.logger.Error("error reading year partition", "year", year, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(records)
}
