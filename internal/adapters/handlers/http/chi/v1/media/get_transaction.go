package media

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetTransactionV1 is the handler for upload transaction lookup v1
func (h *HandlerV1) GetTransactionV1(w http.ResponseWriter, r *http.Request) {

	id := chi.URLParam(r, "id")

	txn, ok := h.uploadService.Transaction(id)
	if !ok {
		http.Error(w, "transaction not found or expired", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(txn)
}
