package media

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
)

// V1UploadResponse is the response body for a finished upload attempt
type V1UploadResponse struct {
	TransactionID string              `json:"transactionId"`
	Status        string              `json:"status"`
	Record        *domain.MediaRecord `json:"record,omitempty"`
}

// UploadMediaV1 is the handler for media upload v1. It expects a
// multipart form with a "file" part and optional "tags" and "modTime"
// fields.
func (h *HandlerV1) UploadMediaV1(w http.ResponseWriter, r *http.Request) {

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.logger.Error("error parsing multipart upload", "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file part required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		h.logger.Error("error reading upload body", "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	var tags []string
	if raw := r.FormValue("tags"); raw != "" {
		tags = strings.Split(raw, ",")
	}

	// Browsers send the file's original mtime separately since multipart
	// does not carry it.
	var modTime time.Time
	if raw := r.FormValue("modTime"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			modTime = t
		}
	}

	uploadedBy := r.Header.Get("X-Gallery-User")

	txn, err := h.uploadService.Ingest(r.Context(), domain.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
		ModTime:     modTime,
		UploadedBy:  uploadedBy,
		Tags:        tags,
	})
	if err != nil {
		h.logger.Error("error ingesting upload", "filename", header.Filename, "error", err)
		h.writeIngestError(w, err)
		return
	}

	resp := V1UploadResponse{
		TransactionID: txn.ID,
		Status:        string(txn.Status),
		Record:        txn.Result,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}
