package media

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
)

// HandlerV1 is the handler for v1 media routes
type HandlerV1 struct {
	uploadService  port.UploadService
	galleryService port.GalleryService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewMediaHandlerV1 creates HandlerV1
func NewMediaHandlerV1(uploads port.UploadService, gallery port.GalleryService, maxUploadBytes int64, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		uploadService:  uploads,
		galleryService: gallery,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Routes exposes routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", h.UploadMediaV1)
	router.Get("/", h.GetIndexV1)
	router.Get("/{year}", h.GetYearV1)
	router.Get("/transactions/{id}", h.GetTransactionV1)

	return router
}

// writeIngestError maps ingestion failures to status codes
func (h *HandlerV1) writeIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicateFile):
		http.Error(w, "file already uploaded", http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidMedia):
		http.Error(w, "file is not a valid photo or video", http.StatusBadRequest)
	case errors.Is(err, domain.ErrLockTimeout):
		http.Error(w, "storage busy, retry later", http.StatusServiceUnavailable)
	case errors.Is(err, domain.ErrTransactionTimeout):
		http.Error(w, "upload processing timed out", http.StatusGatewayTimeout)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
