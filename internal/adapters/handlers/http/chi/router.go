package chi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/feniix/family-gallery-sub000/internal/adapters/handlers/http/chi/v1/media"
	"github.com/feniix/family-gallery-sub000/internal/adapters/handlers/http/chi/v1/settings"
	"github.com/feniix/family-gallery-sub000/internal/adapters/handlers/http/chi/v1/user"
)

// NewRouter builds http.Handler with chi
func NewRouter(
	logger *slog.Logger,
	mediaHandler *media.HandlerV1,
	settingsHandler *settings.HandlerV1,
	userHandler *user.HandlerV1,
	env string,
	maxUploadBytes int64,
) http.Handler {
	r := chi.NewRouter()

	//handle requestID to facilitate debug (X-Request-ID)
	//It fetches from request if exists, or creates it
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)

	// Media payloads flow through this API, so the request cap follows
	// the configured upload limit plus multipart framing headroom.
	r.Use(middleware.RequestSize(maxUploadBytes + 1<<20))
	r.Use(middleware.Timeout(10 * time.Minute))

	if env != "prod" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/media", mediaHandler.Routes())
		r.Mount("/settings", settingsHandler.Routes())
		r.Mount("/users", userHandler.Routes())
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	})

	return r
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
