package chi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// LoggerMiddleware logs every request with the family member who made it,
// so the gallery's activity can be traced per uploader.
func LoggerMiddleware(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				if r.URL.Path == "/health" {
					return
				}
				attrs := []any{
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
				}
				if user := r.Header.Get("X-Gallery-User"); user != "" {
					attrs = append(attrs, "user", user)
				}
				l.Info("http_request", attrs...)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
