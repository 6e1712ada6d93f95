package port

import (
	"context"
	"time"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
)

// MetadataExtractor reads embedded metadata out of an uploaded file.
// Missing tags mean a sparse result, not an error; an error means the
// bytes are not decodable media.
type MetadataExtractor interface {
	Extract(ctx context.Context, data []byte, filename string, contentType string) (*domain.EmbeddedMetadata, error)
}

// ThumbnailGenerator produces an encoded preview image. It is bounded by
// its own timeout and never blocks indefinitely.
type ThumbnailGenerator interface {
	Generate(ctx context.Context, data []byte, contentType string) ([]byte, error)
}

// DateResolver produces a best-effort capture timestamp with a confidence
// label, via an ordered fallback chain.
type DateResolver interface {
	Resolve(filename string, modTime time.Time, meta *domain.EmbeddedMetadata) (time.Time, domain.DateInfo)
}

// DuplicateChecker looks up a content hash across the candidate year and
// its neighbours. A nil record means no duplicate.
type DuplicateChecker interface {
	CheckDuplicate(ctx context.Context, hash string, candidate time.Time) (*domain.MediaRecord, error)
}

// MediaIndexer maintains the singleton media index document
type MediaIndexer interface {
	AddYear(ctx context.Context, year int) error
	RemoveYear(ctx context.Context, year int) error
	// TrackUpload records one committed upload: ensures the year is
	// indexed and bumps the running total in the same update.
	TrackUpload(ctx context.Context, year int) error
	// Recount re-sums every listed partition; intended for periodic
	// reconciliation, not per-write use.
	Recount(ctx context.Context) (int, error)
	// Rebuild scans the inclusive year range in parallel and replaces
	// the index wholesale.
	Rebuild(ctx context.Context, fromYear, toYear int) (*domain.MediaIndex, error)
}

// UploadService turns an uploaded file into a durably-recorded media entry.
// The returned transaction carries the step trace even on failure.
type UploadService interface {
	Ingest(ctx context.Context, up domain.Upload) (*domain.UploadTransaction, error)
	Transaction(id string) (*domain.UploadTransaction, bool)
}

// GalleryService is the read side consumed by the browsing UI
type GalleryService interface {
	Index(ctx context.Context) (*domain.MediaIndex, error)
	MediaForYear(ctx context.Context, year int) ([]domain.MediaRecord, error)
}

// SettingsService manages the config.json document
type SettingsService interface {
	Get(ctx context.Context) (domain.GallerySettings, error)
	Update(ctx context.Context, settings domain.GallerySettings) (domain.GallerySettings, error)
}

// UserService is the read side of users.json
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
}

// EventPublisher announces committed ingestions to interested consumers
type EventPublisher interface {
	MediaIngested(ctx context.Context, record *domain.MediaRecord) error
	Close() error
}
