package upload

import (
	"log/slog"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/feniix/family-gallery-sub000/internal/config"
	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
)

// Service orchestrates the ingestion saga: an ordered, retryable,
// compensatable step pipeline per uploaded file.
type Service struct {
	store      port.DocumentStore
	blobs      port.BlobStorage
	extractor  port.MetadataExtractor
	thumbs     port.ThumbnailGenerator
	duplicates port.DuplicateChecker
	dates      port.DateResolver
	index      port.MediaIndexer
	publisher  port.EventPublisher
	registry   *Registry
	cfg        config.IngestConfig
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates the upload transaction manager. publisher may be nil
// when event publishing is disabled.
func NewService(
	store port.DocumentStore,
	blobs port.BlobStorage,
	extractor port.MetadataExtractor,
	thumbs port.ThumbnailGenerator,
	duplicates port.DuplicateChecker,
	dates port.DateResolver,
	index port.MediaIndexer,
	publisher port.EventPublisher,
	cfg config.IngestConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:      store,
		blobs:      blobs,
		extractor:  extractor,
		thumbs:     thumbs,
		duplicates: duplicates,
		dates:      dates,
		index:      index,
		publisher:  publisher,
		registry:   NewRegistry(cfg.TransactionRetention),
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

var _ port.UploadService = (*Service)(nil)

// Transaction returns the in-memory transaction for id, if it is still
// retained
func (s *Service) Transaction(id string) (*domain.UploadTransaction, bool) {
	return s.registry.Get(id)
}

// newRecordID builds a collision-free record identifier. The timestamp
// prefix keeps storage keys roughly chronological; the uuid suffix makes
// concurrent uploads safe without a post-write existence check.
func (s *Service) newRecordID() string {
	return s.now().UTC().Format("20060102T150405") + "_" + strings.Split(uuid.NewString(), "-")[0]
}

func mediaTypeFor(contentType string) (domain.MediaType, bool) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return domain.MediaTypePhoto, true
	case strings.HasPrefix(contentType, "video/"):
		return domain.MediaTypeVideo, true
	default:
		return "", false
	}
}

func storagePathFor(year int, filename string) string {
	return path.Join("media", "originals", strconv.Itoa(year), filename)
}

func thumbnailPathFor(year int, filename string) string {
	base := strings.TrimSuffix(filename, path.Ext(filename))
	return path.Join("media", "thumbs", strconv.Itoa(year), base+".jpg")
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
