package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
	"github.com/feniix/family-gallery-sub000/internal/core/service/docstore"
)

// Defaults applied when config.json is absent or a field is unset.
const (
	defaultTitle          = "Family Gallery"
	defaultPageSize       = 50
	defaultMaxUploadBytes = 100 << 20
)

// Service manages the gallery-wide settings document
type Service struct {
	store  port.DocumentStore
	logger *slog.Logger
}

func NewService(store port.DocumentStore, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

var _ port.SettingsService = (*Service)(nil)

func defaults() domain.GallerySettings {
	return domain.GallerySettings{
		Title:          defaultTitle,
		PageSize:       defaultPageSize,
		MaxUploadBytes: defaultMaxUploadBytes,
	}
}

// Get returns the stored settings, falling back to defaults when the
// document does not exist yet
func (s *Service) Get(ctx context.Context) (domain.GallerySettings, error) {
	stored, found, err := docstore.Get[domain.GallerySettings](ctx, s.store, domain.SettingsKey)
	if err != nil {
		return domain.GallerySettings{}, err
	}
	if !found {
		return defaults(), nil
	}
	return stored, nil
}

// Update validates and persists settings through the update gate, so
// concurrent updates cannot clobber each other
func (s *Service) Update(ctx context.Context, settings domain.GallerySettings) (domain.GallerySettings, error) {
	if settings.PageSize <= 0 {
		return domain.GallerySettings{}, fmt.Errorf("page size must be positive, got %d", settings.PageSize)
	}
	if settings.MaxUploadBytes <= 0 {
		return domain.GallerySettings{}, fmt.Errorf("max upload bytes must be positive, got %d", settings.MaxUploadBytes)
	}
	if settings.Title == "" {
		settings.Title = defaultTitle
	}

	updated, err := docstore.Mutate(ctx, s.store, domain.SettingsKey, defaults(), func(current *domain.GallerySettings) error {
		*current = settings
		return nil
	})
	if err != nil {
		return domain.GallerySettings{}, err
	}

	s.logger.Info("settings updated", "title", updated.Title, "pageSize", updated.PageSize)
	return updated, nil
}
