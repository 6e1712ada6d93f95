package gallery

import (
	"context"
	"log/slog"
	"sort"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
	"github.com/feniix/family-gallery-sub000/internal/core/service/docstore"
)

// Service is the read side of the gallery: the index summary and the
// records for one year, newest first.
type Service struct {
	store  port.DocumentStore
	logger *slog.Logger
}

func NewService(store port.DocumentStore, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

var _ port.GalleryService = (*Service)(nil)

// Index returns the media index; an empty gallery yields an empty index,
// not an error.
func (s *Service) Index(ctx context.Context) (*domain.MediaIndex, error) {
	idx, _, err := docstore.Get[domain.MediaIndex](ctx, s.store, domain.IndexKey)
	if err != nil {
		return nil, err
	}
	return &idx, nil
}

// MediaForYear returns the records of one year partition sorted by
// capture date descending. A missing partition is an empty year.
func (s *Service) MediaForYear(ctx context.Context, year int) ([]domain.MediaRecord, error) {
	p, found, err := docstore.Get[domain.YearPartition](ctx, s.store, domain.PartitionKey(year))
	if err != nil {
		return nil, err
	}
	if !found {
		return []domain.MediaRecord{}, nil
	}

	media := p.Media
	sort.SliceStable(media, func(i, j int) bool {
		return media[i].TakenAt.After(media[j].TakenAt)
	})
	return media, nil
}
