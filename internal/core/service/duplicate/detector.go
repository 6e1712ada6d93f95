package duplicate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
	"github.com/feniix/family-gallery-sub000/internal/core/service/docstore"
)

// Detector looks up content hashes across year partitions. The candidate
// year is scanned first; its neighbours catch timezone- or clock-skew-
// induced misclassification. Read failures fail open so a degraded store
// never blocks uploads.
type Detector struct {
	store    port.DocumentStore
	fromYear int
	logger   *slog.Logger
}

// NewDetector creates a duplicate detector. fromYear bounds the historical
// range of scanned partitions.
func NewDetector(store port.DocumentStore, fromYear int, logger *slog.Logger) *Detector {
	return &Detector{store: store, fromYear: fromYear, logger: logger}
}

var _ port.DuplicateChecker = (*Detector)(nil)

// CheckDuplicate returns the first record matching hash, or nil when none
// exists
func (d *Detector) CheckDuplicate(ctx context.Context, hash string, candidate time.Time) (*domain.MediaRecord, error) {
	year := candidate.Year()
	maxYear := time.Now().Year() + 1

	if rec := d.scanYear(ctx, year, hash); rec != nil {
		return rec, nil
	}

	var adjacent []int
	for _, y := range []int{year - 1, year + 1} {
		if y >= d.fromYear && y <= maxYear {
			adjacent = append(adjacent, y)
		}
	}

	var mu sync.Mutex
	var match *domain.MediaRecord

	g, gctx := errgroup.WithContext(ctx)
	for _, y := range adjacent {
		g.Go(func() error {
			if rec := d.scanYear(gctx, y, hash); rec != nil {
				mu.Lock()
				if match == nil {
					match = rec
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return match, ctx.Err()
}

// scanYear returns the first record of the year's partition whose content
// hash matches. Any read error is treated as "no data for that year".
func (d *Detector) scanYear(ctx context.Context, year int, hash string) *domain.MediaRecord {
	partition, found, err := docstore.Get[domain.YearPartition](ctx, d.store, domain.PartitionKey(year))
	if err != nil {
		d.logger.Warn("duplicate scan skipping year", "year", year, "error", err)
		return nil
	}
	if !found {
		return nil
	}

	for i := range partition.Media {
		if partition.Media[i].ContentMetadata.Hash == hash {
			return &partition.Media[i]
		}
	}
	return nil
}
