package index

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
	"github.com/feniix/family-gallery-sub000/internal/core/service/docstore"
)

const rebuildConcurrency = 8

// Service maintains the singleton media index document. All incremental
// changes go through the store's Update gate; only Rebuild replaces the
// document wholesale, as its single owner.
type Service struct {
	store  port.DocumentStore
	logger *slog.Logger
}

// NewService creates a media index service
func NewService(store port.DocumentStore, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

var _ port.MediaIndexer = (*Service)(nil)

func emptyIndex() domain.MediaIndex {
	return domain.MediaIndex{Years: []int{}}
}

// insertYear keeps Years sorted descending; idempotent
func insertYear(idx *domain.MediaIndex, year int) {
	for _, y := range idx.Years {
		if y == year {
			return
		}
	}
	idx.Years = append(idx.Years, year)
	sort.Sort(sort.Reverse(sort.IntSlice(idx.Years)))
}

// AddYear idempotently inserts year into the index
func (s *Service) AddYear(ctx context.Context, year int) error {
	_, err := docstore.Mutate(ctx, s.store, domain.IndexKey, emptyIndex(), func(idx *domain.MediaIndex) error {
		insertYear(idx, year)
		idx.LastUpdated = time.Now().UTC()
		return nil
	})
	return err
}

// RemoveYear idempotently removes year from the index
func (s *Service) RemoveYear(ctx context.Context, year int) error {
	_, err := docstore.Mutate(ctx, s.store, domain.IndexKey, emptyIndex(), func(idx *domain.MediaIndex) error {
		kept := idx.Years[:0]
		for _, y := range idx.Years {
			if y != year {
				kept = append(kept, y)
			}
		}
		idx.Years = kept
		idx.LastUpdated = time.Now().UTC()
		return nil
	})
	return err
}

// TrackUpload records one committed upload: the year joins the index and
// the running total grows by one, in a single update. The authoritative
// count is restored by periodic Recount.
func (s *Service) TrackUpload(ctx context.Context, year int) error {
	_, err := docstore.Mutate(ctx, s.store, domain.IndexKey, emptyIndex(), func(idx *domain.MediaIndex) error {
		insertYear(idx, year)
		idx.TotalMedia++
		idx.LastUpdated = time.Now().UTC()
		return nil
	})
	return err
}

// Recount reads every listed partition, sums record counts and writes the
// new total. O(number of years) reads.
func (s *Service) Recount(ctx context.Context) (int, error) {
	idx, found, err := docstore.Get[domain.MediaIndex](ctx, s.store, domain.IndexKey)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}

	total := 0
	for _, year := range idx.Years {
		partition, ok, err := docstore.Get[domain.YearPartition](ctx, s.store, domain.PartitionKey(year))
		if err != nil {
			return 0, err
		}
		if ok {
			total += len(partition.Media)
		}
	}

	_, err = docstore.Mutate(ctx, s.store, domain.IndexKey, emptyIndex(), func(idx *domain.MediaIndex) error {
		idx.TotalMedia = total
		idx.LastUpdated = time.Now().UTC()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Rebuild scans every year in the inclusive range in parallel, keeps the
// years with a non-empty partition and replaces the index wholesale. A
// failed scan of one year counts as "no data for that year".
func (s *Service) Rebuild(ctx context.Context, fromYear, toYear int) (*domain.MediaIndex, error) {
	var mu sync.Mutex
	counts := make(map[int]int)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rebuildConcurrency)

	for year := fromYear; year <= toYear; year++ {
		g.Go(func() error {
			partition, found, err := docstore.Get[domain.YearPartition](gctx, s.store, domain.PartitionKey(year))
			if err != nil {
				s.logger.Warn("rebuild: treating year as empty", "year", year, "error", err)
				return nil
			}
			if !found || len(partition.Media) == 0 {
				return nil
			}
			mu.Lock()
			counts[year] = len(partition.Media)
			mu.Unlock()
			return nil
		})
	}
	// Per-year failures are swallowed above; Wait cannot error.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := emptyIndex()
	for year, n := range counts {
		idx.Years = append(idx.Years, year)
		idx.TotalMedia += n
	}
	sort.Sort(sort.Reverse(sort.IntSlice(idx.Years)))
	idx.LastUpdated = time.Now().UTC()

	if err := docstore.Put(ctx, s.store, domain.IndexKey, idx); err != nil {
		return nil, err
	}
	return &idx, nil
}
