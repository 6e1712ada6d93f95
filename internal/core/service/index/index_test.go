package index_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feniix/family-gallery-sub000/internal/adapters/storage/memory"
	"github.com/feniix/family-gallery-sub000/internal/config"
	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/service/docstore"
	"github.com/feniix/family-gallery-sub000/internal/core/service/index"
	"github.com/feniix/family-gallery-sub000/internal/core/service/lock"
)

func newTestIndex(t *testing.T) (*index.Service, *docstore.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	locks := lock.NewManager(config.LockConfig{TTL: time.Minute, PollBase: 2 * time.Millisecond}, logger)
	store := docstore.NewStore(memory.NewStore(), locks, config.StoreConfig{
		RetryAttempts:  3,
		RetryBaseDelay: 2 * time.Millisecond,
		LockTimeout:    5 * time.Second,
	}, logger)
	return index.NewService(store, logger), store
}

func seedPartition(t *testing.T, store *docstore.Store, year, n int) {
	t.Helper()
	partition := domain.YearPartition{Media: []domain.MediaRecord{}}
	for i := 0; i < n; i++ {
		partition.Media = append(partition.Media, domain.MediaRecord{ID: domain.PartitionKey(year) + string(rune('a'+i))})
	}
	require.NoError(t, docstore.Put(context.Background(), store, domain.PartitionKey(year), partition))
}

func TestService_AddYear_IdempotentAndSortedDescending(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, store := newTestIndex(t)

	// Act
	require.NoError(t, svc.AddYear(ctx, 2021))
	require.NoError(t, svc.AddYear(ctx, 2023))
	require.NoError(t, svc.AddYear(ctx, 2022))
	require.NoError(t, svc.AddYear(ctx, 2023))

	// Assert
	idx, found, err := docstore.Get[domain.MediaIndex](ctx, store, domain.IndexKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []int{2023, 2022, 2021}, idx.Years)
	assert.False(t, idx.LastUpdated.IsZero())
}

func TestService_RemoveYear(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, store := newTestIndex(t)
	require.NoError(t, svc.AddYear(ctx, 2022))
	require.NoError(t, svc.AddYear(ctx, 2023))

	// Act
	require.NoError(t, svc.RemoveYear(ctx, 2022))
	require.NoError(t, svc.RemoveYear(ctx, 1990)) // absent year is a no-op

	// Assert
	idx, _, err := docstore.Get[domain.MediaIndex](ctx, store, domain.IndexKey)
	require.NoError(t, err)
	assert.Equal(t, []int{2023}, idx.Years)
}

func TestService_TrackUpload(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, store := newTestIndex(t)

	// Act
	require.NoError(t, svc.TrackUpload(ctx, 2023))
	require.NoError(t, svc.TrackUpload(ctx, 2023))
	require.NoError(t, svc.TrackUpload(ctx, 2021))

	// Assert
	idx, _, err := docstore.Get[domain.MediaIndex](ctx, store, domain.IndexKey)
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2021}, idx.Years)
	assert.Equal(t, 3, idx.TotalMedia)
}

func TestService_Recount(t *testing.T) {
	// Arrange: index lists three years, one of which has no partition.
	ctx := context.Background()
	svc, store := newTestIndex(t)
	seedPartition(t, store, 2022, 2)
	seedPartition(t, store, 2023, 3)
	require.NoError(t, svc.AddYear(ctx, 2021))
	require.NoError(t, svc.AddYear(ctx, 2022))
	require.NoError(t, svc.AddYear(ctx, 2023))

	// Act
	total, err := svc.Recount(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	idx, _, err := docstore.Get[domain.MediaIndex](ctx, store, domain.IndexKey)
	require.NoError(t, err)
	assert.Equal(t, 5, idx.TotalMedia)
}

func TestService_Rebuild(t *testing.T) {
	// Arrange: partitions on disk disagree with a stale index.
	ctx := context.Background()
	svc, store := newTestIndex(t)
	seedPartition(t, store, 2019, 1)
	seedPartition(t, store, 2021, 4)
	seedPartition(t, store, 2020, 0) // empty partition must be dropped
	require.NoError(t, docstore.Put(ctx, store, domain.IndexKey, domain.MediaIndex{
		Years:      []int{2018, 2020},
		TotalMedia: 99,
	}))

	// Act
	idx, err := svc.Rebuild(ctx, 2015, 2025)

	// Assert: years equals exactly the set of non-empty partitions and
	// totalMedia the sum of partition lengths.
	require.NoError(t, err)
	assert.Equal(t, []int{2021, 2019}, idx.Years)
	assert.Equal(t, 5, idx.TotalMedia)

	stored, found, err := docstore.Get[domain.MediaIndex](ctx, store, domain.IndexKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, idx.Years, stored.Years)
	assert.Equal(t, idx.TotalMedia, stored.TotalMedia)
}
