package upload

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/feniix/family-gallery-sub000/internal/adapters/extractor"
	"github.com/feniix/family-gallery-sub000/internal/adapters/storage"
	"github.com/feniix/family-gallery-sub000/internal/adapters/storage/memory"
	"github.com/feniix/family-gallery-sub000/internal/adapters/thumbnail"
	"github.com/feniix/family-gallery-sub000/internal/config"
	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
	"github.com/feniix/family-gallery-sub000/internal/core/service/dateresolve"
	"github.com/feniix/family-gallery-sub000/internal/core/service/docstore"
	"github.com/feniix/family-gallery-sub000/internal/core/service/duplicate"
	"github.com/feniix/family-gallery-sub000/internal/core/service/index"
	"github.com/feniix/family-gallery-sub000/internal/core/service/lock"
)

var frozenNow = time.Date(2023, 6, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *Service
	objects *memory.Store
	store   *docstore.Store
	blobs   *storage.MockBlobStorage
	extract *extractor.MockExtractor
	thumbs  *thumbnail.MockThumbnailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	objects := memory.NewStore()
	locks := lock.NewManager(config.LockConfig{TTL: time.Second, PollBase: time.Millisecond}, logger)
	store := docstore.NewStore(objects, locks, config.StoreConfig{
		RetryAttempts:  3,
		RetryBaseDelay: time.Millisecond,
		LockTimeout:    time.Second,
	}, logger)

	blobs := storage.NewMockBlobStorage()
	extract := extractor.NewMockExtractor()
	thumbs := thumbnail.NewMockThumbnailer()

	svc := NewService(
		store,
		blobs,
		extract,
		thumbs,
		duplicate.NewDetector(store, 2000, logger),
		dateresolve.NewResolverWithClock(func() time.Time { return frozenNow }),
		index.NewService(store, logger),
		nil,
		config.IngestConfig{
			RetryAttempts:        3,
			RetryBaseDelay:       time.Millisecond,
			RetryMaxDelay:        5 * time.Millisecond,
			TransactionTimeout:   5 * time.Second,
			TransactionRetention: time.Minute,
			DuplicateScanFrom:    2000,
		},
		logger,
	)
	svc.now = func() time.Time { return frozenNow }

	return &fixture{svc: svc, objects: objects, store: store, blobs: blobs, extract: extract, thumbs: thumbs}
}

func (f *fixture) expectHappyBlobs() {
	cred := &port.UploadCredential{URL: "http://minio.local/put", ExpiresAt: frozenNow.Add(15 * time.Minute)}
	f.blobs.On("IssueUploadCredential", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(cred, nil)
	f.blobs.On("Put", mock.Anything, cred, mock.Anything).Return(nil)
}

func testUpload() domain.Upload {
	return domain.Upload{
		Filename:    "IMG_20230101_120000.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("jpeg bytes"),
		ModTime:     frozenNow.Add(-time.Hour),
		UploadedBy:  "alice",
		Tags:        []string{"Holiday", "holiday", " beach "},
	}
}

func (f *fixture) partition(t *testing.T, year int) domain.YearPartition {
	t.Helper()

	raw, found, err := f.store.Read(context.Background(), domain.PartitionKey(year))
	require.NoError(t, err)
	require.True(t, found, "partition for %d should exist", year)
	var p domain.YearPartition
	require.NoError(t, json.Unmarshal(raw, &p))
	return p
}

func stepByKind(txn *domain.UploadTransaction, kind domain.StepKind) *domain.TransactionStep {
	for _, step := range txn.Steps {
		if step.Kind == kind {
			return step
		}
	}
	return nil
}

func TestIngest_Success(t *testing.T) {
	f := newFixture(t)
	f.expectHappyBlobs()
	f.extract.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.EmbeddedMetadata{Width: 4000, Height: 3000, Camera: "Pixel 7"}, nil)
	f.thumbs.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return([]byte("thumb"), nil)

	txn, err := f.svc.Ingest(context.Background(), testUpload())

	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
	require.NotNil(t, txn.Result)
	rec := txn.Result

	// The filename convention drives the date, so the record lands in 2023.
	assert.Equal(t, 2023, rec.TakenAt.Year())
	assert.Equal(t, domain.DateSourceFilename, rec.DateInfo.Source)
	assert.Equal(t, domain.DateConfidenceMedium, rec.DateInfo.Confidence)
	assert.Equal(t, domain.MediaTypePhoto, rec.Type)
	assert.Equal(t, "IMG_20230101_120000.jpg", rec.OriginalFilename)
	assert.Equal(t, "Pixel 7", rec.ContentMetadata.Camera)
	assert.Equal(t, []string{"holiday", "beach"}, rec.Tags)
	assert.NotEmpty(t, rec.ThumbnailPath)
	assert.False(t, rec.HasValidExif)

	p := f.partition(t, 2023)
	require.Len(t, p.Media, 1)
	assert.Equal(t, rec.ID, p.Media[0].ID)

	idx, found, err := docstore.Get[domain.MediaIndex](context.Background(), f.store, domain.IndexKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []int{2023}, idx.Years)
	assert.Equal(t, 1, idx.TotalMedia)

	for _, kind := range []domain.StepKind{
		domain.StepDuplicateCheck,
		domain.StepMetadataExtraction,
		domain.StepThumbnailGeneration,
		domain.StepFileUpload,
		domain.StepThumbnailUpload,
		domain.StepDatabaseUpdate,
	} {
		step := stepByKind(txn, kind)
		require.NotNil(t, step, "missing step %s", kind)
		assert.Equal(t, domain.StepStatusCompleted, step.Status, "step %s", kind)
	}
}

func TestIngest_NilMetadataTreatedAsSparse(t *testing.T) {
	f := newFixture(t)
	f.expectHappyBlobs()
	// No error, no metadata: the file is fine but carries nothing embedded.
	f.extract.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil)
	f.thumbs.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return([]byte("thumb"), nil)

	txn, err := f.svc.Ingest(context.Background(), testUpload())

	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
	require.NotNil(t, txn.Result)
	assert.Equal(t, domain.DateSourceFilename, txn.Result.DateInfo.Source)
	assert.False(t, txn.Result.HasValidExif)
	assert.Zero(t, txn.Result.ContentMetadata.Width)
	assert.Nil(t, txn.Result.ContentMetadata.Location)
}

func TestIngest_DuplicateRejected(t *testing.T) {
	f := newFixture(t)
	f.expectHappyBlobs()
	f.extract.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.EmbeddedMetadata{Width: 100, Height: 100}, nil)
	f.thumbs.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return([]byte("thumb"), nil)

	first, err := f.svc.Ingest(context.Background(), testUpload())
	require.NoError(t, err)

	keysBefore := len(f.objects.Keys())

	txn, err := f.svc.Ingest(context.Background(), testUpload())

	assert.ErrorIs(t, err, domain.ErrDuplicateFile)
	assert.Equal(t, domain.TransactionStatusFailed, txn.Status)
	assert.Nil(t, txn.Result)

	// Rejection happens before any write; nothing new was stored.
	assert.Len(t, f.objects.Keys(), keysBefore)
	p := f.partition(t, 2023)
	assert.Len(t, p.Media, 1)

	step := stepByKind(txn, domain.StepDuplicateCheck)
	require.NotNil(t, step)
	assert.Equal(t, domain.StepStatusFailed, step.Status)
	assert.Equal(t, first.Result.ID, step.Data["existingId"])
}

func TestIngest_InvalidMediaRejected(t *testing.T) {
	f := newFixture(t)
	f.extract.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("decode image: invalid header"))

	txn, err := f.svc.Ingest(context.Background(), testUpload())

	assert.ErrorIs(t, err, domain.ErrInvalidMedia)
	assert.Equal(t, domain.TransactionStatusFailed, txn.Status)
	assert.Empty(t, f.objects.Keys())
	f.blobs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngest_ThumbnailFailureDegrades(t *testing.T) {
	f := newFixture(t)
	f.expectHappyBlobs()
	f.extract.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.EmbeddedMetadata{Width: 100, Height: 100}, nil)
	f.thumbs.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("decode stalled"))

	txn, err := f.svc.Ingest(context.Background(), testUpload())

	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
	assert.Empty(t, txn.Result.ThumbnailPath)

	thumbGen := stepByKind(txn, domain.StepThumbnailGeneration)
	require.NotNil(t, thumbGen)
	assert.Equal(t, domain.StepStatusFailed, thumbGen.Status)

	thumbUp := stepByKind(txn, domain.StepThumbnailUpload)
	require.NotNil(t, thumbUp)
	assert.Equal(t, domain.StepStatusSkipped, thumbUp.Status)

	// The original still made it through.
	p := f.partition(t, 2023)
	assert.Len(t, p.Media, 1)
}

func TestIngest_RollbackRemovesUploadedBlobs(t *testing.T) {
	f := newFixture(t)
	f.extract.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.EmbeddedMetadata{Width: 100, Height: 100}, nil)
	f.thumbs.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return([]byte("thumb"), nil)

	cred := &port.UploadCredential{URL: "http://minio.local/put"}
	f.blobs.On("IssueUploadCredential", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(cred, nil)
	// The original uploads fine, the thumbnail upload degrades, then the
	// partition write keeps failing so the saga must unwind.
	f.blobs.On("Put", mock.Anything, cred, mock.Anything).Return(nil)
	f.blobs.On("Delete", mock.Anything, mock.Anything).Return(nil)

	f.objects.FailPut(domain.PartitionKey(2023), domain.ErrStoreUnavailable)

	txn, err := f.svc.Ingest(context.Background(), testUpload())

	require.Error(t, err)
	var stepErr *domain.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, domain.StepDatabaseUpdate, stepErr.Kind)
	assert.Equal(t, domain.TransactionStatusRolledBack, txn.Status)
	assert.Nil(t, txn.Result)

	// Both uploaded blobs were compensated.
	f.blobs.AssertNumberOfCalls(t, "Delete", 2)

	// No partition document survived.
	_, found, readErr := f.objects.GetObject(context.Background(), domain.PartitionKey(2023))
	require.NoError(t, readErr)
	assert.False(t, found)
}

func TestIngest_IndexFailureAfterAppendRollsBackRecord(t *testing.T) {
	f := newFixture(t)
	f.extract.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.EmbeddedMetadata{Width: 100, Height: 100}, nil)
	f.thumbs.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return([]byte("thumb"), nil)

	cred := &port.UploadCredential{URL: "http://minio.local/put"}
	f.blobs.On("IssueUploadCredential", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(cred, nil)
	f.blobs.On("Put", mock.Anything, cred, mock.Anything).Return(nil)
	f.blobs.On("Delete", mock.Anything, mock.Anything).Return(nil)

	// The partition append succeeds but the index write keeps failing, so
	// the step ends up failed with the record already persisted.
	f.objects.FailPut(domain.IndexKey, domain.ErrStoreUnavailable)

	txn, err := f.svc.Ingest(context.Background(), testUpload())

	require.Error(t, err)
	var stepErr *domain.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, domain.StepDatabaseUpdate, stepErr.Kind)
	assert.Equal(t, domain.TransactionStatusRolledBack, txn.Status)

	f.blobs.AssertNumberOfCalls(t, "Delete", 2)

	// The appended record was compensated away, not left dangling.
	p := f.partition(t, 2023)
	assert.Empty(t, p.Media)
}

func TestIngest_TransientStoreFaultIsRetried(t *testing.T) {
	f := newFixture(t)
	f.expectHappyBlobs()
	f.extract.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.EmbeddedMetadata{Width: 100, Height: 100}, nil)
	f.thumbs.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return([]byte("thumb"), nil)

	f.objects.FailPutOnce(domain.PartitionKey(2023), domain.ErrStoreUnavailable)

	txn, err := f.svc.Ingest(context.Background(), testUpload())

	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
	p := f.partition(t, 2023)
	assert.Len(t, p.Media, 1)
}

func TestIngest_TimeoutMapsToTransactionTimeout(t *testing.T) {
	f := newFixture(t)
	f.svc.cfg.TransactionTimeout = 30 * time.Millisecond
	f.extract.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.EmbeddedMetadata{Width: 100, Height: 100}, nil)
	f.thumbs.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return([]byte("thumb"), nil)
	f.blobs.On("Delete", mock.Anything, mock.Anything).Return(nil)
	f.blobs.On("IssueUploadCredential", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			<-ctx.Done()
		}).
		Return(nil, context.DeadlineExceeded)

	txn, err := f.svc.Ingest(context.Background(), testUpload())

	assert.ErrorIs(t, err, domain.ErrTransactionTimeout)
	assert.Equal(t, domain.TransactionStatusRolledBack, txn.Status)
}

func TestIngest_TransactionIsRetrievable(t *testing.T) {
	f := newFixture(t)
	f.expectHappyBlobs()
	f.extract.On("Extract", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.EmbeddedMetadata{Width: 100, Height: 100}, nil)
	f.thumbs.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return([]byte("thumb"), nil)

	txn, err := f.svc.Ingest(context.Background(), testUpload())
	require.NoError(t, err)

	got, ok := f.svc.Transaction(txn.ID)
	require.True(t, ok)
	assert.Equal(t, txn.ID, got.ID)

	_, ok = f.svc.Transaction("no-such-id")
	assert.False(t, ok)
}
