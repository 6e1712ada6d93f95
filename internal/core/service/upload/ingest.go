package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strconv"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
	"github.com/feniix/family-gallery-sub000/internal/core/service/dateresolve"
	"github.com/feniix/family-gallery-sub000/internal/core/service/docstore"
)

// Ingest turns an uploaded file into a durably-recorded media entry. On
// failure the returned transaction still carries the step trace; completed
// steps with external effects have been compensated.
func (s *Service) Ingest(ctx context.Context, up domain.Upload) (*domain.UploadTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.TransactionTimeout)
	defer cancel()

	t := s.newTransaction()
	txn := t.txn
	txn.Status = domain.TransactionStatusProcessing

	s.logger.Info("ingestion started",
		"transaction", txn.ID, "filename", up.Filename, "size", len(up.Data), "uploadedBy", up.UploadedBy)

	record, err := t.run(ctx, up)

	end := s.now()
	txn.EndTime = &end

	if err != nil {
		if ctx.Err() != nil && !isAbort(err) {
			err = fmt.Errorf("%w: %v", domain.ErrTransactionTimeout, err)
		}
		txn.Status = domain.TransactionStatusFailed
		txn.Error = err.Error()

		if isAbort(err) {
			// No external side effect exists yet; nothing to undo.
			s.logger.Info("ingestion rejected", "transaction", txn.ID, "error", err)
			return txn, err
		}

		s.logger.Error("ingestion failed, rolling back", "transaction", txn.ID, "error", err)
		t.rollback(ctx)
		return txn, err
	}

	txn.Status = domain.TransactionStatusCompleted
	txn.Result = record
	s.logger.Info("ingestion completed", "transaction", txn.ID, "record", record.ID, "year", record.TakenAt.Year())

	if s.publisher != nil {
		if err := s.publisher.MediaIngested(ctx, record); err != nil {
			s.logger.Error("ingest event publish failed", "transaction", txn.ID, "record", record.ID, "error", err)
		}
	}
	return txn, nil
}

// run executes the step pipeline in strict order
func (t *transaction) run(ctx context.Context, up domain.Upload) (*domain.MediaRecord, error) {
	s := t.svc

	sum := sha256.Sum256(up.Data)
	hash := hex.EncodeToString(sum[:])

	// Metadata is probed once up front: the duplicate check needs a
	// candidate date, and the extraction step later decides whether a
	// probe failure means the file is not media at all.
	meta, metaErr := s.extractor.Extract(ctx, up.Data, up.Filename, up.ContentType)
	if metaErr != nil || meta == nil {
		// An extractor may report "nothing embedded" as a nil result
		// rather than an error.
		meta = &domain.EmbeddedMetadata{}
	}
	takenAt, dateInfo := s.dates.Resolve(up.Filename, up.ModTime, meta)

	// 1. duplicate-check
	err := t.runStep(ctx, domain.StepDuplicateCheck, func(step *domain.TransactionStep) error {
		step.Data["hash"] = hash
		existing, err := s.duplicates.CheckDuplicate(ctx, hash, takenAt)
		if err != nil {
			return err
		}
		if existing != nil {
			step.Data["existingId"] = existing.ID
			return fmt.Errorf("%w: content already stored as %s", domain.ErrDuplicateFile, existing.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 2. metadata-extraction. Record identity is fixed here so retries of
	// later steps and compensations reference the same artifacts.
	var record *domain.MediaRecord
	err = t.runStep(ctx, domain.StepMetadataExtraction, func(step *domain.TransactionStep) error {
		if metaErr != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidMedia, metaErr)
		}
		mediaType, ok := mediaTypeFor(up.ContentType)
		if !ok {
			return fmt.Errorf("%w: unsupported content type %s", domain.ErrInvalidMedia, up.ContentType)
		}

		id := s.newRecordID()
		filename := id + path.Ext(up.Filename)
		year := takenAt.Year()

		record = &domain.MediaRecord{
			ID:               id,
			Filename:         filename,
			OriginalFilename: up.Filename,
			StoragePath:      storagePathFor(year, filename),
			Type:             mediaType,
			UploadedBy:       up.UploadedBy,
			UploadedAt:       s.now().UTC(),
			TakenAt:          takenAt,
			DateInfo:         dateInfo,
			ContentMetadata: domain.ContentMetadata{
				Size:     int64(len(up.Data)),
				Hash:     hash,
				Width:    meta.Width,
				Height:   meta.Height,
				Duration: meta.Duration,
				Camera:   meta.Camera,
			},
			Tags:         normalizeTags(up.Tags),
			IsScreenshot: dateresolve.IsScreenshot(up.Filename),
			IsEdited:     dateresolve.IsEdited(up.Filename, meta.Software),
			HasValidExif: meta.CaptureTime != nil,
		}
		if meta.Latitude != nil && meta.Longitude != nil {
			record.ContentMetadata.Location = &domain.Location{Latitude: *meta.Latitude, Longitude: *meta.Longitude}
		}

		step.Data["recordId"] = id
		step.Data["year"] = strconv.Itoa(year)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 3. thumbnail-generation: failure degrades to "no thumbnail" instead
	// of aborting.
	var thumb []byte
	if thumbErr := t.runStep(ctx, domain.StepThumbnailGeneration, func(step *domain.TransactionStep) error {
		data, err := s.thumbs.Generate(ctx, up.Data, up.ContentType)
		if err != nil {
			return err
		}
		thumb = data
		return nil
	}); thumbErr != nil {
		if ctx.Err() != nil {
			return nil, thumbErr
		}
		s.logger.Warn("thumbnail generation failed, continuing without preview",
			"transaction", t.txn.ID, "error", thumbErr)
		thumb = nil
	}

	thumbPath := thumbnailPathFor(record.TakenAt.Year(), record.Filename)

	// 4. presigned-url for the original and, when a thumbnail exists, for
	// the preview.
	var origCred, thumbCred *port.UploadCredential
	err = t.runStep(ctx, domain.StepPresignedURL, func(step *domain.TransactionStep) error {
		cred, err := s.blobs.IssueUploadCredential(ctx, record.StoragePath, up.ContentType, record.ContentMetadata.Size)
		if err != nil {
			return err
		}
		origCred = cred
		step.Data["target"] = "original"
		step.Compensation = &domain.Compensation{Kind: domain.CompensationNone, Path: record.StoragePath}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if thumb != nil {
		if presignErr := t.runStep(ctx, domain.StepPresignedURL, func(step *domain.TransactionStep) error {
			cred, err := s.blobs.IssueUploadCredential(ctx, thumbPath, "image/jpeg", int64(len(thumb)))
			if err != nil {
				return err
			}
			thumbCred = cred
			step.Data["target"] = "thumbnail"
			step.Compensation = &domain.Compensation{Kind: domain.CompensationNone, Path: thumbPath}
			return nil
		}); presignErr != nil {
			if ctx.Err() != nil {
				return nil, presignErr
			}
			s.logger.Warn("thumbnail presign failed, continuing without preview",
				"transaction", t.txn.ID, "error", presignErr)
			thumb, thumbCred = nil, nil
		}
	} else {
		t.skipStep(domain.StepPresignedURL, "no thumbnail")
	}

	// 5. file-upload and, conditionally, thumbnail-upload.
	err = t.runStep(ctx, domain.StepFileUpload, func(step *domain.TransactionStep) error {
		if err := s.blobs.Put(ctx, origCred, up.Data); err != nil {
			return err
		}
		step.Compensation = &domain.Compensation{Kind: domain.CompensationDeleteObject, Path: record.StoragePath}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if thumbCred != nil {
		if upErr := t.runStep(ctx, domain.StepThumbnailUpload, func(step *domain.TransactionStep) error {
			if err := s.blobs.Put(ctx, thumbCred, thumb); err != nil {
				return err
			}
			step.Compensation = &domain.Compensation{Kind: domain.CompensationDeleteObject, Path: thumbPath}
			return nil
		}); upErr != nil {
			if ctx.Err() != nil {
				return nil, upErr
			}
			s.logger.Warn("thumbnail upload failed, record keeps no preview",
				"transaction", t.txn.ID, "error", upErr)
		} else {
			record.ThumbnailPath = thumbPath
		}
	} else {
		t.skipStep(domain.StepThumbnailUpload, "no thumbnail")
	}

	// 6. database-update: append to the year partition through the update
	// gate, then track the year in the index.
	err = t.runStep(ctx, domain.StepDatabaseUpdate, func(step *domain.TransactionStep) error {
		year := record.TakenAt.Year()

		_, err := docstore.Mutate(ctx, s.store, domain.PartitionKey(year), domain.YearPartition{}, func(p *domain.YearPartition) error {
			// Idempotent append: a retry after a partial failure must not
			// duplicate the record.
			for _, existing := range p.Media {
				if existing.ID == record.ID {
					return nil
				}
			}
			p.Media = append(p.Media, *record)
			return nil
		})
		if err != nil {
			return err
		}
		step.Compensation = &domain.Compensation{Kind: domain.CompensationRemoveRecord, RecordID: record.ID, Year: year}

		return s.index.TrackUpload(ctx, year)
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}
