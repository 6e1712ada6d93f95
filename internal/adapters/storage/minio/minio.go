package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/feniix/family-gallery-sub000/internal/config"
	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
)

// Adapter backs both the raw document store and the media blob storage
// with one minio bucket. Documents and media payloads share the bucket
// under disjoint key prefixes.
type Adapter struct {
	client *minio.Client
	config config.MinioConfig
	http   *http.Client
	logger *slog.Logger
}

// NewAdapter connects to minio and ensures the bucket exists
func NewAdapter(ctx context.Context, cfg config.MinioConfig, logger *slog.Logger) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Adapter{
		client: client,
		config: cfg,
		http:   &http.Client{Timeout: 5 * time.Minute},
		logger: logger,
	}, nil
}

var (
	_ port.ObjectStore = (*Adapter)(nil)
	_ port.BlobStorage = (*Adapter)(nil)
)

// storeErr classifies backend faults as retryable. Key-not-found never
// reaches this path.
func storeErr(op, key string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", domain.ErrStoreUnavailable, op, key, err)
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey"
	}
	return false
}

// GetObject reads a whole object; a missing key is found=false, not an
// error
func (a *Adapter) GetObject(ctx context.Context, key string) ([]byte, bool, error) {
	obj, err := a.client.GetObject(ctx, a.config.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, false, storeErr("get", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, false, nil
		}
		return nil, false, storeErr("read", key, err)
	}
	return data, true, nil
}

// PutObject writes a whole object
func (a *Adapter) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, a.config.BucketName, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return storeErr("put", key, err)
	}
	return nil
}

// RemoveObject deletes an object; deleting a missing key is a no-op
func (a *Adapter) RemoveObject(ctx context.Context, key string) error {
	err := a.client.RemoveObject(ctx, a.config.BucketName, key, minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return storeErr("remove", key, err)
	}
	return nil
}

// IssueUploadCredential generates a presigned PUT grant for one media blob
func (a *Adapter) IssueUploadCredential(ctx context.Context, path, contentType string, size int64) (*port.UploadCredential, error) {
	reqHeaders := make(http.Header)
	reqHeaders.Set("Content-Type", contentType)

	presignedURL, err := a.client.PresignHeader(ctx, http.MethodPut, a.config.BucketName, path,
		a.config.PresignedDuration, nil, reqHeaders)
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return &port.UploadCredential{
		URL:       presignedURL.String(),
		Headers:   headerToMap(reqHeaders),
		ExpiresAt: time.Now().Add(a.config.PresignedDuration),
	}, nil
}

// Put uploads a payload through a previously issued credential
func (a *Adapter) Put(ctx context.Context, cred *port.UploadCredential, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, cred.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	for k, v := range cred.Headers {
		req.Header.Set(k, v)
	}
	req.ContentLength = int64(len(data))

	resp, err := a.http.Do(req)
	if err != nil {
		return storeErr("upload", cred.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return storeErr("upload", cred.URL, fmt.Errorf("status %d: %s", resp.StatusCode, body))
	}
	return nil
}

// Delete removes a media blob
func (a *Adapter) Delete(ctx context.Context, path string) error {
	return a.RemoveObject(ctx, path)
}

func headerToMap(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for k := range headers {
		out[k] = headers.Get(k)
	}
	return out
}
