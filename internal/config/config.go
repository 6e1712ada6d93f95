package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env       Env
	Server    ServerConfig
	Minio     MinioConfig
	Store     StoreConfig
	Lock      LockConfig
	Ingest    IngestConfig
	Thumbnail ThumbnailConfig
	NATS      NATSConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"localhost"`
	Port string `envconfig:"SERVER_PORT" default:"8080"`
}

type MinioConfig struct {
	Endpoint          string        `envconfig:"MINIO_ENDPOINT" required:"true"`
	BucketName        string        `envconfig:"MINIO_BUCKET_NAME" required:"true"`
	AccessKey         string        `envconfig:"MINIO_ACCESS_KEY" required:"true"`
	SecretKey         string        `envconfig:"MINIO_SECRET_KEY" required:"true"`
	PresignedDuration time.Duration `envconfig:"MINIO_PRESIGNED_DURATION" default:"15m"`
	UseSSL            bool          `envconfig:"MINIO_USE_SSL" default:"false"`
}

type StoreConfig struct {
	RetryAttempts  int           `envconfig:"STORE_RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"STORE_RETRY_BASE_DELAY" default:"1s"`
	LockTimeout    time.Duration `envconfig:"STORE_LOCK_TIMEOUT" default:"10s"`
}

type LockConfig struct {
	TTL      time.Duration `envconfig:"LOCK_TTL" default:"60s"`
	PollBase time.Duration `envconfig:"LOCK_POLL_BASE" default:"100ms"`
}

type IngestConfig struct {
	RetryAttempts        int           `envconfig:"INGEST_RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelay       time.Duration `envconfig:"INGEST_RETRY_BASE_DELAY" default:"1s"`
	RetryMaxDelay        time.Duration `envconfig:"INGEST_RETRY_MAX_DELAY" default:"10s"`
	TransactionTimeout   time.Duration `envconfig:"INGEST_TRANSACTION_TIMEOUT" default:"5m"`
	TransactionRetention time.Duration `envconfig:"INGEST_TRANSACTION_RETENTION" default:"10m"`
	DuplicateScanFrom    int           `envconfig:"INGEST_DUPLICATE_SCAN_FROM_YEAR" default:"2000"`
	MaxUploadBytes       int64         `envconfig:"INGEST_MAX_UPLOAD_BYTES" default:"104857600"` // 100MB
	RecountEvery         time.Duration `envconfig:"INGEST_RECOUNT_EVERY" default:"15m"`
}

type ThumbnailConfig struct {
	MaxWidth  int           `envconfig:"THUMBNAIL_MAX_WIDTH" default:"400"`
	MaxHeight int           `envconfig:"THUMBNAIL_MAX_HEIGHT" default:"400"`
	Timeout   time.Duration `envconfig:"THUMBNAIL_TIMEOUT" default:"10s"`
}

// NATSConfig configures the ingest event publisher. An empty URL disables
// publishing entirely.
type NATSConfig struct {
	URL        string `envconfig:"NATS_URL" default:""`
	StreamName string `envconfig:"NATS_STREAM_NAME" default:"MEDIA"`
	Subject    string `envconfig:"NATS_SUBJECT" default:"media.ingested"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
