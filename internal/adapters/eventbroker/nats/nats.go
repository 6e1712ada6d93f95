package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/feniix/family-gallery-sub000/internal/config"
	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
)

// Publisher announces committed ingestions on a JetStream stream.
// Publishing happens after the transaction commits; a broker outage costs
// the notification, never the upload.
type Publisher struct {
	logger *slog.Logger
	conn   *nats.Conn
	js     jetstream.JetStream
	config config.NATSConfig
}

// IngestedEvent is the wire payload of one committed ingestion
type IngestedEvent struct {
	RecordID   string    `json:"recordId"`
	Year       int       `json:"year"`
	Type       string    `json:"type"`
	TakenAt    time.Time `json:"takenAt"`
	UploadedBy string    `json:"uploadedBy"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewPublisher connects to NATS and ensures the stream exists
func NewPublisher(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("gallery-ingest-publisher"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to JetStream: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{cfg.Subject},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.StreamName, err)
	}

	return &Publisher{
		conn:   conn,
		js:     js,
		config: cfg,
		logger: logger,
	}, nil
}

var _ port.EventPublisher = (*Publisher)(nil)

// MediaIngested publishes one ingestion event with at-least-once delivery
func (p *Publisher) MediaIngested(ctx context.Context, record *domain.MediaRecord) error {
	event := IngestedEvent{
		RecordID:   record.ID,
		Year:       record.TakenAt.Year(),
		Type:       string(record.Type),
		TakenAt:    record.TakenAt,
		UploadedBy: record.UploadedBy,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	// Record IDs are unique, so the message id dedupes broker-side
	// retries.
	_, err = p.js.Publish(ctx, p.config.Subject, payload, jetstream.WithMsgID(record.ID))
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.config.Subject, err)
	}

	p.logger.Debug("ingest event published", "record", record.ID, "subject", p.config.Subject)
	return nil
}

// Close drains the connection
func (p *Publisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	return nil
}
