// Package outbox enqueues answer write records onto a durable JetStream
// stream for asynchronous persistence into the system of record.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"originate-hq/meridian/pkg/queue"
)

// Config configures the publisher.
type Config struct {
	// URL is the NATS server URL.
	URL string

	// Stream is the JetStream stream name holding answer records.
	Stream string

	// SubjectPrefix is prepended to the proposal pid to form the subject
	// ("loan.answers" -> "loan.answers.<pid>").
	SubjectPrefix string

	// PublishTimeout bounds each publish; the voice path cannot wait on a
	// slow broker.
	PublishTimeout time.Duration
}

// Publisher implements queue.Publisher over JetStream.
type Publisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	cfg    Config
	logger *slog.Logger
}

// Connect dials NATS and ensures the stream exists. The stream is created
// with file storage so records survive broker restarts; the consumer side
// is owned by the persistence worker, not this process.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*Publisher, error) {
	if cfg.Stream == "" {
		cfg.Stream = "LOAN_ANSWERS"
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "loan.answers"
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 250 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("meridian-outbox"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("get jetstream: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{cfg.SubjectPrefix + ".>"},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", cfg.Stream, err)
	}

	logger.Info("outbox connected",
		"url", cfg.URL,
		"stream", cfg.Stream,
		"subject_prefix", cfg.SubjectPrefix,
	)

	return &Publisher{conn: conn, js: js, cfg: cfg, logger: logger}, nil
}

// PublishAnswer implements queue.Publisher. The record id doubles as the
// message id so broker-side deduplication absorbs retries.
func (p *Publisher) PublishAnswer(ctx context.Context, rec *queue.WriteRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal write record: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.PublishTimeout)
	defer cancel()

	subject := p.cfg.SubjectPrefix + "." + rec.ProposalPid
	_, err = p.js.Publish(ctx, subject, data, jetstream.WithMsgID(rec.ID))
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Ping verifies broker connectivity for readiness checks.
func (p *Publisher) Ping(ctx context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats connection %s", p.conn.Status())
	}
	return nil
}

// Close drains the connection so buffered publishes flush.
func (p *Publisher) Close() error {
	return p.conn.Drain()
}
