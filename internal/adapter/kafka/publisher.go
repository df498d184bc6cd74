package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/corruption-heatmap/internal/config"
	"github.com/couchcryptid/corruption-heatmap/internal/domain"
	"github.com/couchcryptid/corruption-heatmap/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

const backendLabel = "kafka"

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces submission events to a Kafka topic.
// It implements domain.SubmissionPublisher.
type Publisher struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured submission topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, metrics: metrics, logger: logger}
}

// PublishSubmission writes one event keyed by sector.
func (p *Publisher) PublishSubmission(ctx context.Context, event domain.SubmissionEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.EventsPublished.WithLabelValues(backendLabel, "error").Inc()
		return fmt.Errorf("write submission event: %w", err)
	}
	p.metrics.EventsPublished.WithLabelValues(backendLabel, "success").Inc()
	p.logger.Debug("submission event published", "backend", backendLabel, "sector", event.Sector)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a SubmissionEvent into a Kafka message.
func serializeToMessage(event domain.SubmissionEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize submission event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Sector),
		Value: data,
		Time:  event.SubmittedAt,
		Headers: []kafkago.Header{
			{Key: "sector", Value: []byte(event.Sector)},
			{Key: "submitted_at", Value: []byte(event.SubmittedAt.Format(time.RFC3339))},
		},
	}, nil
}
