// Package amqp publishes submission events to a RabbitMQ exchange.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/corruption-heatmap/internal/config"
	"github.com/couchcryptid/corruption-heatmap/internal/domain"
	"github.com/couchcryptid/corruption-heatmap/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/rabbitmq/amqp091-go"
)

const (
	backendLabel = "amqp"

	dialAttempts   = 5
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
	publishTimeout = 5 * time.Second
)

// publishChannel is the subset of *amqp091.Channel the publisher uses.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends submission events to a durable topic exchange.
// It implements domain.SubmissionPublisher.
type Publisher struct {
	conn       io.Closer
	channel    publishChannel
	exchange   string
	routingKey string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewPublisher connects to the broker, retrying with backoff until ctx is
// done or the attempts run out, and declares the exchange.
func NewPublisher(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*Publisher, error) {
	var conn *amqp091.Connection
	err := withRetry(ctx, dialAttempts, logger, func() error {
		var err error
		conn, err = amqp091.Dial(cfg.AMQPURL)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.AMQPExchange, // name
		"topic",          // type
		true,             // durable
		false,            // auto-deleted
		false,            // internal
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	logger.Info("amqp publisher ready", "exchange", cfg.AMQPExchange, "routing_key", cfg.AMQPRoutingKey)
	return &Publisher{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.AMQPExchange,
		routingKey: cfg.AMQPRoutingKey,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// PublishSubmission sends one persistent JSON message.
func (p *Publisher) PublishSubmission(ctx context.Context, event domain.SubmissionEvent) error {
	msg, err := toPublishing(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg); err != nil {
		p.metrics.EventsPublished.WithLabelValues(backendLabel, "error").Inc()
		return fmt.Errorf("publish submission event: %w", err)
	}
	p.metrics.EventsPublished.WithLabelValues(backendLabel, "success").Inc()
	p.logger.Debug("submission event published",
		"backend", backendLabel,
		"exchange", p.exchange,
		"routing_key", p.routingKey,
		"sector", event.Sector)
	return nil
}

// Close closes the channel, then the connection.
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func toPublishing(event domain.SubmissionEvent) (amqp091.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("serialize submission event: %w", err)
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    event.SubmittedAt,
		Type:         "report.submitted",
		Headers:      amqp091.Table{"sector": event.Sector},
		Body:         body,
	}, nil
}

// withRetry calls op until it succeeds, attempts are used up, or ctx ends.
func withRetry(ctx context.Context, attempts int, logger *slog.Logger, op func() error) error {
	backoff := initialBackoff
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		logger.Warn("amqp connect failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
