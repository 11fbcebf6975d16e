package eventpublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cardledger/internal/domain"
	"github.com/iho/cardledger/internal/infrastructure/metrics"
)

// OutboxStore is the part of the outbox the relay drains.
type OutboxStore interface {
	FetchBatch(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Delete(ctx context.Context, id string) error
}

// Publisher defines the interface for publishing events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// EventPublisher relays outbox events to a Publisher. Delivery is at least
// once: an event is deleted only after it was published, and a crash in
// between publishes it again.
type EventPublisher struct {
	outbox    OutboxStore
	publisher Publisher
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	batchSize int
	interval  time.Duration
}

// Config for EventPublisher.
type Config struct {
	Outbox    OutboxStore
	Publisher Publisher
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics // optional
	BatchSize int              // Number of events to fetch per batch
	Interval  time.Duration    // Polling interval
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}

	return &EventPublisher{
		outbox:    cfg.Outbox,
		publisher: cfg.Publisher,
		logger:    cfg.Logger.With().Str("component", "outbox-relay").Logger(),
		metrics:   cfg.Metrics,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
	}
}

// Start runs the relay until ctx is cancelled.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().Int("batch_size", ep.batchSize).Dur("interval", ep.interval).Msg("outbox relay started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	for {
		// drain full batches back to back, then wait for the next tick
		for {
			n, err := ep.ProcessBatch(ctx)
			if err != nil {
				ep.logger.Error().Err(err).Msg("outbox relay batch failed")
				break
			}
			if n < ep.batchSize {
				break
			}
		}

		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("outbox relay shutting down")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessBatch publishes up to one batch of the oldest events and returns
// how many were delivered. It stops at the first failure so events of one
// card are never delivered out of order.
func (ep *EventPublisher) ProcessBatch(ctx context.Context) (int, error) {
	events, err := ep.outbox.FetchBatch(ctx, ep.batchSize)
	if err != nil {
		ep.countError("fetch")
		return 0, fmt.Errorf("fetch outbox batch: %w", err)
	}

	for i, event := range events {
		if err := ep.publisher.Publish(ctx, event); err != nil {
			ep.countError("publish")
			return i, fmt.Errorf("publish event %s: %w", event.ID, err)
		}
		if err := ep.outbox.Delete(ctx, event.ID); err != nil {
			ep.countError("delete")
			return i, fmt.Errorf("delete event %s: %w", event.ID, err)
		}
		if ep.metrics != nil {
			ep.metrics.OutboxPublished.Inc()
		}
		ep.logger.Debug().
			Str("event_id", event.ID).
			Str("event_type", event.EventType).
			Str("aggregate_id", event.AggregateID).
			Msg("event published")
	}

	return len(events), nil
}

func (ep *EventPublisher) countError(stage string) {
	if ep.metrics != nil {
		ep.metrics.OutboxErrors.WithLabelValues(stage).Inc()
	}
}

// LogPublisher writes events to the log. It is used when no broker is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", payload).
		Msg("event published")

	return nil
}
