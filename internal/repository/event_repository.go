package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"ctchen222/roomserver/internal/events"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository")

// EventPublisher publishes room lifecycle events on a Redis pub/sub channel
// as {"event": ..., "payload": ...} envelopes.
type EventPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewEventPublisher creates a Redis-backed events.Publisher.
func NewEventPublisher(rdb *redis.Client, channel string) *EventPublisher {
	if channel == "" {
		channel = events.EventsChannel
	}
	return &EventPublisher{rdb: rdb, channel: channel}
}

// Publish implements events.Publisher.
func (p *EventPublisher) Publish(ctx context.Context, event events.Event) error {
	ctx, span := tracer.Start(ctx, "EventPublisher.Publish", trace.WithAttributes(
		attribute.String("event.type", event.Type),
		attribute.String("event.channel", p.channel),
	))
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish event")
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}
