package events

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrQueueFull is returned by Dispatcher.Publish when the queue has no room.
var ErrQueueFull = errors.New("event queue is full")

const drainTimeout = 5 * time.Second

// Dispatcher decouples event producers from slow sinks. Publish never blocks;
// Run delivers queued events to every sink in order.
type Dispatcher struct {
	queue chan Event
	sinks []Publisher
}

// NewDispatcher creates a dispatcher with a bounded queue.
func NewDispatcher(size int, sinks ...Publisher) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	return &Dispatcher{
		queue: make(chan Event, size),
		sinks: sinks,
	}
}

// Publish enqueues event without waiting for the sinks.
func (d *Dispatcher) Publish(_ context.Context, event Event) error {
	select {
	case d.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run delivers events until ctx is cancelled, then drains what is already queued.
func (d *Dispatcher) Run(ctx context.Context) {
	slog.InfoContext(ctx, "Event dispatcher started", "sinks.count", len(d.sinks))
	for {
		select {
		case event := <-d.queue:
			d.fanOut(ctx, event)
		case <-ctx.Done():
			d.drain()
			slog.Info("Event dispatcher stopped")
			return
		}
	}
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-d.queue:
			d.fanOut(ctx, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) fanOut(ctx context.Context, event Event) {
	for _, sink := range d.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			slog.ErrorContext(ctx, "Failed to publish event to sink", "event.type", event.Type, "error", err)
		}
	}
}
