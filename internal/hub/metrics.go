package hub

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type hubMetrics struct {
	roomsActive      metric.Int64UpDownCounter
	movesApplied     metric.Int64Counter
	movesRejected    metric.Int64Counter
	deliveryFailures metric.Int64Counter

	invariantViolations metric.Int64Counter
}

func newHubMetrics() *hubMetrics {
	m, err := buildHubMetrics(otel.Meter("hub"))
	if err != nil {
		slog.Warn("Falling back to no-op hub metrics", "error", err)
		m, _ = buildHubMetrics(noop.NewMeterProvider().Meter("hub"))
	}
	return m
}

func buildHubMetrics(meter metric.Meter) (*hubMetrics, error) {
	var (
		m   hubMetrics
		err error
	)
	if m.roomsActive, err = meter.Int64UpDownCounter("rooms.active", metric.WithDescription("Rooms currently registered")); err != nil {
		return nil, err
	}
	if m.movesApplied, err = meter.Int64Counter("moves.applied", metric.WithDescription("Moves accepted by the hub")); err != nil {
		return nil, err
	}
	if m.movesRejected, err = meter.Int64Counter("moves.rejected", metric.WithDescription("Moves rejected by the hub")); err != nil {
		return nil, err
	}
	if m.deliveryFailures, err = meter.Int64Counter("delivery.failures", metric.WithDescription("Notices dropped on a full or closed handle")); err != nil {
		return nil, err
	}
	if m.invariantViolations, err = meter.Int64Counter("registry.invariant_violations", metric.WithDescription("Requests that left the user index out of step with room membership")); err != nil {
		return nil, err
	}
	return &m, nil
}
