package session

import (
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type sessionMetrics struct {
	sessionsActive   metric.Int64UpDownCounter
	livenessTimeouts metric.Int64Counter
}

var getMetrics = sync.OnceValue(func() *sessionMetrics {
	m, err := buildSessionMetrics(otel.Meter("session"))
	if err != nil {
		slog.Warn("Falling back to no-op session metrics", "error", err)
		m, _ = buildSessionMetrics(noop.NewMeterProvider().Meter("session"))
	}
	return m
})

func buildSessionMetrics(meter metric.Meter) (*sessionMetrics, error) {
	var (
		m   sessionMetrics
		err error
	)
	if m.sessionsActive, err = meter.Int64UpDownCounter("sessions.active", metric.WithDescription("Connected client sessions")); err != nil {
		return nil, err
	}
	if m.livenessTimeouts, err = meter.Int64Counter("sessions.liveness_timeouts", metric.WithDescription("Sessions closed after a missed heartbeat")); err != nil {
		return nil, err
	}
	return &m, nil
}
