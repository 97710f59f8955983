package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

func TestNewResource(t *testing.T) {
	res, err := newResource(Config{ServiceName: "roomserver"})
	require.NoError(t, err)

	attrs := res.Set()
	name, ok := attrs.Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "roomserver", name.AsString())

	version, ok := attrs.Value(semconv.ServiceVersionKey)
	require.True(t, ok)
	assert.Equal(t, attribute.StringValue("dev"), version)
}

func TestInitOtel_LazyConnection(t *testing.T) {
	// grpc.NewClient does not dial until first use, so an unreachable
	// collector does not fail start-up.
	shutdown, err := InitOtel(context.Background(), Config{Endpoint: "127.0.0.1:1", ServiceName: "roomserver-test"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
