package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestMultiHandler(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	debug := slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	warn := slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn})

	log := slog.New(NewMultiHandler(debug, warn)).With("room.id", "r1").WithGroup("move")
	log.Debug("Move rejected", "position", 4)
	log.Warn("Delivery failed", "position", 5)

	assert.Contains(t, debugBuf.String(), "Move rejected")
	assert.Contains(t, debugBuf.String(), "room.id=r1")
	assert.Contains(t, debugBuf.String(), "move.position=4")
	assert.NotContains(t, warnBuf.String(), "Move rejected")
	assert.Contains(t, warnBuf.String(), "move.position=5")

	assert.False(t, NewMultiHandler(warn).Enabled(context.Background(), slog.LevelInfo))
}

func TestMultiHandler_PropagatesErrors(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(slog.NewTextHandler(&buf, nil), failingHandler{slog.NewTextHandler(&buf, nil)})

	err := h.Handle(context.Background(), slog.NewRecord(testTime, slog.LevelInfo, "hello", 0))
	assert.EqualError(t, err, "sink down")
	assert.Contains(t, buf.String(), "hello")
}
