package session

//go:generate mockgen -source=session.go -destination=mocks/mock_registry.go -package=mocks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"ctchen222/roomserver/internal/apperror"
	"ctchen222/roomserver/internal/player"
	"ctchen222/roomserver/pkg/proto"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("session")

const (
	defaultPingInterval    = 5 * time.Second
	defaultLivenessTimeout = 10 * time.Second
	defaultWriteWait       = 10 * time.Second
	defaultSendBuffer      = 32
	defaultMaxMessageSize  = 4096

	// The transport drops the connection only for frames this many times
	// larger than MaxMessageSize. Anything in between is answered with an
	// error notice.
	frameLimitFactor = 16

	commandBuffer = 16
	welcomeText   = "Connected tic-tac-toe server"
)

// Registry is the part of the hub a session talks to.
type Registry interface {
	Join(ctx context.Context, roomID *uuid.UUID, userID uuid.UUID, handle player.Handle) (uuid.UUID, error)
	Move(ctx context.Context, roomID, userID uuid.UUID, cell int) error
	Leave(ctx context.Context, roomID, userID uuid.UUID)
	Disconnect(ctx context.Context, roomID, userID uuid.UUID, handle player.Handle)
}

// Config holds the per-connection timing and buffer limits.
type Config struct {
	PingInterval    time.Duration
	LivenessTimeout time.Duration
	WriteWait       time.Duration
	SendBuffer      int
	MaxMessageSize  int64
}

func (c Config) withDefaults() Config {
	if c.PingInterval <= 0 {
		c.PingInterval = defaultPingInterval
	}
	if c.LivenessTimeout <= 0 {
		c.LivenessTimeout = defaultLivenessTimeout
	}
	if c.WriteWait <= 0 {
		c.WriteWait = defaultWriteWait
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = defaultSendBuffer
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = defaultMaxMessageSize
	}
	return c
}

// State is the lifecycle stage of a session.
type State int32

const (
	StateConnecting State = iota
	StateActive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Session owns one client connection. It decodes commands, forwards them
// to the registry one at a time and writes registry notices back to the wire.
type Session struct {
	userID   uuid.UUID
	conn     player.Connection
	registry Registry
	cfg      Config

	send     chan *proto.ServerToClientMessage
	pongs    chan string
	commands chan command
	done     chan struct{}

	closeOnce sync.Once
	cause     error
	state     atomic.Int32
	lastSeen  atomic.Int64

	// roomID is owned by the command loop until teardown.
	roomID *uuid.UUID
}

// New creates a session for an already-identified user.
func New(userID uuid.UUID, conn player.Connection, registry Registry, cfg Config) *Session {
	cfg = cfg.withDefaults()
	return &Session{
		userID:   userID,
		conn:     conn,
		registry: registry,
		cfg:      cfg,
		send:     make(chan *proto.ServerToClientMessage, cfg.SendBuffer),
		pongs:    make(chan string, 1),
		commands: make(chan command, commandBuffer),
		done:     make(chan struct{}),
	}
}

// UserID returns the identifier the session was created for.
func (s *Session) UserID() uuid.UUID {
	return s.userID
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Serve runs the session until the peer goes away, the liveness check fails
// or ctx is cancelled. On the way out it releases the room the session holds.
func (s *Session) Serve(ctx context.Context) {
	m := getMetrics()
	m.sessionsActive.Add(ctx, 1)
	defer m.sessionsActive.Add(context.WithoutCancel(ctx), -1)

	s.touch()
	s.conn.SetReadLimit(s.cfg.MaxMessageSize * frameLimitFactor)
	s.conn.SetPongHandler(func(string) error {
		s.touch()
		return nil
	})
	s.conn.SetPingHandler(func(appData string) error {
		s.touch()
		select {
		case s.pongs <- appData:
		default:
		}
		return nil
	})

	s.state.Store(int32(StateActive))
	slog.InfoContext(ctx, "Session started", "player.id", s.userID)
	_ = s.Deliver(&proto.ServerToClientMessage{
		Type:    proto.NoticeConnected,
		UserID:  s.userID.String(),
		Message: welcomeText,
	})

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		s.readPump(ctx)
	}()
	go func() {
		defer wg.Done()
		s.writePump(ctx)
	}()
	go func() {
		defer wg.Done()
		s.commandLoop(ctx)
	}()

	select {
	case <-ctx.Done():
		s.close(ctx.Err())
	case <-s.done:
	}
	wg.Wait()

	s.teardown(context.WithoutCancel(ctx))
}

func (s *Session) teardown(ctx context.Context) {
	if s.roomID != nil {
		s.registry.Disconnect(ctx, *s.roomID, s.userID, s)
		s.roomID = nil
	}
	s.state.Store(int32(StateClosed))
	slog.InfoContext(ctx, "Session closed", "player.id", s.userID, "reason", s.cause)
}

// Deliver queues msg for the write pump without blocking. A session whose
// buffer is full is treated as dead and closed.
func (s *Session) Deliver(msg *proto.ServerToClientMessage) error {
	select {
	case <-s.done:
		return fmt.Errorf("%w: session closed", apperror.ErrDeliveryFailure)
	default:
	}
	select {
	case s.send <- msg:
		return nil
	default:
		err := fmt.Errorf("%w: send buffer full", apperror.ErrDeliveryFailure)
		s.close(err)
		return err
	}
}

// close moves the session to Closing. Safe to call from any goroutine.
func (s *Session) close(cause error) {
	s.closeOnce.Do(func() {
		s.cause = cause
		s.state.Store(int32(StateClosing))
		close(s.done)
		if err := s.conn.Close(); err != nil {
			slog.Debug("Closing connection failed", "player.id", s.userID, "error", err)
		}
	})
}

func (s *Session) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

func (s *Session) idle() time.Duration {
	return time.Since(time.Unix(0, s.lastSeen.Load()))
}
