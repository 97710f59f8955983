package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"ctchen222/roomserver/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

// Resolver identifies the user behind an upgrade request.
type Resolver interface {
	Resolve(r *http.Request) (uuid.UUID, error)
}

// Options configures the HTTP surface.
type Options struct {
	Path    string
	Session session.Config
}

type Server struct {
	registry session.Registry
	resolver Resolver
	opts     Options
	upgrader websocket.Upgrader
	engine   *gin.Engine
	sessions sync.WaitGroup
}

// NewServer builds the gin engine with the single websocket route.
func NewServer(registry session.Registry, resolver Resolver, opts Options) *Server {
	if opts.Path == "" {
		opts.Path = "/ws"
	}
	s := &Server{
		registry: registry,
		resolver: resolver,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	engine.GET(opts.Path, s.handleWebSocket)
	s.engine = engine
	return s
}

// Engine returns the HTTP handler.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// handleWebSocket identifies the caller, upgrades the connection and runs a
// session on it until the client goes away.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.Path),
		attribute.String("http.method", c.Request.Method),
	))

	userID, err := s.resolver.Resolve(c.Request)
	if err != nil {
		slog.WarnContext(ctx, "Rejected websocket request", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unauthorized")
		span.End()
		ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	span.SetAttributes(attribute.String("player.id", userID.String()))

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already written an HTTP error.
		slog.WarnContext(ctx, "Failed to upgrade connection", "player.id", userID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		span.End()
		return
	}
	span.End()

	s.sessions.Add(1)
	defer s.sessions.Done()
	session.New(userID, conn, s.registry, s.opts.Session).Serve(c.Request.Context())
}

// Wait blocks until every session served so far has finished, or ctx ends.
// Hijacked connections are invisible to http.Server.Shutdown, so callers
// cancel the sessions' base context and then Wait.
func (s *Server) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		slog.DebugContext(c.Request.Context(), "HTTP request",
			"http.method", c.Request.Method,
			"http.path", c.Request.URL.Path,
			"http.status", c.Writer.Status(),
		)
	}
}
