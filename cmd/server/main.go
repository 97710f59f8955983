package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ctchen222/roomserver/internal/config"
	"ctchen222/roomserver/internal/db"
	"ctchen222/roomserver/internal/events"
	"ctchen222/roomserver/internal/hub"
	"ctchen222/roomserver/internal/identity"
	"ctchen222/roomserver/internal/logger"
	"ctchen222/roomserver/internal/repository"
	"ctchen222/roomserver/internal/server"
	"ctchen222/roomserver/internal/session"
	"ctchen222/roomserver/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 5 * time.Second

var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "roomserver",
		Usage:   "real-time two-player tic-tac-toe room server",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a yaml config file; environment variables override it",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the websocket server (default)",
				Action: serveAction,
			},
			{
				Name:  "history",
				Usage: "print finished games from the archive",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum number of games"},
					&cli.StringFlag{Name: "room", Usage: "only games played in this room"},
				},
				Action: historyAction,
			},
			{
				Name:  "env",
				Usage: "list the environment variables the server reads",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprintln(cmd.Root().Writer, config.Usage())
					return err
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Root().String("config"))
	if err != nil {
		return nil, err
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.Init(level, cfg.Telemetry.Enabled)
	return cfg, nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitOtel(ctx, telemetry.Config{
			Endpoint:       cfg.Telemetry.Endpoint,
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: version,
			Stdout:         cfg.Telemetry.Stdout,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Error("Error shutting down telemetry", "error", err)
			}
		}()
	}

	// Event sinks
	var sinks []events.Publisher
	if cfg.Redis.Enabled {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.Addr())
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer rdb.Close()
		sinks = append(sinks, repository.NewEventPublisher(rdb, cfg.Redis.Channel))
	}
	if cfg.Archive.Enabled {
		pool, err := db.Open(ctx, cfg.Archive.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize sqlite archive: %w", err)
		}
		defer pool.Close()
		sinks = append(sinks, repository.NewGameRepository(pool))
	}

	// Hub and dispatcher outlive the HTTP server so that departing sessions
	// can still release their rooms during shutdown.
	runCtx, stopRun := context.WithCancel(context.WithoutCancel(ctx))
	defer stopRun()

	dispatcher := events.NewDispatcher(cfg.Events.QueueSize, sinks...)
	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		dispatcher.Run(runCtx)
	}()

	h := hub.NewHub(hub.WithPublisher(dispatcher), hub.WithInboxSize(cfg.Hub.InboxSize))
	go h.Run(runCtx)

	// Create the Gin-based server
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.NewServer(h, identity.NewResolver(identity.Config{
		JWTSecret:        cfg.Identity.JWTSecret,
		AllowGuests:      cfg.Identity.AllowGuests,
		MaxTokenLifetime: cfg.Identity.MaxTokenLifetime,
	}), server.Options{
		Path: cfg.HTTP.Path,
		Session: session.Config{
			PingInterval:    cfg.Session.PingInterval,
			LivenessTimeout: cfg.Session.LivenessTimeout,
			WriteWait:       cfg.Session.WriteWait,
			SendBuffer:      cfg.Session.SendBuffer,
			MaxMessageSize:  cfg.Session.MaxMessageSize,
		},
	})

	sessionCtx, closeSessions := context.WithCancel(context.WithoutCancel(ctx))
	defer closeSessions()
	httpServer := &http.Server{
		Addr:        cfg.HTTP.Addr,
		Handler:     srv.Engine(),
		BaseContext: func(net.Listener) context.Context { return sessionCtx },
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server started", "http.addr", cfg.HTTP.Addr, "http.path", cfg.HTTP.Path)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down server...")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	closeSessions()
	if err := srv.Wait(shutdownCtx); err != nil {
		slog.Warn("Sessions still open at shutdown", "error", err)
	}

	stopRun()
	<-h.Done()
	<-dispatcherDone

	slog.Info("Server exiting")
	return nil
}

func historyAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	pool, err := db.Open(ctx, cfg.Archive.Path)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer pool.Close()
	repo := repository.NewGameRepository(pool)

	var games []repository.FinishedGame
	if room := cmd.String("room"); room != "" {
		games, err = repo.FindByRoom(ctx, room)
	} else {
		games, err = repo.Recent(ctx, int(cmd.Int("limit")))
	}
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	for _, g := range games {
		winner := g.Winner
		if winner == "" {
			winner = "-"
		}
		if _, err := fmt.Fprintf(w, "%s  room=%s  status=%s  winner=%s  moves=%d  x=%s  o=%s\n",
			g.FinishedAt.Format(time.RFC3339), g.RoomID, g.Status, winner, g.Moves, g.PlayerXID, g.PlayerOID); err != nil {
			return err
		}
	}
	return nil
}
