package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scrumdeck/room-sync/config"
	"github.com/scrumdeck/room-sync/internal/event"
	"github.com/scrumdeck/room-sync/internal/hub"
	"github.com/scrumdeck/room-sync/internal/postgres"
	"github.com/scrumdeck/room-sync/internal/service"
	httpx "github.com/scrumdeck/room-sync/internal/transport/http"
	"github.com/scrumdeck/room-sync/internal/transport/ws"
	"github.com/scrumdeck/room-sync/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting room-sync",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	// --- repos ---
	roomRepo := postgres.NewRoomRepository(db.Pool)
	partRepo := postgres.NewParticipantRepository(db.Pool)
	voteRepo := postgres.NewVoteRepository(db.Pool)

	// --- hub & publisher ---
	broadcast := hub.NewWithBuffer(cfg.Hub.SubscriberBuffer)
	pub := event.NewPublisher(broadcast)

	// --- services ---
	roomSvc := service.NewRoomService(roomRepo, partRepo, voteRepo, pub)
	voteSvc := service.NewVoteService(roomRepo, partRepo, voteRepo, pub)

	janitor := service.NewJanitor(roomRepo, cfg.RoomTTL(), cfg.JanitorInterval())
	go janitor.Run(ctx)

	// --- transports ---
	sseServer := httpx.NewSSEServer(broadcast, cfg.HeartbeatInterval())
	wsServer := ws.NewServer(broadcast, cfg.HeartbeatInterval())

	handler := httpx.NewHandler(roomSvc, voteSvc)
	router := httpx.NewRouter(handler, sseServer, wsServer)
	httpSrv := &http.Server{
		Addr:        cfg.HTTP.Addr,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
		// no WriteTimeout: the SSE and ws endpoints hold connections open
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
