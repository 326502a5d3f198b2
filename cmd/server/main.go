package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"astraxis-server/internal/auth"
	"astraxis-server/internal/ledger"
	"astraxis-server/internal/planet"
	planethandlers "astraxis-server/internal/planet/handlers"
	"astraxis-server/internal/player"
	playerhandlers "astraxis-server/internal/player/handlers"
	"astraxis-server/internal/queue"
	"astraxis-server/internal/realtime"
	"astraxis-server/internal/scheduler"
	"astraxis-server/internal/server"
	"astraxis-server/internal/shared/config"
	"astraxis-server/internal/shared/database"
	"astraxis-server/internal/shared/logger"
	sharedredis "astraxis-server/internal/shared/redis"
	"astraxis-server/internal/universe"
	universehandlers "astraxis-server/internal/universe/handlers"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := config.Init(); err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Init()

	log := slog.Default()

	db, err := database.Connect()
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := sharedredis.Connect()
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Repositories and services.
	planetRepo := planet.NewRepository(db, log.With("component", "planet_repository"))
	playerRepo := player.NewRepository(db, log.With("component", "player_repository"))
	universeRepo := universe.NewRepository(db, log.With("component", "universe_repository"))
	ledgerRepo := ledger.NewRepository(db, log.With("component", "ledger_repository"))
	queueRepo := queue.NewRepository(db, log.With("component", "queue_repository"))

	ledgerSvc := ledger.NewService(ledgerRepo, planetRepo, log.With("component", "ledger"))
	universeSvc := universe.NewService(universeRepo, planetRepo, ledgerSvc, log.With("component", "universe"))
	queueSvc := queue.NewService(db, queueRepo, planetRepo, playerRepo, universeRepo, ledgerSvc,
		config.GlobalConfig.Game.QueuePolicy, log.With("component", "queue"))
	authSvc := auth.NewService(db, playerRepo, universeSvc, log.With("component", "auth"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := universeSvc.EnsureDefault(ctx); err != nil {
		log.Error("Failed to ensure default universe", "error", err)
		os.Exit(1)
	}

	// Realtime fan-out.
	hub := realtime.NewHub(log.With("component", "realtime_hub"))
	notifier := realtime.NewNotifier(hub, redisClient, log.With("component", "realtime_notifier"))
	queueSvc.SetNotifier(notifier)
	go realtime.RunBridge(ctx, redisClient, hub, log.With("component", "realtime_bridge"))

	// Finalization scheduler. Rescans PENDING items so upgrades that finished
	// while the server was down complete on boot.
	sched := scheduler.New(queueSvc, queueSvc, config.GlobalConfig.Game.SweepInterval,
		log.With("component", "scheduler"))
	queueSvc.SetScheduler(sched)
	if err := sched.Start(ctx); err != nil {
		log.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	handlers := &server.Handlers{
		Auth:     auth.NewHandlers(authSvc, log),
		Planet:   planethandlers.NewPlanetHandlers(planetRepo, queueSvc, log),
		Player:   playerhandlers.NewPlayerHandlers(playerRepo, queueSvc, log),
		Universe: universehandlers.NewUniverseHandlers(universeSvc, log),
		Realtime: realtime.NewHandler(hub, log),
		Health:   server.NewHealthHandler(db, redisClient, log),
	}
	srv := server.New(handlers, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info("Shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server failed", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	}
	cancel()
	sched.Stop()

	log.Info("Server stopped")
}
