package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/clausops/escaperoom/internal/config"
	"github.com/clausops/escaperoom/internal/dbconfig"
	"github.com/clausops/escaperoom/internal/gateway"
	"github.com/clausops/escaperoom/internal/httpapi"
	"github.com/clausops/escaperoom/internal/outbox"
	"github.com/clausops/escaperoom/internal/realtime"
	"github.com/clausops/escaperoom/internal/session/sessionstore"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load(getEnv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Info().
		Str("port", cfg.Port).
		Bool("standalone", cfg.Standalone).
		Bool("dev_mode", cfg.DevMode).
		Msg("starting escape room server")

	snapshots, err := sessionstore.NewFileSnapshots(cfg.SnapshotDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.SnapshotDir).Msg("failed to open snapshot store")
	}
	registry := sessionstore.NewRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// In standalone mode the game runs entirely locally: no database,
	// no broker, and the facilitator surface reads empty.
	var gw gateway.Gateway = gateway.Disabled{}
	var worker *outbox.Worker
	var consumer *realtime.EventConsumer

	hub := realtime.NewHub(realtime.DefaultConnectionConfig())
	go hub.Start(ctx)

	if !cfg.Standalone {
		dbCfg := dbconfig.NewConfigFromEnv()
		db, err := sql.Open("postgres", dbCfg.DSN())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("failed to ping database")
		}
		log.Info().Str("database", dbCfg.Database).Msg("connected to database")

		gw = gateway.NewPostgres(db)

		jsCfg := outbox.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATSURL
		publisher, err := outbox.NewJetStreamPublisher(jsCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create JetStream publisher")
		}
		defer publisher.Close()

		workerLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		worker = outbox.NewWorker(db, publisher, outbox.DefaultConfig(), workerLogger)
		if err := worker.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start outbox worker")
		}

		consumerCfg := realtime.DefaultConsumerConfig()
		consumerCfg.URL = cfg.NATSURL
		consumer, err = realtime.NewEventConsumer(hub, consumerCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event consumer")
		}
		go func() {
			if err := consumer.Start(ctx); err != nil {
				log.Error().Err(err).Msg("event consumer failed")
			}
		}()
	}

	api := httpapi.NewServer(registry, snapshots, gw, httpapi.Config{
		DevMode:             cfg.DevMode,
		TimeBudget:          cfg.TimeBudget,
		FacilitatorPassword: cfg.FacilitatorPassword,
	})

	mux := http.NewServeMux()
	api.RegisterRoutes(mux)
	realtime.NewHandler(hub).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           api.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	if worker != nil {
		if err := worker.Stop(); err != nil {
			log.Error().Err(err).Msg("outbox worker stop failed")
		}
	}
	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			log.Error().Err(err).Msg("event consumer stop failed")
		}
	}

	// Stop countdown tickers and flush final snapshots.
	registry.StopAll()
	cancel()

	log.Info().Msg("escape room server shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
