package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chainrelay/correlator/internal/config"
	"github.com/chainrelay/correlator/internal/engine"
	"github.com/chainrelay/correlator/internal/identity"
	"github.com/chainrelay/correlator/internal/observability"
	"github.com/chainrelay/correlator/internal/store"
	"github.com/chainrelay/correlator/internal/subscriber"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	configPath = flag.String("config", "", "Path to configuration file (empty uses built-in defaults)")
)

func main() {
	flag.Parse()

	logger := setupLogger()
	logger.Info().
		Str("service", "correlator").
		Str("config", *configPath).
		Msg("starting cross-chain correlation engine")

	var (
		cfg    *config.Config
		chains *identity.ChainTable
	)
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load configuration")
		}
		cfg = loaded
		chains = cfg.ChainTable()
	} else {
		cfg = &config.Config{
			Server:     config.ServerConfig{Host: "0.0.0.0", Port: 9090},
			Store:      config.StoreConfig{Backend: "memory"},
			Subscriber: config.SubscriberConfig{Backend: "memory"},
		}
		chains = config.DefaultChainTable()
		logger.Warn().Msg("no config file supplied, running with built-in defaults")
	}

	st, err := buildStore(cfg.Store, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize entity store")
	}

	sub, err := buildSubscriber(cfg.Subscriber, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize subscriber")
	}

	sink := observability.NewLogSink(logger)
	eng := engine.New(st, chains, sink, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := startHTTPServer(cfg.Server, logger)

	subErrCh := make(chan error, 1)
	go func() {
		subErrCh <- sub.Subscribe(ctx, eng.Dispatch)
	}()

	logger.Info().Msg("correlation engine running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info().Msg("shutdown signal received")
	case err := <-subErrCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("subscriber stopped unexpectedly")
		}
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("health server shutdown error")
	}
	if err := sub.Close(); err != nil {
		logger.Error().Err(err).Msg("subscriber close error")
	}

	logger.Info().Msg("correlation engine stopped")
}

func buildStore(cfg config.StoreConfig, logger zerolog.Logger) (store.Store, error) {
	switch cfg.Backend {
	case "postgres":
		return store.NewPostgresStore(cfg.Postgres, logger)
	case "memory", "":
		return store.NewInMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func buildSubscriber(cfg config.SubscriberConfig, logger zerolog.Logger) (subscriber.Subscriber, error) {
	switch cfg.Backend {
	case "nats":
		return subscriber.NewNATSSubscriber(cfg, logger)
	case "memory", "":
		return subscriber.NewMemorySubscriber(nil), nil
	default:
		return nil, fmt.Errorf("unknown subscriber backend %q", cfg.Backend)
	}
}

// startHTTPServer serves the ambient /healthz and /metrics endpoints
// (spec §6's observability sink has no HTTP surface of its own; this
// is the supplemental external-collaborator front door for it).
func startHTTPServer(cfg config.ServerConfig, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("health server failed")
		}
	}()
	return srv
}

func setupLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	env := os.Getenv("CORRELATOR_ENVIRONMENT")
	if env == "development" || env == "testnet" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Caller().
			Logger()
	}

	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()
}
