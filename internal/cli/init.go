// Package cli holds the start-up plumbing shared by cmd/anggaran and
// cmd/anggaranctl.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"anggaran/internal/amqp"
	"anggaran/internal/cache"
	"anggaran/internal/config"
	"anggaran/internal/core"
	applog "anggaran/internal/log"
	"anggaran/internal/pipeline"
	"anggaran/internal/source"
)

const cacheSweepInterval = time.Minute

// SetupLogger builds the process logger for level, writing to out, and
// installs it as the slog default. LOG_FORMAT=json switches the handler.
func SetupLogger(level string, out io.Writer) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	cfg.Output = out
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Format = format
	}
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig reads the environment and validates it.
func LoadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadAndValidateConfig is LoadConfig for long-running processes: it exits
// on invalid configuration.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg, err := LoadConfig()
	if err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// Services is the wired source stack: cached loader, resolver and the
// optional run-event publisher.
type Services struct {
	Config   *config.Config
	Defaults pipeline.Settings
	Loader   *source.Loader
	Cache    *cache.LRUCache[[]core.Department]
	Cached   *source.CachedLoader
	Resolver *pipeline.Resolver
	Notifier *amqp.Client

	caches *cache.Manager
	logger *applog.Logger
}

// NewServices wires the source stack from cfg. Background cache sweeping
// starts immediately; Close stops it.
func NewServices(cfg *config.Config, logger *applog.Logger) (*Services, error) {
	conn, err := source.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	s := &Services{
		Config:   cfg,
		Defaults: pipeline.Settings{UseExternal: cfg.UseDB, Conn: conn},
		Loader:   source.NewLoader(logger, cfg.DBTimeout),
		Cache:    cache.NewLRUCache[[]core.Department](cfg.SourceCacheSize, cfg.SourceCacheTTL),
		caches:   cache.NewManager(logger),
		logger:   logger.WithComponent(applog.ComponentCLI),
	}
	s.Cached = source.NewCachedLoader(s.Loader, s.Cache, logger)
	s.caches.Register(s.Cache)
	s.caches.StartCleanup(cacheSweepInterval)

	var opts []pipeline.Option
	if cfg.AMQPURL != "" {
		s.Notifier = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, logger)
		opts = append(opts, pipeline.WithNotifier(s.Notifier))
		s.logger.Info("Run events enabled", "exchange", cfg.AMQPExchange)
	}
	s.Resolver = pipeline.NewResolver(s.Cached, logger, opts...)

	s.logger.Info("Source stack ready",
		applog.FieldMode, string(source.Select(cfg.UseDB, conn)),
		applog.FieldDriver, conn.Driver.String(),
		applog.FieldAddress, conn.Address(),
		"cache_size", cfg.SourceCacheSize,
		"cache_ttl", cfg.SourceCacheTTL.String())
	return s, nil
}

// Close stops the cache sweeper and closes the broker connection.
func (s *Services) Close() {
	s.caches.Stop()
	if s.Notifier != nil {
		if err := s.Notifier.Close(); err != nil {
			s.logger.Warn("Closing AMQP client failed", applog.FieldError, err.Error())
		}
	}
}

// GracefulShutdown waits for SIGINT or SIGTERM, then runs shutdown with a
// timeout. The returned context is cancelled once the signal arrives and
// done is closed after shutdown returns.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, shutdown func(context.Context) error) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String(), applog.FieldOperation, applog.OpShutdown)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if shutdown != nil {
			if err := shutdown(shutdownCtx); err != nil {
				logger.Error("Shutdown failed", applog.FieldOperation, applog.OpShutdown, applog.FieldError, err.Error())
			}
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and shutdown has
// finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
