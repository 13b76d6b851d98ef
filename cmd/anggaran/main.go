package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"anggaran/internal/cli"
	apphttp "anggaran/internal/http"
	applog "anggaran/internal/log"
	"anggaran/internal/middleware/ratelimit"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout)
	cfg := cli.LoadAndValidateConfig(logger)

	services, err := cli.NewServices(cfg, logger)
	if err != nil {
		logger.Error("Failed to wire source", applog.FieldOperation, applog.OpStartup, applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer services.Close()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Runner: services.Resolver,
		Pinger: services.Loader,
		Defaults: apphttp.Defaults{
			UseExternal: services.Defaults.UseExternal,
			Conn:        services.Defaults.Conn,
			DarkMode:    cfg.DarkMode,
		},
		Logger:       logger,
		CacheEntries: services.Cache.Size,
		RateLimit:    ratelimit.DefaultConfig(),
	})

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, srv.Shutdown)

	go func() {
		logger.Info("Starting anggaran dashboard",
			applog.FieldOperation, applog.OpStartup,
			"addr", srv.Addr,
			"use_db", cfg.UseDB,
			"log_level", cfg.LogLevel)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", applog.FieldError, err.Error(), "addr", srv.Addr)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
