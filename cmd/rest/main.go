package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sir_venger/download_lite/internal/app/resthttp"
	"github.com/sir_venger/download_lite/internal/config"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// main инициализирует сервис выдачи файлов и обеспечивает корректное завершение по сигналу.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logger, err := cfg.NewLogger(os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("configure logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := resthttp.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build server")
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error().Err(err).Msg("close meta store")
		}
	}()

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("addr", cfg.ListenAddr).
			Str("meta_dsn_scheme", dsnScheme(cfg.MetaDSN)).
			Str("blob_backend", cfg.Blob.Backend).
			Str("throttle_mode", cfg.Throttle.Mode).
			Int64("bytes_per_second", cfg.Throttle.BytesPerSecond).
			Msg("REST listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Фоновый GC и graceful shutdown при получении SIGTERM/SIGINT.
	g.Go(func() error {
		stopGC := app.GC.Start(cfg.GC.Interval)
		defer stopGC()

		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return
	}
	logger.Info().Msg("REST stopped")
}

// dsnScheme оставляет только схему, чтобы не писать пароль в лог.
func dsnScheme(dsn string) string {
	if scheme, _, ok := strings.Cut(dsn, "://"); ok {
		return scheme
	}
	return "unknown"
}
