package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cwbudde/algo-fresp/audio/portaudio"
	"github.com/cwbudde/algo-fresp/internal/api"
	"github.com/cwbudde/algo-fresp/internal/config"
	"github.com/cwbudde/algo-fresp/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func runServe(args []string, _ io.Writer) error {
	fs, cfgPath := newFlagSet("serve", "")
	addr := fs.String("addr", "", "listen address (default from config, :8080)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath, func(cfg *config.Config) error {
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "addr" {
				cfg.Server.Address = *addr
			}
		})
		return nil
	})
	if err != nil {
		return err
	}

	backend, err := portaudio.Open()
	if err != nil {
		return err
	}
	defer backend.Close()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           api.NewServer(backend, cfg, logger.L()).Router(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			logger.Error("server: %v", err)
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	// Shutdown waits for running measurements; the backend closes after.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("shutdown timed out after %s, dropping open connections", shutdownTimeout)
			return srv.Close()
		}
		logger.Error("server shutdown: %v", err)
		return err
	}

	return nil
}
