// Command drugstore serves the drug catalog state over HTTP, backed by the
// upstream drugstore REST API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giygas/drugstore/apiclient"
	"github.com/giygas/drugstore/config"
	"github.com/giygas/drugstore/handlers"
	"github.com/giygas/drugstore/health"
	"github.com/giygas/drugstore/logging"
	"github.com/giygas/drugstore/orchestrator"
	"github.com/giygas/drugstore/preferences"
	"github.com/giygas/drugstore/scheduler"
	"github.com/giygas/drugstore/server"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file loaded, using the environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	logging.InitLogger(logging.Options{
		Dir:            cfg.LogDir,
		Level:          level,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer func() {
		if err := logging.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close log file: %v\n", err)
		}
	}()

	if err := run(cfg); err != nil {
		logging.Error("Fatal error", "error", err)
		_ = logging.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	client, err := apiclient.New(cfg.APIBaseURL,
		apiclient.WithTimeout(cfg.UpstreamTimeout),
		apiclient.WithRate(cfg.UpstreamRate, int64(max(cfg.UpstreamRate, 1))))
	if err != nil {
		return fmt.Errorf("failed to create upstream client: %w", err)
	}

	store, err := preferences.Open(cfg.PreferencesPath)
	if err != nil {
		return fmt.Errorf("failed to open preferences: %w", err)
	}
	logging.Info("Preferences opened", "path", store.Path(), "scope", cfg.PersistScope)
	defer func() {
		if err := store.Close(); err != nil {
			logging.Warn("Failed to close preferences", "error", err)
		}
	}()

	ctrl := orchestrator.New(client, orchestrator.Options{
		Store:           store,
		Scope:           cfg.PersistScope,
		FetchTimeout:    cfg.UpstreamTimeout,
		NotificationTTL: cfg.NotificationTTL,
	})
	ctrl.Start()
	defer ctrl.Close()

	sched := scheduler.NewScheduler(ctrl, cfg.RefreshInterval)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	srv := server.NewServer(cfg, handlers.NewCatalogHandler(ctrl), health.NewHealthChecker(ctrl, store))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		logging.Info("Received signal", "signal", sig.String())
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
