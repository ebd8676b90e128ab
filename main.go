package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/giygas/cardioexplain-api/config"
	"github.com/giygas/cardioexplain-api/data"
	"github.com/giygas/cardioexplain-api/glossaryloader"
	"github.com/giygas/cardioexplain-api/handlers"
	"github.com/giygas/cardioexplain-api/health"
	"github.com/giygas/cardioexplain-api/logging"
	"github.com/giygas/cardioexplain-api/scheduler"
	"github.com/giygas/cardioexplain-api/server"
	"github.com/giygas/cardioexplain-api/validation"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Error("Fatal error", "error", err)
		_ = logging.Close()
		os.Exit(1)
	}
}

// loadEnvFile reads .env from the working directory, falling back to the
// executable's directory
func loadEnvFile() {
	if err := godotenv.Load(); err == nil {
		return
	}

	ex, err := os.Executable()
	if err != nil {
		slog.Warn("Failed to get executable path", "error", err)
		return
	}

	if err := godotenv.Load(filepath.Join(filepath.Dir(ex), ".env")); err != nil {
		slog.Debug("No .env file found, using the process environment")
	}
}

func run() error {
	loadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logging.InitLogger(logging.OptionsFromConfig(cfg))
	defer func() { _ = logging.Close() }()

	store := data.NewGlossaryContainer()
	store.SetServerStartTime(time.Now())

	validator := validation.NewValidator(cfg.MaxReportChars)
	source := glossaryloader.NewSource(cfg.GlossaryPath)
	interval := time.Duration(cfg.GlossaryReloadMinutes) * time.Minute

	sched := scheduler.NewScheduler(store, source, validator, interval)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	checker := health.NewHealthChecker(store, sched)
	handler := handlers.NewHTTPHandler(store, validator, checker, cfg.MaxRequestBody)
	srv := server.NewServer(cfg, handler)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		logging.Info("Received signal", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(ctx)
}
