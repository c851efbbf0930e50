// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/AshwinHegde/obsidian-mcp/internal/mcpserver"
	"github.com/AshwinHegde/obsidian-mcp/internal/safefile"
	"github.com/AshwinHegde/obsidian-mcp/internal/sse"
	"github.com/AshwinHegde/obsidian-mcp/internal/vault"
	"github.com/AshwinHegde/obsidian-mcp/internal/vaultops"
	"github.com/AshwinHegde/obsidian-mcp/internal/watcher"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Structured JSON logger on stderr; stdout carries the MCP protocol.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("vaults", strings.Join(cfg.Vaults, ",")),
		slog.String("trash_dir", cfg.Trash.Dir),
		slog.Bool("http_enabled", cfg.App.HTTP.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directories exist.
	for _, root := range cfg.Vaults {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return fmt.Errorf("create vault dir %s: %w", root, err)
		}
	}

	reg, err := vault.NewRegistry(cfg.Vaults)
	if err != nil {
		return fmt.Errorf("init vaults: %w", err)
	}
	logger.Info("Vaults registered", slog.String("names", strings.Join(reg.Names(), ",")))

	mut := safefile.New(logger, cfg.Trash.BackupGrace)
	svc := vaultops.New(reg, mut, cfg.Trash.Dir, logger)
	srv := mcpserver.New(svc)

	// SSE broker for the events sidecar.
	broker := sse.NewBroker()
	defer broker.Close()

	g, gCtx := errgroup.WithContext(ctx)

	// One watcher per vault, feeding the broker.
	for _, v := range reg.All() {
		g.Go(func() error {
			return watcher.Watch(gCtx, v, logger, func(kind, path string) {
				broker.PublishFileEvent(kind, v.Name, path)
			})
		})
	}

	var httpServer *http.Server
	if cfg.App.HTTP.Enabled() {
		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.RealIP)
		r.Use(middleware.Recoverer)

		r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		r.Get("/api/events", broker.ServeHTTP)

		httpServer = &http.Server{
			Addr:    cfg.App.HTTP.Address(),
			Handler: r,
		}

		g.Go(func() error {
			logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	// MCP server on stdio.
	g.Go(func() error {
		logger.Info("Starting MCP server on stdio")
		if err := srv.ServeStdio(); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down...")

		if httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			}
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
