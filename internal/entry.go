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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/oakmund/stanza/internal/api"
	"github.com/oakmund/stanza/internal/library"
	"github.com/oakmund/stanza/internal/presence"
	"github.com/oakmund/stanza/internal/search"
	"github.com/oakmund/stanza/internal/storage"
)

// Run starts the web application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_root", cfg.Content.Root),
		slog.String("search_path", cfg.Search.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize storage over the content root.
	store, err := storage.NewFS(cfg.Content.Root)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Load the content catalog. Build-fatal conditions (bad filename
	// dates, duplicate ids) abort startup here: no partial catalog is
	// ever served.
	lib, err := library.New(store, cfg.Content.Categories, logger)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}

	// Initialize the search index and mirror the visible catalog.
	ix, err := search.Open(cfg.Search.Path)
	if err != nil {
		return fmt.Errorf("init search: %w", err)
	}
	defer ix.Close()

	if err := ix.Rebuild(lib.Visible(time.Now())); err != nil {
		logger.Warn("initial search rebuild failed", slog.String("error", err.Error()))
	}

	// Presence broker.
	broker := presence.NewBroker(30 * time.Second)
	defer broker.Close()

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Mount("/", api.NewRouter(lib, ix, broker, cfg.Site.Info(), cfg.Cards.Dir, cfg.Preview.Token, nil))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the content tree and reload the catalog on changes.
	if cfg.Content.Watch {
		g.Go(func() error {
			return lib.Watch(gCtx, cfg.Content.Root, logger, func() {
				if err := ix.Rebuild(lib.Visible(time.Now())); err != nil {
					logger.Warn("search rebuild after reload failed", slog.String("error", err.Error()))
				}
				broker.Publish(presence.Event{Type: "content.updated", Data: map[string]string{}})
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
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

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
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
