package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"vendorhub/internal/app"
	"vendorhub/internal/platform/config"
	"vendorhub/internal/platform/httpserver"
	"vendorhub/internal/platform/logger"
	"vendorhub/internal/platform/metrics"
	"vendorhub/pkg/platform/middleware/throttle"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log.Level)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("vendorhub stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backends, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backends.Close()

	templates, err := loadTemplates(cfg.Notifications)
	if err != nil {
		return err
	}

	application, err := app.New(app.Deps{
		Vendors:        backends.vendors,
		Documents:      backends.documents,
		Reviews:        backends.reviews,
		Cases:          backends.cases,
		Notifications:  backends.notifications,
		Blobs:          backends.blobs,
		Publisher:      backends.publisher,
		QueueSize:      cfg.Events.QueueSize,
		Templates:      templates,
		Registry:       metrics.NewRegistry(),
		Logger:         log,
		ReviewLimiter:  throttle.New(cfg.RateLimit.ReviewsPerMinute, cfg.RateLimit.ReviewBurst).Middleware,
		RequestTimeout: cfg.Server.RequestTimeout,
		Health:         backends.health,
	})
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg.Server.Addr, application.Handler())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting vendorhub",
			"addr", cfg.Server.Addr,
			"storage", backends.kind,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := application.RunPublisher(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func loadTemplates(cfg config.Notifications) ([]byte, error) {
	if cfg.TemplatesFile == "" {
		return nil, nil
	}
	return os.ReadFile(cfg.TemplatesFile)
}
