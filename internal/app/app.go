// Package app composes the five workflow modules: it resolves the
// cross-module ports, routes workflow events to the notification tracker and
// the outbound publisher, and exposes the HTTP router.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	dochandler "vendorhub/internal/document/handler"
	docmetrics "vendorhub/internal/document/metrics"
	docservice "vendorhub/internal/document/service"
	notifhandler "vendorhub/internal/notification/handler"
	notifmetrics "vendorhub/internal/notification/metrics"
	notifservice "vendorhub/internal/notification/service"
	"vendorhub/internal/notification/tracker"
	"vendorhub/internal/platform/metrics"
	reviewhandler "vendorhub/internal/review/handler"
	reviewmetrics "vendorhub/internal/review/metrics"
	reviewservice "vendorhub/internal/review/service"
	httptransport "vendorhub/internal/transport/http"
	vendorhandler "vendorhub/internal/vendors/handler"
	vendormetrics "vendorhub/internal/vendors/metrics"
	vendorservice "vendorhub/internal/vendors/service"
	caseshandler "vendorhub/internal/verification/handler"
	casesmetrics "vendorhub/internal/verification/metrics"
	casesservice "vendorhub/internal/verification/service"
	"vendorhub/pkg/platform/events"
)

// DocumentStore is the document store plus the count the vendor module reads.
type DocumentStore interface {
	docservice.Store
	vendorservice.DocumentCounter
}

// ReviewStore is the review store plus the rating totals the vendor module reads.
type ReviewStore interface {
	reviewservice.Store
	vendorservice.RatingSource
}

// CaseStore is the case store plus the count the vendor module reads.
type CaseStore interface {
	casesservice.Store
	vendorservice.CaseCounter
}

// Deps are the backends chosen by the caller: in-memory for tests and local
// runs, PostgreSQL and friends in production.
type Deps struct {
	Vendors       vendorservice.Store
	Documents     DocumentStore
	Reviews       ReviewStore
	Cases         CaseStore
	Notifications notifservice.Store
	Blobs         docservice.BlobStore

	// Publisher receives every workflow event through a bounded queue. Optional.
	Publisher events.Sink
	QueueSize int
	// Templates overrides the notification template table.
	Templates []byte

	Registry       *prometheus.Registry
	Logger         *slog.Logger
	ReviewLimiter  func(http.Handler) http.Handler
	RequestTimeout time.Duration
	Health         map[string]httptransport.HealthCheck
}

// App holds the wired services.
type App struct {
	Vendors       *vendorservice.Service
	Documents     *docservice.Service
	Reviews       *reviewservice.Service
	Cases         *casesservice.Service
	Notifications *notifservice.Service

	queue   *events.Queue
	handler http.Handler
}

// New wires the modules. Events fan out synchronously to the notification
// tracker and asynchronously, through the queue, to the publisher.
func New(deps Deps) (*App, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := deps.Registry
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	templates := deps.Templates
	if templates == nil {
		templates = tracker.DefaultTemplates
	}

	// The tracker depends on the notification service, which depends on the
	// vendor service, which emits into the fanout. Bind the fanout late.
	var fanout events.Fanout
	sink := events.SinkFunc(func(ctx context.Context, ev events.Event) error {
		return fanout.Emit(ctx, ev)
	})

	a := &App{}
	a.Vendors = vendorservice.New(deps.Vendors,
		vendorservice.WithLogger(logger.With("module", "vendor")),
		vendorservice.WithMetrics(vendormetrics.New(reg)),
		vendorservice.WithEventSink(sink),
		vendorservice.WithRatingSource(deps.Reviews),
		vendorservice.WithVerificationCounters(deps.Documents, deps.Cases),
	)
	effects := vendorEffects{vendors: a.Vendors}

	notifMetrics := notifmetrics.New(reg)
	a.Notifications = notifservice.New(deps.Notifications, a.Vendors,
		notifservice.WithLogger(logger.With("module", "notification")),
		notifservice.WithMetrics(notifMetrics),
	)
	track, err := tracker.New(a.Notifications, templates,
		tracker.WithLogger(logger.With("module", "tracker")),
		tracker.WithMetrics(notifMetrics),
	)
	if err != nil {
		return nil, fmt.Errorf("notification tracker: %w", err)
	}
	fanout = append(fanout, track)
	if deps.Publisher != nil {
		a.queue = events.NewQueue(deps.Publisher, deps.QueueSize, logger.With("module", "events"))
		fanout = append(fanout, a.queue)
	}

	a.Documents = docservice.New(deps.Documents, deps.Blobs, a.Vendors,
		docservice.WithLogger(logger.With("module", "document")),
		docservice.WithMetrics(docmetrics.New(reg)),
		docservice.WithEventSink(sink),
	)
	a.Reviews = reviewservice.New(deps.Reviews, a.Vendors, effects,
		reviewservice.WithLogger(logger.With("module", "review")),
		reviewservice.WithMetrics(reviewmetrics.New(reg)),
		reviewservice.WithEventSink(sink),
	)
	a.Cases = casesservice.New(deps.Cases, a.Vendors, effects,
		casesservice.WithLogger(logger.With("module", "verification")),
		casesservice.WithMetrics(casesmetrics.New(reg)),
		casesservice.WithEventSink(sink),
	)

	var reviewOpts []reviewhandler.Option
	if deps.ReviewLimiter != nil {
		reviewOpts = append(reviewOpts, reviewhandler.WithSubmitLimiter(deps.ReviewLimiter))
	}
	a.handler = httptransport.NewRouter(httptransport.Options{
		Logger:         logger,
		Registry:       reg,
		RequestTimeout: deps.RequestTimeout,
		Health:         deps.Health,
	},
		vendorhandler.New(a.Vendors, logger),
		dochandler.New(a.Documents, logger),
		reviewhandler.New(a.Reviews, logger, reviewOpts...),
		caseshandler.New(a.Cases, logger),
		notifhandler.New(a.Notifications, logger),
	)
	return a, nil
}

// Handler is the HTTP entry point.
func (a *App) Handler() http.Handler {
	return a.handler
}

// RunPublisher forwards queued events to the publisher until ctx ends. It
// returns immediately when no publisher is configured.
func (a *App) RunPublisher(ctx context.Context) error {
	if a.queue == nil {
		return nil
	}
	return a.queue.Run(ctx)
}
