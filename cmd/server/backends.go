package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"vendorhub/internal/app"
	docblob "vendorhub/internal/document/blob"
	docservice "vendorhub/internal/document/service"
	docstore "vendorhub/internal/document/store"
	notifservice "vendorhub/internal/notification/service"
	notifstore "vendorhub/internal/notification/store"
	"vendorhub/internal/platform/config"
	"vendorhub/internal/platform/postgres"
	"vendorhub/internal/platform/redis"
	reviewstore "vendorhub/internal/review/store"
	httptransport "vendorhub/internal/transport/http"
	vendorservice "vendorhub/internal/vendors/service"
	vendorstore "vendorhub/internal/vendors/store"
	casesstore "vendorhub/internal/verification/store"
	"vendorhub/pkg/platform/circuit"
	"vendorhub/pkg/platform/events"
	"vendorhub/pkg/platform/events/publishers/kafka"
	"vendorhub/pkg/platform/events/publishers/nats"
)

const (
	kafkaPartitions  int32 = 3
	kafkaReplication int16 = 1
)

// backends holds every external resource main opened, so they can be closed
// in one place on shutdown.
type backends struct {
	kind          string
	vendors       vendorservice.Store
	documents     app.DocumentStore
	reviews       app.ReviewStore
	cases         app.CaseStore
	notifications notifservice.Store
	blobs         docservice.BlobStore
	publisher     events.Sink
	health        map[string]httptransport.HealthCheck

	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackends picks PostgreSQL stores when a database URL is configured and
// in-memory stores otherwise. Redis and the broker publishers are optional.
func openBackends(ctx context.Context, cfg config.Config, log *slog.Logger) (*backends, error) {
	b := &backends{health: map[string]httptransport.HealthCheck{}}

	blobs, err := docblob.NewLocalFS(cfg.Blob.Dir)
	if err != nil {
		return nil, err
	}
	b.blobs = blobs

	if cfg.Database.URL == "" {
		b.kind = "memory"
		b.vendors = vendorstore.NewInMemory()
		b.documents = docstore.NewInMemory()
		b.reviews = reviewstore.NewInMemory()
		b.cases = casesstore.NewInMemory()
		b.notifications = notifstore.NewInMemory()
	} else if err := b.openPostgres(ctx, cfg.Database); err != nil {
		b.Close()
		return nil, err
	}

	if err := b.attachVendorCache(ctx, cfg.Redis, log); err != nil {
		b.Close()
		return nil, err
	}
	if err := b.openPublisher(ctx, cfg, log); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *backends) openPostgres(ctx context.Context, cfg config.Database) error {
	db, err := postgres.Open(ctx, postgres.Config{
		URL:             cfg.URL,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxOpenConns / 2,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	b.closers = append(b.closers, func() { _ = db.Close() })
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}

	b.kind = "postgres"
	b.vendors = vendorstore.NewPostgres(db)
	b.documents = docstore.NewPostgres(db)
	b.reviews = reviewstore.NewPostgres(db)
	b.cases = casesstore.NewPostgres(db)
	b.notifications = notifstore.NewPostgres(db)
	b.health["database"] = pinger(db)
	return nil
}

func pinger(db *sql.DB) httptransport.HealthCheck {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}

// attachVendorCache puts the Redis read-through cache in front of the vendor
// store when Redis is configured.
func (b *backends) attachVendorCache(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) error {
	client, err := redis.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		return nil
	}
	b.closers = append(b.closers, func() { _ = client.Close() })
	b.vendors = vendorstore.NewCached(b.vendors, client, cfg.VendorTTL,
		vendorstore.WithCacheLogger(log.With("component", "vendor_cache")))
	b.health["redis"] = client.Health
	return nil
}

// openPublisher connects the outbound event publisher. Kafka wins over NATS.
func (b *backends) openPublisher(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	exec := circuit.NewExecutor(circuit.Config{
		RetryMaxAttempts:   cfg.Resilience.RetryMaxAttempts,
		BreakerEnabled:     cfg.Resilience.BreakerEnabled,
		BreakerOpenTimeout: cfg.Resilience.BreakerOpenTimeout,
	}, circuit.WithLogger(log.With("component", "publisher")))

	switch {
	case len(cfg.Events.KafkaBrokers) > 0:
		pub, err := kafka.New(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic,
			kafka.WithExecutor(exec),
			kafka.WithLogger(log),
		)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, pub.Close)
		if err := pub.EnsureTopic(ctx, kafkaPartitions, kafkaReplication); err != nil {
			log.WarnContext(ctx, "kafka topic bootstrap failed; publishing anyway",
				"topic", cfg.Events.KafkaTopic,
				"error", err,
			)
		}
		b.publisher = pub
	case cfg.Events.NATSURL != "":
		pub, err := nats.New(cfg.Events.NATSURL, cfg.Events.NATSSubject, nats.Options{
			Executor: exec,
			Logger:   log,
		})
		if err != nil {
			return err
		}
		b.closers = append(b.closers, pub.Close)
		b.publisher = pub
	}
	return nil
}
