package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"vendorhub/internal/vendors/models"
	id "vendorhub/pkg/domain"
)

const vendorKeyPrefix = "vendorhub:vendor:"

// Backend is the full vendor store contract the cache decorates.
type Backend interface {
	Create(ctx context.Context, v *models.Vendor) error
	FindByID(ctx context.Context, vendorID id.VendorID) (*models.Vendor, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Vendor, error)
	Stats(ctx context.Context) (*models.Stats, error)
	Execute(ctx context.Context, vendorID id.VendorID, validate func(*models.Vendor) error, mutate func(*models.Vendor)) (*models.Vendor, error)
}

// Cached is a read-through Redis cache in front of a Backend. Only FindByID
// reads from Redis and fills it. Writes only evict the entry once the backend
// has committed, never store their own copy. Redis failures are logged and
// the backend answers.
type Cached struct {
	backend Backend
	client  redis.Cmdable
	ttl     time.Duration
	logger  *slog.Logger
}

type CacheOption func(*Cached)

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cached) {
		c.logger = logger
	}
}

func NewCached(backend Backend, client redis.Cmdable, ttl time.Duration, opts ...CacheOption) *Cached {
	c := &Cached{backend: backend, client: client, ttl: ttl, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Cached) Create(ctx context.Context, v *models.Vendor) error {
	if err := c.backend.Create(ctx, v); err != nil {
		return err
	}
	c.evict(ctx, v.ID)
	return nil
}

func (c *Cached) FindByID(ctx context.Context, vendorID id.VendorID) (*models.Vendor, error) {
	raw, err := c.client.Get(ctx, vendorKey(vendorID)).Bytes()
	switch {
	case err == nil:
		var v models.Vendor
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			return &v, nil
		}
		c.evict(ctx, vendorID)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "vendor cache read failed", "vendor_id", vendorID.String(), "error", err)
	}

	v, err := c.backend.FindByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	c.put(ctx, v)
	return v, nil
}

func (c *Cached) List(ctx context.Context, filter models.ListFilter) ([]*models.Vendor, error) {
	return c.backend.List(ctx, filter)
}

func (c *Cached) Stats(ctx context.Context) (*models.Stats, error) {
	return c.backend.Stats(ctx)
}

func (c *Cached) Execute(ctx context.Context, vendorID id.VendorID, validate func(*models.Vendor) error, mutate func(*models.Vendor)) (*models.Vendor, error) {
	v, err := c.backend.Execute(ctx, vendorID, validate, mutate)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, vendorID)
	return v, nil
}

func (c *Cached) put(ctx context.Context, v *models.Vendor) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, vendorKey(v.ID), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "vendor cache write failed", "vendor_id", v.ID.String(), "error", err)
	}
}

func (c *Cached) evict(ctx context.Context, vendorID id.VendorID) {
	if err := c.client.Del(ctx, vendorKey(vendorID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "vendor cache evict failed", "vendor_id", vendorID.String(), "error", err)
	}
}

func vendorKey(vendorID id.VendorID) string {
	return vendorKeyPrefix + vendorID.String()
}
