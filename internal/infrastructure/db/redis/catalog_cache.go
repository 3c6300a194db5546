package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/rental-system/internal/api/metrics"
	"github.com/99minutos/rental-system/internal/core/domain"
	"github.com/99minutos/rental-system/internal/core/ports"
)

const defaultCacheTTL = 30 * time.Second

var vehicleTypes = []domain.VehicleType{domain.VehicleCar, domain.VehicleBike}

// CatalogCache caches available-vehicle listings in Redis in front of a
// VehicleRepository. Writes go to the repository and drop the cached lists.
// Redis failures are logged and the repository answers instead.
// Key format: catalog:available:<TYPE>
type CatalogCache struct {
	next   ports.VehicleRepository
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

var _ ports.VehicleRepository = (*CatalogCache)(nil)

// NewCatalogCache wraps next. A non-positive ttl uses defaultCacheTTL.
func NewCatalogCache(next ports.VehicleRepository, client *redis.Client, ttl time.Duration, log zerolog.Logger) *CatalogCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CatalogCache{next: next, client: client, ttl: ttl, log: log}
}

func (c *CatalogCache) ListAvailableByType(ctx context.Context, t domain.VehicleType) ([]domain.Vehicle, error) {
	key := c.key(t)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var vehicles []domain.Vehicle
		jerr := json.Unmarshal(raw, &vehicles)
		if jerr == nil {
			metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
			return vehicles, nil
		}
		metrics.CatalogCacheTotal.WithLabelValues("error").Inc()
		c.log.Warn().Err(jerr).Str("key", key).Msg("corrupt catalog cache entry")
	case errors.Is(err, redis.Nil):
		metrics.CatalogCacheTotal.WithLabelValues("miss").Inc()
	default:
		metrics.CatalogCacheTotal.WithLabelValues("error").Inc()
		c.log.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
	}

	vehicles, err := c.next.ListAvailableByType(ctx, t)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(vehicles); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
		}
	}
	return vehicles, nil
}

func (c *CatalogCache) FindByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	return c.next.FindByID(ctx, id)
}

func (c *CatalogCache) SetAvailability(ctx context.Context, id int64, available bool) error {
	if err := c.next.SetAvailability(ctx, id, available); err != nil {
		return err
	}
	c.invalidate(ctx, vehicleTypes...)
	return nil
}

func (c *CatalogCache) Create(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	created, err := c.next.Create(ctx, v)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, created.Type)
	return created, nil
}

// Invalidate drops every cached listing.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	c.invalidate(ctx, vehicleTypes...)
}

func (c *CatalogCache) invalidate(ctx context.Context, types ...domain.VehicleType) {
	keys := make([]string, 0, len(types))
	for _, t := range types {
		keys = append(keys, c.key(t))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("catalog cache invalidation failed")
	}
}

func (c *CatalogCache) key(t domain.VehicleType) string {
	return fmt.Sprintf("catalog:available:%s", t)
}
