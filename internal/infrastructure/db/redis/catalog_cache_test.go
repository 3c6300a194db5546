package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/rental-system/internal/core/domain"
	"github.com/99minutos/rental-system/internal/infrastructure/db/memory"
)

// countingRepo counts listing calls that reach the repository.
type countingRepo struct {
	*memory.VehicleRepository
	lists int
}

func (r *countingRepo) ListAvailableByType(ctx context.Context, t domain.VehicleType) ([]domain.Vehicle, error) {
	r.lists++
	return r.VehicleRepository.ListAvailableByType(ctx, t)
}

func seededRepo(t *testing.T) *countingRepo {
	t.Helper()
	repo := &countingRepo{VehicleRepository: memory.NewVehicleRepository()}
	_, err := repo.Create(context.Background(), &domain.Vehicle{
		ID: 7, Type: domain.VehicleCar, Brand: "Toyota", Model: "Corolla",
		RegNumber: "KA01AB1234", PricePerDay: decimal.RequireFromString("1500.50"), Available: true,
	})
	require.NoError(t, err)
	return repo
}

func TestCatalogCache_FallsBackWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	repo := seededRepo(t)
	cache := NewCatalogCache(repo, client, time.Minute, zerolog.Nop())
	ctx := context.Background()

	cars, err := cache.ListAvailableByType(ctx, domain.VehicleCar)
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, int64(7), cars[0].ID)
	assert.Equal(t, 1, repo.lists)

	require.NoError(t, cache.SetAvailability(ctx, 7, false))
	cars, err = cache.ListAvailableByType(ctx, domain.VehicleCar)
	require.NoError(t, err)
	assert.Empty(t, cars)

	assert.ErrorIs(t, cache.SetAvailability(ctx, 99, false), domain.ErrVehicleNotFound)
}

func TestCatalogCache_Key(t *testing.T) {
	cache := NewCatalogCache(nil, nil, 0, zerolog.Nop())
	assert.Equal(t, "catalog:available:CAR", cache.key(domain.VehicleCar))
	assert.Equal(t, defaultCacheTTL, cache.ttl)
}

func TestCatalogCache_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set, skipping Redis integration test")
	}
	ctx := context.Background()
	client, err := Connect(ctx, Config{Addr: addr, DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.FlushDB(ctx).Err())

	repo := seededRepo(t)
	cache := NewCatalogCache(repo, client, time.Minute, zerolog.Nop())

	first, err := cache.ListAvailableByType(ctx, domain.VehicleCar)
	require.NoError(t, err)
	second, err := cache.ListAvailableByType(ctx, domain.VehicleCar)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists, "second listing is served from redis")
	require.Len(t, second, 1)
	assert.True(t, first[0].PricePerDay.Equal(second[0].PricePerDay))
	assert.Equal(t, "KA01AB1234", second[0].RegNumber)

	_, err = cache.Create(ctx, &domain.Vehicle{
		Type: domain.VehicleCar, Brand: "Honda", Model: "City", RegNumber: "KA05",
		PricePerDay: decimal.NewFromInt(1200), Available: true,
	})
	require.NoError(t, err)

	cars, err := cache.ListAvailableByType(ctx, domain.VehicleCar)
	require.NoError(t, err)
	assert.Len(t, cars, 2)
	assert.Equal(t, 2, repo.lists)
}
