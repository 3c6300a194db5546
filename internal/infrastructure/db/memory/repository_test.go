package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/rental-system/internal/core/domain"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	u, err := repo.Create(ctx, &domain.User{Name: "Alice", Email: "alice@x.com", PasswordHash: "h", Role: domain.RoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	_, err = repo.Create(ctx, &domain.User{Name: "Other", Email: "alice@x.com"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	found, err := repo.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Name)

	_, err = repo.FindByEmail(ctx, "bob@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_ConcurrentCreateAssignsUniqueIDs(t *testing.T) {
	repo := NewUserRepository()
	const n = 50

	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := repo.Create(context.Background(), &domain.User{Email: string(rune('a'+i%26)) + string(rune('0'+i/26)) + "@x.com"})
			if err == nil {
				ids <- u.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestVehicleRepository(t *testing.T) {
	repo := NewVehicleRepository()
	ctx := context.Background()
	price := decimal.NewFromInt(1500)

	pinned, err := repo.Create(ctx, &domain.Vehicle{ID: 7, Type: domain.VehicleCar, Brand: "Toyota", Model: "Corolla", RegNumber: "KA01AB1234", PricePerDay: price, Available: true})
	require.NoError(t, err)
	assert.Equal(t, int64(7), pinned.ID)

	next, err := repo.Create(ctx, &domain.Vehicle{Type: domain.VehicleCar, Brand: "Honda", Model: "City", RegNumber: "KA01X", PricePerDay: price, Available: true})
	require.NoError(t, err)
	assert.Equal(t, int64(8), next.ID)

	_, err = repo.Create(ctx, &domain.Vehicle{ID: 7, Type: domain.VehicleBike, Brand: "B", Model: "M", RegNumber: "R"})
	assert.ErrorIs(t, err, domain.ErrInvalidVehicle)
	_, err = repo.Create(ctx, &domain.Vehicle{Type: domain.VehicleBike, Brand: "B,x", Model: "M", RegNumber: "R"})
	assert.ErrorIs(t, err, domain.ErrInvalidVehicle)

	_, err = repo.Create(ctx, &domain.Vehicle{Type: domain.VehicleBike, Brand: "Bajaj", Model: "Pulsar", RegNumber: "KA02", PricePerDay: price})
	require.NoError(t, err)

	cars, err := repo.ListAvailableByType(ctx, domain.VehicleCar)
	require.NoError(t, err)
	require.Len(t, cars, 2)
	assert.Equal(t, int64(7), cars[0].ID)
	assert.Equal(t, int64(8), cars[1].ID)

	bikes, err := repo.ListAvailableByType(ctx, domain.VehicleBike)
	require.NoError(t, err)
	assert.Empty(t, bikes)
	assert.NotNil(t, bikes)

	require.NoError(t, repo.SetAvailability(ctx, 7, false))
	cars, err = repo.ListAvailableByType(ctx, domain.VehicleCar)
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, int64(8), cars[0].ID)

	v, err := repo.FindByID(ctx, 7)
	require.NoError(t, err)
	assert.False(t, v.Available)

	assert.ErrorIs(t, repo.SetAvailability(ctx, 99, true), domain.ErrVehicleNotFound)
	_, err = repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrVehicleNotFound)
}

func TestVehicleRepository_UniqueRegNumber(t *testing.T) {
	repo := NewVehicleRepository()
	ctx := context.Background()
	price := decimal.NewFromInt(300)

	_, err := repo.Create(ctx, &domain.Vehicle{Type: domain.VehicleBike, Brand: "Honda", Model: "Activa", RegNumber: "KA05XY9876", PricePerDay: price, Available: true})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.Vehicle{Type: domain.VehicleBike, Brand: "TVS", Model: "Jupiter", RegNumber: "KA05XY9876", PricePerDay: price, Available: true})
	assert.ErrorIs(t, err, domain.ErrInvalidVehicle)

	_, err = repo.Create(ctx, &domain.Vehicle{ID: 40, Type: domain.VehicleBike, Brand: "TVS", Model: "Jupiter", RegNumber: "KA05XY9876", PricePerDay: price, Available: true})
	assert.ErrorIs(t, err, domain.ErrInvalidVehicle)
	_, err = repo.FindByID(ctx, 40)
	assert.ErrorIs(t, err, domain.ErrVehicleNotFound)

	bikes, err := repo.ListAvailableByType(ctx, domain.VehicleBike)
	require.NoError(t, err)
	require.Len(t, bikes, 1)
	assert.Equal(t, "Activa", bikes[0].Model)
}
