package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/rental-system/internal/core/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "rental.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rental.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{
		Name: "Alice", Email: "alice@x.com", PasswordHash: "hash",
		Role: domain.RoleCustomer, CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	_, err = repo.Create(ctx, &domain.User{Name: "Dup", Email: "alice@x.com", PasswordHash: "h", Role: "CUSTOMER", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	bob, err := repo.Create(ctx, &domain.User{Name: "Bob", Email: "bob@x.com", PasswordHash: "h", Role: "CUSTOMER", CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), bob.ID)

	found, err := repo.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Name)
	assert.Equal(t, "hash", found.PasswordHash)
	assert.Equal(t, domain.RoleCustomer, found.Role)

	_, err = repo.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestVehicleRepository(t *testing.T) {
	repo := NewVehicleRepository(openTestDB(t))
	ctx := context.Background()

	pinned, err := repo.Create(ctx, &domain.Vehicle{
		ID: 7, Type: domain.VehicleCar, Brand: "Toyota", Model: "Corolla",
		RegNumber: "KA01AB1234", PricePerDay: decimal.RequireFromString("1500.0"), Available: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), pinned.ID)

	next, err := repo.Create(ctx, &domain.Vehicle{
		Type: domain.VehicleCar, Brand: "Honda", Model: "City",
		RegNumber: "KA05", PricePerDay: decimal.RequireFromString("1299.99"), Available: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), next.ID)

	_, err = repo.Create(ctx, &domain.Vehicle{
		Type: domain.VehicleBike, Brand: "Bajaj", Model: "Pulsar", RegNumber: "KA02", PricePerDay: decimal.NewFromInt(450),
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.Vehicle{
		Type: domain.VehicleBike, Brand: "X", Model: "Y", RegNumber: "KA05", PricePerDay: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidVehicle)

	cars, err := repo.ListAvailableByType(ctx, domain.VehicleCar)
	require.NoError(t, err)
	require.Len(t, cars, 2)
	assert.Equal(t, int64(7), cars[0].ID)
	assert.Equal(t, "1500", cars[0].PricePerDay.String())
	assert.Equal(t, "1299.99", cars[1].PricePerDay.String())

	bikes, err := repo.ListAvailableByType(ctx, domain.VehicleBike)
	require.NoError(t, err)
	assert.Empty(t, bikes, "unavailable bikes are not listed")

	require.NoError(t, repo.SetAvailability(ctx, 7, false))
	cars, err = repo.ListAvailableByType(ctx, domain.VehicleCar)
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, int64(8), cars[0].ID)

	v, err := repo.FindByID(ctx, 7)
	require.NoError(t, err)
	assert.False(t, v.Available)
	assert.Equal(t, domain.VehicleCar, v.Type)

	assert.ErrorIs(t, repo.SetAvailability(ctx, 99, true), domain.ErrVehicleNotFound)
	_, err = repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrVehicleNotFound)
}
