package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/rental-system/internal/core/domain"
)

// testDB connects to MONGO_TEST_URI and returns a throwaway database.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping MongoDB integration test")
	}

	ctx := context.Background()
	client, db, err := Connect(ctx, Config{
		URI:      uri,
		Database: fmt.Sprintf("rental_test_%d", time.Now().UnixNano()),
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)
	require.NoError(t, EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestUserRepository(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{
		Name: "Alice", Email: "alice@x.com", PasswordHash: "hash",
		Role: domain.RoleCustomer, CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	_, err = repo.Create(ctx, &domain.User{Name: "Alice2", Email: "alice@x.com"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	second, err := repo.Create(ctx, &domain.User{Name: "Bob", Email: "bob@x.com"})
	require.NoError(t, err)
	assert.Greater(t, second.ID, created.ID)

	found, err := repo.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Name)
	assert.Equal(t, "hash", found.PasswordHash)

	_, err = repo.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestVehicleRepository(t *testing.T) {
	db := testDB(t)
	repo := NewVehicleRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Vehicle{
		ID: 7, Type: domain.VehicleCar, Brand: "Toyota", Model: "Corolla",
		RegNumber: "KA01AB1234", PricePerDay: decimal.RequireFromString("1500.0"), Available: true,
	})
	require.NoError(t, err)

	next, err := repo.Create(ctx, &domain.Vehicle{
		Type: domain.VehicleCar, Brand: "Honda", Model: "City",
		RegNumber: "KA05", PricePerDay: decimal.RequireFromString("1299.99"), Available: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), next.ID)

	cars, err := repo.ListAvailableByType(ctx, domain.VehicleCar)
	require.NoError(t, err)
	require.Len(t, cars, 2)
	assert.Equal(t, int64(7), cars[0].ID)
	assert.True(t, cars[1].PricePerDay.Equal(decimal.RequireFromString("1299.99")))

	require.NoError(t, repo.SetAvailability(ctx, 7, false))
	cars, err = repo.ListAvailableByType(ctx, domain.VehicleCar)
	require.NoError(t, err)
	assert.Len(t, cars, 1)

	assert.ErrorIs(t, repo.SetAvailability(ctx, 99, true), domain.ErrVehicleNotFound)
	_, err = repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrVehicleNotFound)
}

func TestAuditRepository(t *testing.T) {
	db := testDB(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.InsertSessionEvent(ctx, &domain.SessionEvent{
		ConnID: "c1", Kind: domain.EventLoginFailed, Email: "x@x.com", At: time.Now(),
	}))

	var doc bson.M
	require.NoError(t, db.Collection(sessionEventsCollection).FindOne(ctx, bson.M{"conn_id": "c1"}).Decode(&doc))
	assert.Equal(t, "login_failed", doc["kind"])
	_, hasUser := doc["user_id"]
	assert.False(t, hasUser)
}
