package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/rental-system/internal/core/domain"
	"github.com/99minutos/rental-system/internal/infrastructure/db/memory"
)

const catalog = `
vehicles:
  - id: 1
    type: car
    brand: Toyota
    model: Corolla
    reg_number: KA01AB1234
    price_per_day: "1500.00"
  - id: 2
    type: BIKE
    brand: Honda
    model: Activa
    reg_number: KA05XY9876
    price_per_day: "300.5"
    available: false
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse(t *testing.T) {
	vehicles, err := Parse([]byte(catalog))
	require.NoError(t, err)
	require.Len(t, vehicles, 2)

	assert.Equal(t, int64(1), vehicles[0].ID)
	assert.Equal(t, domain.VehicleCar, vehicles[0].Type)
	assert.True(t, vehicles[0].Available)
	assert.Equal(t, "1500", vehicles[0].PricePerDay.String())

	assert.Equal(t, domain.VehicleBike, vehicles[1].Type)
	assert.False(t, vehicles[1].Available)
	assert.Equal(t, "300.5", vehicles[1].PricePerDay.String())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed yaml", "vehicles: [\n"},
		{"unknown type", "vehicles:\n  - {type: truck, brand: a, model: b, reg_number: c, price_per_day: \"1\"}\n"},
		{"bad price", "vehicles:\n  - {type: car, brand: a, model: b, reg_number: c, price_per_day: cheap}\n"},
		{"negative price", "vehicles:\n  - {type: car, brand: a, model: b, reg_number: c, price_per_day: \"-1\"}\n"},
		{"reserved char", "vehicles:\n  - {type: car, brand: \"a|b\", model: b, reg_number: c, price_per_day: \"1\"}\n"},
		{"missing brand", "vehicles:\n  - {type: car, model: b, reg_number: c, price_per_day: \"1\"}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidSeed)
		})
	}
}

func TestLoad(t *testing.T) {
	repo := memory.NewVehicleRepository()
	res, err := Load(context.Background(), writeFile(t, catalog), repo)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 2}, res)

	cars, err := repo.ListAvailableByType(context.Background(), domain.VehicleCar)
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "KA01AB1234", cars[0].RegNumber)

	bikes, err := repo.ListAvailableByType(context.Background(), domain.VehicleBike)
	require.NoError(t, err)
	assert.Empty(t, bikes)

	bike, err := repo.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Activa", bike.Model)
}

func TestLoad_ErrorsAndDuplicates(t *testing.T) {
	repo := memory.NewVehicleRepository()

	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), repo)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(context.Background(), writeFile(t, "vehicles:\n  - {type: car}\n"), repo)
	assert.ErrorIs(t, err, ErrInvalidSeed)

	dup := catalog + `  - id: 1
    type: car
    brand: Fiat
    model: Uno
    reg_number: KA09ZZ0001
    price_per_day: "900"
`
	res, err := Load(context.Background(), writeFile(t, dup), repo)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 2, Skipped: 1}, res)

	res, err = Load(context.Background(), writeFile(t, catalog), repo)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 2}, res)
}

func TestLoad_SkipsDuplicateRegNumber(t *testing.T) {
	repo := memory.NewVehicleRepository()
	doc := `
vehicles:
  - {type: car, brand: Toyota, model: Corolla, reg_number: KA01AB1234, price_per_day: "1500"}
  - {type: car, brand: Toyota, model: Etios, reg_number: KA01AB1234, price_per_day: "1300"}
`
	res, err := Load(context.Background(), writeFile(t, doc), repo)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 1, Skipped: 1}, res)

	cars, err := repo.ListAvailableByType(context.Background(), domain.VehicleCar)
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "Corolla", cars[0].Model)
}
