package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVehicleType(t *testing.T) {
	for _, in := range []string{"CAR", "car", "Car", " car "} {
		got, err := ParseVehicleType(in)
		require.NoError(t, err, in)
		assert.Equal(t, VehicleCar, got)
	}

	got, err := ParseVehicleType("bike")
	require.NoError(t, err)
	assert.Equal(t, VehicleBike, got)

	_, err = ParseVehicleType("TRUCK")
	assert.ErrorIs(t, err, ErrInvalidVehicleType)

	_, err = ParseVehicleType("")
	assert.ErrorIs(t, err, ErrInvalidVehicleType)
}

func validVehicle() Vehicle {
	return Vehicle{
		Type:        VehicleCar,
		Brand:       "Toyota",
		Model:       "Corolla",
		RegNumber:   "KA01AB1234",
		PricePerDay: decimal.RequireFromString("1500.00"),
		Available:   true,
	}
}

func TestVehicle_Validate(t *testing.T) {
	require.NoError(t, validVehicle().Validate())

	cases := map[string]func(v *Vehicle){
		"bad type":       func(v *Vehicle) { v.Type = "TRUCK" },
		"empty brand":    func(v *Vehicle) { v.Brand = " " },
		"comma in model": func(v *Vehicle) { v.Model = "Corolla, LE" },
		"pipe in reg":    func(v *Vehicle) { v.RegNumber = "KA|01" },
		"newline":        func(v *Vehicle) { v.Brand = "Toy\nota" },
		"negative price": func(v *Vehicle) { v.PricePerDay = decimal.NewFromInt(-1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			v := validVehicle()
			mutate(&v)
			assert.ErrorIs(t, v.Validate(), ErrInvalidVehicle)
		})
	}
}

func TestVehicle_Validate_ZeroPriceAllowed(t *testing.T) {
	v := validVehicle()
	v.PricePerDay = decimal.Zero
	assert.NoError(t, v.Validate())
}
