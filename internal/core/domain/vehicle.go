package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// VehicleType is the rentable category of a vehicle.
type VehicleType string

const (
	VehicleCar  VehicleType = "CAR"
	VehicleBike VehicleType = "BIKE"
)

var (
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrInvalidVehicleType = errors.New("invalid vehicle type")
	ErrInvalidVehicle     = errors.New("invalid vehicle")
)

// reservedChars may not appear in any vehicle text field: they delimit the
// wire protocol's fields, vehicle segments and lines.
const reservedChars = "|,\r\n"

// ParseVehicleType upper-cases s and checks it names a known type.
func ParseVehicleType(s string) (VehicleType, error) {
	t := VehicleType(cases.Upper(language.Und).String(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidVehicleType, s)
	}
	return t, nil
}

// Valid reports whether t is CAR or BIKE.
func (t VehicleType) Valid() bool {
	return t == VehicleCar || t == VehicleBike
}

// Vehicle is a catalog record. Price is kept as a fixed-point decimal so the
// wire format never depends on float rounding or locale.
type Vehicle struct {
	ID          int64           `json:"id"`
	Type        VehicleType     `json:"type"`
	Brand       string          `json:"brand"`
	Model       string          `json:"model"`
	RegNumber   string          `json:"reg_number"`
	PricePerDay decimal.Decimal `json:"price_per_day"`
	Available   bool            `json:"available"`
}

// Validate checks the invariants every stored vehicle must satisfy.
func (v Vehicle) Validate() error {
	if !v.Type.Valid() {
		return fmt.Errorf("%w: type %q", ErrInvalidVehicle, v.Type)
	}
	fields := map[string]string{
		"brand":      v.Brand,
		"model":      v.Model,
		"reg_number": v.RegNumber,
	}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidVehicle, name)
		}
		if strings.ContainsAny(value, reservedChars) {
			return fmt.Errorf("%w: %s contains a reserved character", ErrInvalidVehicle, name)
		}
	}
	if v.PricePerDay.IsNegative() {
		return fmt.Errorf("%w: price_per_day must not be negative", ErrInvalidVehicle)
	}
	return nil
}
