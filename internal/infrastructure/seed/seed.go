// Package seed loads a vehicle catalog from a YAML file into a repository.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/99minutos/rental-system/internal/core/domain"
	"github.com/99minutos/rental-system/internal/core/ports"
)

var ErrInvalidSeed = errors.New("invalid seed file")

// File is the on-disk layout:
//
//	vehicles:
//	  - id: 1
//	    type: car
//	    brand: Toyota
//	    model: Corolla
//	    reg_number: KA01AB1234
//	    price_per_day: "1500.00"
//	    available: true
type File struct {
	Vehicles []Vehicle `yaml:"vehicles"`
}

// Vehicle is one seed entry. Price is a string so YAML never rounds it
// through a float.
type Vehicle struct {
	ID          int64  `yaml:"id"`
	Type        string `yaml:"type"`
	Brand       string `yaml:"brand"`
	Model       string `yaml:"model"`
	RegNumber   string `yaml:"reg_number"`
	PricePerDay string `yaml:"price_per_day"`
	Available   *bool  `yaml:"available"`
}

// Parse decodes and validates a seed document.
func Parse(data []byte) ([]domain.Vehicle, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	out := make([]domain.Vehicle, 0, len(f.Vehicles))
	for i, sv := range f.Vehicles {
		v, err := sv.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: vehicle #%d: %v", ErrInvalidSeed, i+1, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (sv Vehicle) toDomain() (domain.Vehicle, error) {
	if sv.ID < 0 {
		return domain.Vehicle{}, fmt.Errorf("id %d must not be negative", sv.ID)
	}
	t, err := domain.ParseVehicleType(sv.Type)
	if err != nil {
		return domain.Vehicle{}, err
	}
	price, err := decimal.NewFromString(sv.PricePerDay)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("price_per_day %q: %v", sv.PricePerDay, err)
	}

	available := true
	if sv.Available != nil {
		available = *sv.Available
	}

	v := domain.Vehicle{
		ID:          sv.ID,
		Type:        t,
		Brand:       sv.Brand,
		Model:       sv.Model,
		RegNumber:   sv.RegNumber,
		PricePerDay: price,
		Available:   available,
	}
	if err := v.Validate(); err != nil {
		return domain.Vehicle{}, err
	}
	return v, nil
}

// Result counts what Load did.
type Result struct {
	Created int
	Skipped int
}

// Load reads path and stores every vehicle through repo. The file is fully
// validated before anything is written. Vehicles whose ID or registration
// already exist are skipped, so reseeding a persistent store is a no-op.
func Load(ctx context.Context, path string, repo ports.VehicleRepository) (Result, error) {
	var res Result

	data, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("seed: %w", err)
	}
	vehicles, err := Parse(data)
	if err != nil {
		return res, fmt.Errorf("seed %s: %w", path, err)
	}

	for i := range vehicles {
		_, err := repo.Create(ctx, &vehicles[i])
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, domain.ErrInvalidVehicle):
			res.Skipped++
		default:
			return res, fmt.Errorf("seed %s: create %s: %w", path, vehicles[i].RegNumber, err)
		}
	}
	return res, nil
}
