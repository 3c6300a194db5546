package service

import (
	"context"
	"fmt"

	"github.com/99minutos/rental-system/internal/core/domain"
	"github.com/99minutos/rental-system/internal/core/ports"
)

// VehicleCatalog implements ports.VehicleCatalog over a VehicleRepository.
type VehicleCatalog struct {
	repo ports.VehicleRepository
}

func NewVehicleCatalog(repo ports.VehicleRepository) *VehicleCatalog {
	return &VehicleCatalog{repo: repo}
}

// ListAvailable returns the available vehicles of type t. Anything the
// backend returns with Available=false is dropped.
func (c *VehicleCatalog) ListAvailable(ctx context.Context, t domain.VehicleType) ([]domain.Vehicle, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("list vehicles: %w: %q", domain.ErrInvalidVehicleType, t)
	}

	vehicles, err := c.repo.ListAvailableByType(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}

	out := make([]domain.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v.Available && v.Type == t {
			out = append(out, v)
		}
	}
	return out, nil
}
