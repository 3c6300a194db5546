package ports

import (
	"context"

	"github.com/99minutos/rental-system/internal/core/domain"
)

// VehicleRepository defines persistence operations for the vehicle fleet.
type VehicleRepository interface {
	// ListAvailableByType returns available vehicles of type t ordered by ID.
	ListAvailableByType(ctx context.Context, t domain.VehicleType) ([]domain.Vehicle, error)
	FindByID(ctx context.Context, id int64) (*domain.Vehicle, error)
	// SetAvailability returns domain.ErrVehicleNotFound for an unknown id.
	SetAvailability(ctx context.Context, id int64, available bool) error
	// Create assigns the ID of v and returns the stored copy.
	Create(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error)
}
