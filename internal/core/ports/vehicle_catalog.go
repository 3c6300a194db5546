package ports

import (
	"context"

	"github.com/99minutos/rental-system/internal/core/domain"
)

// VehicleCatalog is the read-only inventory capability used by sessions.
// The returned slice never contains unavailable vehicles.
type VehicleCatalog interface {
	ListAvailable(ctx context.Context, t domain.VehicleType) ([]domain.Vehicle, error)
}
