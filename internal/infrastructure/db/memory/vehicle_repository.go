package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/99minutos/rental-system/internal/core/domain"
)

// VehicleRepository keeps the fleet in a map keyed by ID. Registration
// numbers are unique, like the UNIQUE column of the SQL backends.
type VehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[int64]domain.Vehicle
	regs     map[string]int64
	nextID   int64
}

func NewVehicleRepository() *VehicleRepository {
	return &VehicleRepository{
		vehicles: make(map[int64]domain.Vehicle),
		regs:     make(map[string]int64),
	}
}

func (r *VehicleRepository) ListAvailableByType(_ context.Context, t domain.VehicleType) ([]domain.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Vehicle, 0)
	for _, v := range r.vehicles {
		if v.Type == t && v.Available {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *VehicleRepository) FindByID(_ context.Context, id int64) (*domain.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.vehicles[id]
	if !ok {
		return nil, domain.ErrVehicleNotFound
	}
	return &v, nil
}

func (r *VehicleRepository) SetAvailability(_ context.Context, id int64, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.vehicles[id]
	if !ok {
		return domain.ErrVehicleNotFound
	}
	v.Available = available
	r.vehicles[id] = v
	return nil
}

// Create stores v. A caller-supplied ID is kept, which lets seed files pin
// identifiers; otherwise the next free ID is assigned.
func (r *VehicleRepository) Create(_ context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.regs[v.RegNumber]; ok {
		return nil, fmt.Errorf("%w: reg_number %q already exists", domain.ErrInvalidVehicle, v.RegNumber)
	}

	stored := *v
	if stored.ID == 0 {
		r.nextID++
		stored.ID = r.nextID
	} else if _, ok := r.vehicles[stored.ID]; ok {
		return nil, fmt.Errorf("%w: id %d already exists", domain.ErrInvalidVehicle, stored.ID)
	}
	if stored.ID > r.nextID {
		r.nextID = stored.ID
	}
	r.vehicles[stored.ID] = stored
	r.regs[stored.RegNumber] = stored.ID
	return &stored, nil
}
