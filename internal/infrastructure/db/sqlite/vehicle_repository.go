package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/99minutos/rental-system/internal/core/domain"
	"github.com/99minutos/rental-system/internal/core/ports"
)

var _ ports.VehicleRepository = (*VehicleRepository)(nil)

type VehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

const vehicleColumns = `id, type, brand, model, reg_number, price_per_day, available`

type scanner interface {
	Scan(dest ...any) error
}

func (r *VehicleRepository) ListAvailableByType(ctx context.Context, t domain.VehicleType) ([]domain.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE type = ? AND available = TRUE ORDER BY id`, string(t))
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return out, nil
}

func (r *VehicleRepository) FindByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	v, err := scanVehicle(r.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVehicleNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *VehicleRepository) SetAvailability(ctx context.Context, id int64, available bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE vehicles SET available = ? WHERE id = ?`, available, id)
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	if n == 0 {
		return domain.ErrVehicleNotFound
	}
	return nil
}

// Create inserts v; a zero ID lets AUTOINCREMENT assign one.
func (r *VehicleRepository) Create(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	var id any
	if v.ID != 0 {
		id = v.ID
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO vehicles (`+vehicleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, string(v.Type), v.Brand, v.Model, v.RegNumber, v.PricePerDay.String(), v.Available,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: id %d or reg_number %q already exists", domain.ErrInvalidVehicle, v.ID, v.RegNumber)
		}
		return nil, fmt.Errorf("insert vehicle: %w", err)
	}

	stored := *v
	if stored.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("vehicle id: %w", err)
	}
	return &stored, nil
}

func scanVehicle(row scanner) (domain.Vehicle, error) {
	var (
		v     domain.Vehicle
		t     string
		price string
	)
	if err := row.Scan(&v.ID, &t, &v.Brand, &v.Model, &v.RegNumber, &price, &v.Available); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return v, err
		}
		return v, fmt.Errorf("scan vehicle: %w", err)
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return v, fmt.Errorf("vehicle %d price %q: %w", v.ID, price, err)
	}
	v.Type = domain.VehicleType(t)
	v.PricePerDay = d
	return v, nil
}
