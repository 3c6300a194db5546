package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/99minutos/rental-system/internal/core/domain"
	"github.com/99minutos/rental-system/internal/core/ports"
)

var _ ports.VehicleRepository = (*VehicleRepo)(nil)

type VehicleRepo struct {
	pool *pgxpool.Pool
}

func NewVehicleRepository(pool *pgxpool.Pool) *VehicleRepo {
	return &VehicleRepo{pool: pool}
}

const vehicleColumns = `id, type, brand, model, reg_number, price_per_day, available`

func (r *VehicleRepo) ListAvailableByType(ctx context.Context, t domain.VehicleType) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles
		WHERE type = $1 AND available = TRUE
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, string(t))
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return out, nil
}

func (r *VehicleRepo) FindByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	v, err := scanVehicle(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVehicleNotFound
		}
		return nil, fmt.Errorf("find vehicle: %w", err)
	}
	return &v, nil
}

func (r *VehicleRepo) SetAvailability(ctx context.Context, id int64, available bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE vehicles SET available = $2 WHERE id = $1`, id, available)
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVehicleNotFound
	}
	return nil
}

// Create inserts v. A pinned ID is inserted as is and the serial sequence is
// moved past it.
func (r *VehicleRepo) Create(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	stored := *v
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if v.ID == 0 {
			return tx.QueryRow(ctx, `
				INSERT INTO vehicles (type, brand, model, reg_number, price_per_day, available)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id`,
				string(v.Type), v.Brand, v.Model, v.RegNumber, v.PricePerDay, v.Available,
			).Scan(&stored.ID)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO vehicles (id, type, brand, model, reg_number, price_per_day, available)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			v.ID, string(v.Type), v.Brand, v.Model, v.RegNumber, v.PricePerDay, v.Available,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			SELECT setval(pg_get_serial_sequence('vehicles', 'id'), GREATEST((SELECT MAX(id) FROM vehicles), 1))`)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: id %d or reg_number %q already exists", domain.ErrInvalidVehicle, v.ID, v.RegNumber)
		}
		return nil, fmt.Errorf("insert vehicle: %w", err)
	}
	return &stored, nil
}

func scanVehicle(row pgx.Row) (domain.Vehicle, error) {
	var (
		v domain.Vehicle
		t string
	)
	err := row.Scan(&v.ID, &t, &v.Brand, &v.Model, &v.RegNumber, &v.PricePerDay, &v.Available)
	v.Type = domain.VehicleType(t)
	return v, err
}
