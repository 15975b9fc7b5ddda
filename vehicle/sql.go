package vehicle

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound = errors.New("vehicle not found")
	// ErrCurrentlyRented guards deletion: a vehicle with an active rental
	// cannot be removed until the rental is ended.
	ErrCurrentlyRented = errors.New("vehicle is currently rented")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, v *Vehicle) error {
	return r.db.GetContext(ctx, v, createVehicleQuery,
		v.ID, v.OwnerID, v.Make, v.Model, v.Year, v.LicensePlate)
}

const createVehicleQuery = `
INSERT INTO vehicles (id, owner_id, make, model, year, license_plate, location, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, point(0, 0), now(), now())
RETURNING *
`

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, ownerID string) (Vehicle, error) {
	var v Vehicle
	err := r.db.GetContext(ctx, &v, getVehicleQuery, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return Vehicle{}, ErrNotFound
	}
	return v, err
}

const getVehicleQuery = `SELECT * FROM vehicles WHERE id = $1 AND owner_id = $2`

// ListByOwner fetches the owner's fleet with active rental counts and, when
// rented, the renter snapshot name and planned return date.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]VehicleWithRentalInfo, error) {
	var vehicles []VehicleWithRentalInfo
	err := r.db.SelectContext(ctx, &vehicles, listVehiclesQuery, ownerID)
	return vehicles, err
}

const listVehiclesQuery = `
SELECT v.*,
       COUNT(r.id) FILTER (WHERE r.status = 'active') AS active_rentals,
       MAX(r.customer_name) FILTER (WHERE r.status = 'active') AS rented_to,
       MAX(r.end_date) FILTER (WHERE r.status = 'active') AS return_date
FROM vehicles v
LEFT JOIN rentals r ON r.vehicle_id = v.id AND r.owner_id = v.owner_id
WHERE v.owner_id = $1
GROUP BY v.id
ORDER BY v.make, v.model
`

func (r *Repository) Update(ctx context.Context, v *Vehicle) error {
	err := r.db.GetContext(ctx, v, updateVehicleQuery,
		v.ID, v.OwnerID, v.Make, v.Model, v.Year, v.LicensePlate)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const updateVehicleQuery = `
UPDATE vehicles
SET make = $3, model = $4, year = $5, license_plate = $6, updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING *
`

// UpdateLocation records a reported position for the vehicle.
func (r *Repository) UpdateLocation(ctx context.Context, id uuid.UUID, ownerID string, lat, lng float64) error {
	res, err := r.db.ExecContext(ctx, updateLocationQuery, id, ownerID, lat, lng)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const updateLocationQuery = `
UPDATE vehicles SET location = point($3, $4), updated_at = now() WHERE id = $1 AND owner_id = $2
`

// Delete removes a vehicle together with its maintenance history and
// non-active rentals. Deletion is refused while an active rental exists.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists uuid.UUID
	err = tx.GetContext(ctx, &exists, getVehicleIDForUpdateQuery, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var activeRentals []uuid.UUID
	err = tx.SelectContext(ctx, &activeRentals, getActiveRentalIDsQuery, id, ownerID)
	if err != nil {
		return err
	}
	if len(activeRentals) > 0 {
		return ErrCurrentlyRented
	}

	if _, err = tx.ExecContext(ctx, deleteVehicleMaintenanceQuery, id, ownerID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, deleteVehicleRentalsQuery, id, ownerID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, deleteVehicleQuery, id, ownerID); err != nil {
		return err
	}

	return tx.Commit()
}

const getVehicleIDForUpdateQuery = `SELECT id FROM vehicles WHERE id = $1 AND owner_id = $2 FOR UPDATE`

const getActiveRentalIDsQuery = `
SELECT id FROM rentals WHERE vehicle_id = $1 AND owner_id = $2 AND status = 'active'
`

const deleteVehicleMaintenanceQuery = `DELETE FROM maintenance_records WHERE vehicle_id = $1 AND owner_id = $2`
const deleteVehicleRentalsQuery = `DELETE FROM rentals WHERE vehicle_id = $1 AND owner_id = $2`
const deleteVehicleQuery = `DELETE FROM vehicles WHERE id = $1 AND owner_id = $2`

// Transfer moves a vehicle and its dependent records to another owner.
func (r *Repository) Transfer(ctx context.Context, id uuid.UUID, fromOwnerID, toOwnerID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, transferVehicleQuery, id, fromOwnerID, toOwnerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	if _, err = tx.ExecContext(ctx, transferRentalsQuery, id, fromOwnerID, toOwnerID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, transferMaintenanceQuery, id, fromOwnerID, toOwnerID); err != nil {
		return err
	}

	return tx.Commit()
}

const transferVehicleQuery = `
UPDATE vehicles SET owner_id = $3, updated_at = now() WHERE id = $1 AND owner_id = $2
`
const transferRentalsQuery = `
UPDATE rentals SET owner_id = $3, updated_at = now() WHERE vehicle_id = $1 AND owner_id = $2
`
const transferMaintenanceQuery = `
UPDATE maintenance_records SET owner_id = $3, updated_at = now() WHERE vehicle_id = $1 AND owner_id = $2
`
