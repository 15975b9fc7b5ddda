package driver

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("driver not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, d *Driver) error {
	return r.db.GetContext(ctx, d, createDriverQuery,
		d.ID, d.OwnerID, d.FirstName, d.LastName, d.LicenseNumber, d.LicenseExpiry,
		d.ContactNumber, d.Email, d.Status)
}

const createDriverQuery = `
INSERT INTO drivers (id, owner_id, first_name, last_name, license_number, license_expiry,
                     contact_number, email, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
RETURNING *
`

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, ownerID string) (Driver, error) {
	var d Driver
	err := r.db.GetContext(ctx, &d, getDriverQuery, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return Driver{}, ErrNotFound
	}
	return d, err
}

const getDriverQuery = `SELECT * FROM drivers WHERE id = $1 AND owner_id = $2`

func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]Driver, error) {
	var drivers []Driver
	err := r.db.SelectContext(ctx, &drivers, listDriversQuery, ownerID)
	return drivers, err
}

const listDriversQuery = `SELECT * FROM drivers WHERE owner_id = $1 ORDER BY last_name, first_name`

func (r *Repository) Update(ctx context.Context, d *Driver) error {
	err := r.db.GetContext(ctx, d, updateDriverQuery,
		d.ID, d.OwnerID, d.FirstName, d.LastName, d.LicenseNumber, d.LicenseExpiry,
		d.ContactNumber, d.Email, d.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const updateDriverQuery = `
UPDATE drivers
SET first_name = $3, last_name = $4, license_number = $5, license_expiry = $6,
    contact_number = $7, email = $8, status = $9, updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING *
`

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, ownerID string, status Status) error {
	res, err := r.db.ExecContext(ctx, updateDriverStatusQuery, id, ownerID, status)
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

const updateDriverStatusQuery = `
UPDATE drivers SET status = $3, updated_at = now() WHERE id = $1 AND owner_id = $2
`

func (r *Repository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	res, err := r.db.ExecContext(ctx, deleteDriverQuery, id, ownerID)
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

const deleteDriverQuery = `DELETE FROM drivers WHERE id = $1 AND owner_id = $2`
