package maintenance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound      = errors.New("maintenance record not found")
	ErrInvalidStatus = errors.New("invalid maintenance status")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, rec *Record) error {
	return r.db.GetContext(ctx, rec, createRecordQuery,
		rec.ID, rec.OwnerID, rec.VehicleID, rec.ServiceType, rec.Description,
		rec.DatePerformed, rec.NextDueDate, rec.CostCents, rec.Status.String(),
		rec.ServiceProvider, rec.Notes)
}

const createRecordQuery = `
INSERT INTO maintenance_records (id, owner_id, vehicle_id, service_type, description,
                                 date_performed, next_due_date, cost_cents, status,
                                 service_provider, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
RETURNING *
`

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, ownerID string) (RecordWithVehicle, error) {
	var rec RecordWithVehicle
	err := r.db.GetContext(ctx, &rec, getRecordQuery, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return RecordWithVehicle{}, ErrNotFound
	}
	return rec, err
}

const getRecordQuery = `
SELECT m.*, v.make || ' ' || v.model || ' - ' || v.license_plate AS vehicle_info
FROM maintenance_records m
JOIN vehicles v ON m.vehicle_id = v.id
WHERE m.id = $1 AND m.owner_id = $2
`

func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]RecordWithVehicle, error) {
	var records []RecordWithVehicle
	err := r.db.SelectContext(ctx, &records, listRecordsQuery, ownerID)
	return records, err
}

const listRecordsQuery = `
SELECT m.*, v.make || ' ' || v.model || ' - ' || v.license_plate AS vehicle_info
FROM maintenance_records m
JOIN vehicles v ON m.vehicle_id = v.id
WHERE m.owner_id = $1
ORDER BY m.next_due_date ASC
`

func (r *Repository) ListByVehicle(ctx context.Context, vehicleID uuid.UUID, ownerID string) ([]Record, error) {
	var records []Record
	err := r.db.SelectContext(ctx, &records, listByVehicleQuery, vehicleID, ownerID)
	return records, err
}

const listByVehicleQuery = `
SELECT * FROM maintenance_records
WHERE vehicle_id = $1 AND owner_id = $2
ORDER BY next_due_date ASC
`

func (r *Repository) Update(ctx context.Context, rec *Record) error {
	err := r.db.GetContext(ctx, rec, updateRecordQuery,
		rec.ID, rec.OwnerID, rec.VehicleID, rec.ServiceType, rec.Description,
		rec.DatePerformed, rec.NextDueDate, rec.CostCents, rec.Status.String(),
		rec.ServiceProvider, rec.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const updateRecordQuery = `
UPDATE maintenance_records
SET vehicle_id = $3, service_type = $4, description = $5, date_performed = $6,
    next_due_date = $7, cost_cents = $8, status = $9, service_provider = $10,
    notes = $11, updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING *
`

// MarkCompleted sets the record completed with today as the performed date.
func (r *Repository) MarkCompleted(ctx context.Context, id uuid.UUID, ownerID string) (Record, error) {
	var rec Record
	err := r.db.GetContext(ctx, &rec, markCompletedQuery, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

const markCompletedQuery = `
UPDATE maintenance_records
SET status = 'completed', date_performed = now(), updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING *
`

// SweepOverdue flips scheduled records past their due date to overdue and
// returns how many were flipped.
func (r *Repository) SweepOverdue(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, sweepOverdueQuery, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const sweepOverdueQuery = `
UPDATE maintenance_records
SET status = 'overdue', updated_at = now()
WHERE owner_id = $1 AND status = 'scheduled' AND next_due_date < now()
`

func (r *Repository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	res, err := r.db.ExecContext(ctx, deleteRecordQuery, id, ownerID)
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

const deleteRecordQuery = `DELETE FROM maintenance_records WHERE id = $1 AND owner_id = $2`
