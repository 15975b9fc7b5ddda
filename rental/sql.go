package rental

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound = errors.New("rental not found")
	ErrOverlap  = errors.New("rental overlaps with an existing active rental")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CheckAvailability reports whether vehicleID is free of active rentals
// overlapping [start, end] for the given owner. excludeID, when set, removes
// one rental from consideration (re-validating a rental against itself).
// Callers must treat an error as "unavailable".
func (r *Repository) CheckAvailability(ctx context.Context, ownerID string, vehicleID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	var overlapping []uuid.UUID
	var err error
	if excludeID != nil {
		err = r.db.SelectContext(ctx, &overlapping, checkOverlapExcludingQuery, vehicleID, ownerID, start, end, *excludeID)
	} else {
		err = r.db.SelectContext(ctx, &overlapping, checkOverlapQuery, vehicleID, ownerID, start, end)
	}
	if err != nil {
		return false, err
	}
	return len(overlapping) == 0, nil
}

// Closed-interval overlap: start_date <= candidate end AND end_date >= candidate start.
const checkOverlapQuery = `
SELECT id FROM rentals
WHERE vehicle_id = $1
  AND owner_id = $2
  AND status = 'active'
  AND start_date <= $4
  AND end_date >= $3
`

const checkOverlapExcludingQuery = `
SELECT id FROM rentals
WHERE vehicle_id = $1
  AND owner_id = $2
  AND status = 'active'
  AND start_date <= $4
  AND end_date >= $3
  AND id != $5
`

// Create computes the planned cost and inserts the rental as active. The
// overlap check and the insert run in one serializable transaction so two
// concurrent creates for the same vehicle and window cannot both land.
func (r *Repository) Create(ctx context.Context, rental *Rental) error {
	rental.TotalCostCents = Cost(rental.DailyRateCents, PlannedDays(rental.StartDate, rental.EndDate))
	rental.Status = StatusActive

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var overlapping []uuid.UUID
	err = tx.SelectContext(ctx, &overlapping, checkOverlapQuery, rental.VehicleID, rental.OwnerID, rental.StartDate, rental.EndDate)
	if err != nil {
		return err
	}
	if len(overlapping) > 0 {
		return ErrOverlap
	}

	err = tx.GetContext(ctx, rental, createRentalQuery,
		rental.ID, rental.VehicleID, rental.OwnerID,
		rental.CustomerName, rental.CustomerEmail, rental.CustomerPhone,
		rental.StartDate, rental.EndDate,
		rental.DailyRateCents, rental.TotalCostCents, rental.Notes)
	if err != nil {
		return err
	}

	return tx.Commit()
}

const createRentalQuery = `
INSERT INTO rentals (id, vehicle_id, owner_id, customer_name, customer_email, customer_phone,
                     start_date, end_date, daily_rate_cents, total_cost_cents, status, notes,
                     created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'active', $11, now(), now())
RETURNING *
`

// GetByID fetches a single rental with its vehicle display string. A rental
// owned by someone else is indistinguishable from a missing one.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, ownerID string) (RentalWithVehicle, error) {
	var rw RentalWithVehicle
	err := r.db.GetContext(ctx, &rw, getByIDQuery, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return RentalWithVehicle{}, ErrNotFound
	}
	return rw, err
}

const getByIDQuery = `
SELECT r.*, v.make || ' ' || v.model || ' (' || v.year || ') - ' || v.license_plate AS vehicle_info
FROM rentals r
JOIN vehicles v ON r.vehicle_id = v.id
WHERE r.id = $1 AND r.owner_id = $2
`

// ListByOwner fetches all of an owner's rentals, newest first, optionally
// filtered by status.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string, status *Status) ([]RentalWithVehicle, error) {
	var rentals []RentalWithVehicle
	var err error
	if status != nil {
		err = r.db.SelectContext(ctx, &rentals, listByOwnerWithStatusQuery, ownerID, *status)
	} else {
		err = r.db.SelectContext(ctx, &rentals, listByOwnerQuery, ownerID)
	}
	return rentals, err
}

const listByOwnerQuery = `
SELECT r.*, v.make || ' ' || v.model || ' (' || v.year || ') - ' || v.license_plate AS vehicle_info
FROM rentals r
JOIN vehicles v ON r.vehicle_id = v.id
WHERE r.owner_id = $1
ORDER BY r.created_at DESC
`

const listByOwnerWithStatusQuery = `
SELECT r.*, v.make || ' ' || v.model || ' (' || v.year || ') - ' || v.license_plate AS vehicle_info
FROM rentals r
JOIN vehicles v ON r.vehicle_id = v.id
WHERE r.owner_id = $1 AND r.status = $2
ORDER BY r.created_at DESC
`

// ListActiveForVehicle fetches the active rentals for one vehicle.
func (r *Repository) ListActiveForVehicle(ctx context.Context, ownerID string, vehicleID uuid.UUID) ([]Rental, error) {
	var rentals []Rental
	err := r.db.SelectContext(ctx, &rentals, listActiveForVehicleQuery, vehicleID, ownerID)
	return rentals, err
}

const listActiveForVehicleQuery = `
SELECT * FROM rentals
WHERE vehicle_id = $1 AND owner_id = $2 AND status = 'active'
ORDER BY start_date ASC
`

// CompleteOptions carries the optional inputs to Complete.
type CompleteOptions struct {
	// ActualEndDate defaults to today when nil.
	ActualEndDate *time.Time
	// Notes overwrites the rental's notes when non-empty; empty leaves them alone.
	Notes string
}

// Complete marks a rental completed and recomputes its cost from the actual
// return date using the inclusive day count (a same-day return bills one
// day). The daily rate is read from the stored row. Completing an already
// completed rental is not rejected: the recomputation simply runs again from
// the rewritten row. Returns the updated rental and the billed day count.
func (r *Repository) Complete(ctx context.Context, id uuid.UUID, ownerID string, opts CompleteOptions) (Rental, int, error) {
	actualEnd := time.Now()
	if opts.ActualEndDate != nil {
		actualEnd = *opts.ActualEndDate
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Rental{}, 0, err
	}
	defer tx.Rollback()

	var cur Rental
	err = tx.GetContext(ctx, &cur, getForUpdateQuery, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return Rental{}, 0, ErrNotFound
	}
	if err != nil {
		return Rental{}, 0, err
	}

	days := InclusiveDays(cur.StartDate, actualEnd)
	total := Cost(cur.DailyRateCents, days)

	var updated Rental
	if opts.Notes != "" {
		err = tx.GetContext(ctx, &updated, completeWithNotesQuery, id, ownerID, actualEnd, total, opts.Notes)
	} else {
		err = tx.GetContext(ctx, &updated, completeQuery, id, ownerID, actualEnd, total)
	}
	if err != nil {
		return Rental{}, 0, err
	}

	return updated, days, tx.Commit()
}

const getForUpdateQuery = `SELECT * FROM rentals WHERE id = $1 AND owner_id = $2 FOR UPDATE`

const completeQuery = `
UPDATE rentals
SET end_date = $3, total_cost_cents = $4, status = 'completed', updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING *
`

const completeWithNotesQuery = `
UPDATE rentals
SET end_date = $3, total_cost_cents = $4, status = 'completed', notes = $5, updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING *
`

// UpdateParams is a full-row edit of the mutable rental fields.
type UpdateParams struct {
	StartDate      time.Time
	EndDate        time.Time
	DailyRateCents int64
	Notes          string
	Status         Status
}

// Update rewrites a rental's dates, rate, notes and status, recomputing the
// cost with the planned (ceiling) rule. Setting status to completed on a
// not-yet-completed rental is delegated to Complete with the supplied end
// date, so the inclusive billing rule applies there instead. Date edits are
// not re-checked for overlaps; an edit can move a rental onto a window held
// by another active rental.
//
// The returned day count is non-zero only when the edit was delegated to
// Complete.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, ownerID string, p UpdateParams) (Rental, int, error) {
	var cur Rental
	err := r.db.GetContext(ctx, &cur, getPlainQuery, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return Rental{}, 0, ErrNotFound
	}
	if err != nil {
		return Rental{}, 0, err
	}

	if p.Status == StatusCompleted && cur.Status != StatusCompleted {
		end := p.EndDate
		return r.Complete(ctx, id, ownerID, CompleteOptions{ActualEndDate: &end, Notes: p.Notes})
	}

	total := Cost(p.DailyRateCents, PlannedDays(p.StartDate, p.EndDate))

	var updated Rental
	err = r.db.GetContext(ctx, &updated, updateRentalQuery,
		id, ownerID, p.StartDate, p.EndDate, p.DailyRateCents, total, p.Status, p.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return Rental{}, 0, ErrNotFound
	}
	return updated, 0, err
}

const getPlainQuery = `SELECT * FROM rentals WHERE id = $1 AND owner_id = $2`

const updateRentalQuery = `
UPDATE rentals
SET start_date = $3, end_date = $4, daily_rate_cents = $5, total_cost_cents = $6,
    status = $7, notes = $8, updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING *
`

// UpdateStatus sets any of the three statuses unconditionally, including
// moving a rental back out of a terminal state.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, ownerID string, status Status) error {
	res, err := r.db.ExecContext(ctx, updateStatusQuery, id, ownerID, status)
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

const updateStatusQuery = `
UPDATE rentals SET status = $3, updated_at = now() WHERE id = $1 AND owner_id = $2
`

// Delete removes a rental. Ownership is the only gate.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	res, err := r.db.ExecContext(ctx, deleteRentalQuery, id, ownerID)
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

const deleteRentalQuery = `DELETE FROM rentals WHERE id = $1 AND owner_id = $2`

// DeleteByCustomerName removes all of an owner's rentals holding the given
// customer snapshot name. Used when a customer record is purged.
func (r *Repository) DeleteByCustomerName(ctx context.Context, ownerID, customerName string) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteByCustomerNameQuery, ownerID, customerName)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteByCustomerNameQuery = `DELETE FROM rentals WHERE owner_id = $1 AND customer_name = $2`
