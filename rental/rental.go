package rental

import (
	"database/sql"
	"math"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s is an end state. Note that UpdateStatus still
// permits leaving a terminal state; this only classifies it.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Rental is a date-ranged booking of a vehicle. The customer fields are a
// denormalized snapshot taken at creation time, not a reference into the
// customers table, so later edits to a customer never rewrite past rentals.
type Rental struct {
	ID             uuid.UUID      `db:"id"`
	VehicleID      uuid.UUID      `db:"vehicle_id"`
	OwnerID        string         `db:"owner_id"`
	CustomerName   string         `db:"customer_name"`
	CustomerEmail  sql.NullString `db:"customer_email"`
	CustomerPhone  sql.NullString `db:"customer_phone"`
	StartDate      time.Time      `db:"start_date"`
	EndDate        time.Time      `db:"end_date"`
	DailyRateCents int64          `db:"daily_rate_cents"`
	TotalCostCents int64          `db:"total_cost_cents"`
	Status         Status         `db:"status"`
	Notes          sql.NullString `db:"notes"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// RentalWithVehicle carries the joined vehicle display string for listings.
type RentalWithVehicle struct {
	Rental
	VehicleInfo string `db:"vehicle_info"`
}

// PlannedDays is the billing duration used at creation and edit time:
// the ceiling of the elapsed time between start and end in whole days.
// A same-day rental yields 0 days under this rule.
func PlannedDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// InclusiveDays is the billing duration used at completion time: both dates
// are truncated to calendar days and the first day counts, so a same-day
// return is 1 day. This deliberately disagrees with PlannedDays for the same
// range; both rules come from the billing behavior this service replaces and
// must not be unified.
func InclusiveDays(start, actualEnd time.Time) int {
	s := dateOnly(start)
	e := dateOnly(actualEnd)
	return int(e.Sub(s).Hours()/24) + 1
}

// dateOnly anchors a wall-clock calendar day in UTC so two dates carried in
// different locations still difference within a single frame.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Cost multiplies a daily rate in cents by a day count.
func Cost(rateCents int64, days int) int64 {
	return rateCents * int64(days)
}

// Overlaps tests two closed date intervals. Touching boundaries conflict:
// a rental ending on day N overlaps one starting on day N.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}
