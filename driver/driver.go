package driver

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

type Driver struct {
	ID            uuid.UUID      `db:"id"`
	OwnerID       string         `db:"owner_id"`
	FirstName     string         `db:"first_name"`
	LastName      string         `db:"last_name"`
	LicenseNumber string         `db:"license_number"`
	LicenseExpiry time.Time      `db:"license_expiry"`
	ContactNumber sql.NullString `db:"contact_number"`
	Email         sql.NullString `db:"email"`
	Status        Status         `db:"status"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}
