// Package customer is the renter directory. Rentals keep their own snapshot
// of these fields at creation time, so edits here never rewrite past rentals.
package customer

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID        uuid.UUID      `db:"id"`
	OwnerID   string         `db:"owner_id"`
	Name      string         `db:"name"`
	Email     sql.NullString `db:"email"`
	Phone     sql.NullString `db:"phone"`
	Address   sql.NullString `db:"address"`
	Notes     sql.NullString `db:"notes"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// CustomerWithStats carries the rental count for listings. Rentals reference
// customers by snapshot name, not by key, so the count is a name match.
type CustomerWithStats struct {
	Customer
	RentalCount int `db:"rental_count"`
}
