// Package vehicle holds the fleet inventory that rentals are booked against.
package vehicle

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Vehicle struct {
	ID           uuid.UUID `db:"id"`
	OwnerID      string    `db:"owner_id"`
	Make         string    `db:"make"`
	Model        string    `db:"model"`
	Year         int       `db:"year"`
	LicensePlate string    `db:"license_plate"`

	// Location is the last known position reported for the vehicle.
	Location pgtype.Point `db:"location"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// VehicleWithRentalInfo decorates a vehicle with its current rental state for
// fleet listings.
type VehicleWithRentalInfo struct {
	Vehicle
	ActiveRentals int            `db:"active_rentals"`
	RentedTo      sql.NullString `db:"rented_to"`
	ReturnDate    sql.NullTime   `db:"return_date"`
}
