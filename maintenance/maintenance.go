package maintenance

import (
	"database/sql"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type Status int

const (
	Scheduled Status = iota
	Completed
	Overdue
)

func (s Status) String() string {
	return [...]string{"scheduled", "completed", "overdue"}[s]
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	return s.Scan(str)
}

func (s *Status) Scan(i any) error {
	switch v := i.(type) {
	case string:
		return s.scanString(v)
	case []byte:
		return s.scanString(string(v))
	}
	return ErrInvalidStatus
}

func (s *Status) scanString(v string) error {
	switch v {
	case "scheduled":
		*s = Scheduled
	case "completed":
		*s = Completed
	case "overdue":
		*s = Overdue
	default:
		return ErrInvalidStatus
	}
	return nil
}

type Record struct {
	ID              uuid.UUID      `db:"id"`
	OwnerID         string         `db:"owner_id"`
	VehicleID       uuid.UUID      `db:"vehicle_id"`
	ServiceType     string         `db:"service_type"`
	Description     sql.NullString `db:"description"`
	DatePerformed   sql.NullTime   `db:"date_performed"`
	NextDueDate     time.Time      `db:"next_due_date"`
	CostCents       int64          `db:"cost_cents"`
	Status          Status         `db:"status"`
	ServiceProvider sql.NullString `db:"service_provider"`
	Notes           sql.NullString `db:"notes"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// RecordWithVehicle carries the vehicle display string for listings.
type RecordWithVehicle struct {
	Record
	VehicleInfo string `db:"vehicle_info"`
}
