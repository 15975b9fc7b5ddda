// Package report produces read-only aggregations: the dashboard stats block,
// a small set of canned fleet reports, and user-saved report definitions.
package report

import (
	"time"

	"github.com/google/uuid"
)

// Stats is the dashboard summary for one owner.
type Stats struct {
	TotalVehicles        int        `json:"totalVehicles"`
	ActiveDrivers        int        `json:"activeDrivers"`
	TotalCustomers       int        `json:"totalCustomers"`
	ActiveRentals        int        `json:"activeRentals"`
	CompletedRentals     int        `json:"completedRentals"`
	RentalRevenueCents   int64      `json:"rentalRevenueCents"`
	PendingMaintenance   int        `json:"pendingMaintenance"`
	CompletedMaintenance int        `json:"completedMaintenance"`
	OverdueMaintenance   int        `json:"overdueMaintenance"`
	RecentActivity       []Activity `json:"recentActivity"`
}

type Activity struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Type        string    `json:"type" db:"type"`
	Description string    `json:"description" db:"description"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
}

// Table is a generated report: a header row plus string-shaped data rows,
// ready for CSV/PDF export by a client.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Metadata describes one canned report.
type Metadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Canned is the catalogue of built-in reports.
var Canned = []Metadata{
	{ID: "vehicle-inventory", Name: "Vehicle Inventory", Description: "All vehicles in the fleet with registration details"},
	{ID: "driver-license-expiry", Name: "Driver License Expiry", Description: "Drivers ordered by license expiry date"},
	{ID: "vehicle-cost-analysis", Name: "Vehicle Cost Analysis", Description: "Per-vehicle maintenance spend and rental revenue"},
}

// SavedReport is a user-defined report definition kept for re-running.
type SavedReport struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OwnerID     string    `db:"owner_id" json:"-"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	ReportType  string    `db:"report_type" json:"reportType"`
	Parameters  string    `db:"parameters" json:"parameters"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
