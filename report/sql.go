package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound      = errors.New("report not found")
	ErrUnknownReport = errors.New("unknown report id")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetStats aggregates the dashboard counters for one owner. Each counter is a
// separate scoped query; a failure in any of them fails the whole call rather
// than reporting partial numbers as complete.
func (r *Repository) GetStats(ctx context.Context, ownerID string) (Stats, error) {
	var s Stats

	if err := r.db.GetContext(ctx, &s.TotalVehicles, countVehiclesQuery, ownerID); err != nil {
		return Stats{}, err
	}
	if err := r.db.GetContext(ctx, &s.ActiveDrivers, countActiveDriversQuery, ownerID); err != nil {
		return Stats{}, err
	}
	if err := r.db.GetContext(ctx, &s.TotalCustomers, countCustomersQuery, ownerID); err != nil {
		return Stats{}, err
	}

	var rentalCounts []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rentalCounts, countRentalsByStatusQuery, ownerID); err != nil {
		return Stats{}, err
	}
	for _, rc := range rentalCounts {
		switch rc.Status {
		case "active":
			s.ActiveRentals = rc.Count
		case "completed":
			s.CompletedRentals = rc.Count
		}
	}

	if err := r.db.GetContext(ctx, &s.RentalRevenueCents, rentalRevenueQuery, ownerID); err != nil {
		return Stats{}, err
	}

	var maintCounts []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &maintCounts, countMaintenanceByStatusQuery, ownerID); err != nil {
		return Stats{}, err
	}
	for _, mc := range maintCounts {
		switch mc.Status {
		case "scheduled":
			s.PendingMaintenance = mc.Count
		case "completed":
			s.CompletedMaintenance = mc.Count
		case "overdue":
			s.OverdueMaintenance = mc.Count
		}
	}

	if err := r.db.SelectContext(ctx, &s.RecentActivity, recentActivityQuery, ownerID); err != nil {
		return Stats{}, err
	}
	return s, nil
}

const countVehiclesQuery = `SELECT COUNT(*) FROM vehicles WHERE owner_id = $1`
const countActiveDriversQuery = `SELECT COUNT(*) FROM drivers WHERE owner_id = $1 AND status = 'active'`
const countCustomersQuery = `SELECT COUNT(*) FROM customers WHERE owner_id = $1`
const countRentalsByStatusQuery = `SELECT status, COUNT(*) AS count FROM rentals WHERE owner_id = $1 GROUP BY status`
const rentalRevenueQuery = `SELECT COALESCE(SUM(total_cost_cents), 0) FROM rentals WHERE owner_id = $1 AND status = 'completed'`
const countMaintenanceByStatusQuery = `SELECT status, COUNT(*) AS count FROM maintenance_records WHERE owner_id = $1 GROUP BY status`

const recentActivityQuery = `
SELECT id, type, description, timestamp FROM (
    SELECT id, 'vehicle' AS type, make || ' ' || model || ' added to fleet' AS description, created_at AS timestamp
    FROM vehicles WHERE owner_id = $1
  UNION ALL
    SELECT id, 'rental' AS type, 'Rental for ' || customer_name AS description, created_at AS timestamp
    FROM rentals WHERE owner_id = $1
  UNION ALL
    SELECT id, 'maintenance' AS type, service_type || ' scheduled' AS description, created_at AS timestamp
    FROM maintenance_records WHERE owner_id = $1
  UNION ALL
    SELECT id, 'driver' AS type, first_name || ' ' || last_name || ' added' AS description, created_at AS timestamp
    FROM drivers WHERE owner_id = $1
) activity
ORDER BY timestamp DESC
LIMIT 10
`

// Generate runs a canned report by id.
func (r *Repository) Generate(ctx context.Context, ownerID, reportID string) (Table, error) {
	switch reportID {
	case "vehicle-inventory":
		return r.vehicleInventory(ctx, ownerID)
	case "driver-license-expiry":
		return r.driverLicenseExpiry(ctx, ownerID)
	case "vehicle-cost-analysis":
		return r.vehicleCostAnalysis(ctx, ownerID)
	}
	return Table{}, ErrUnknownReport
}

func (r *Repository) vehicleInventory(ctx context.Context, ownerID string) (Table, error) {
	var rows []struct {
		Make         string    `db:"make"`
		Model        string    `db:"model"`
		Year         int       `db:"year"`
		LicensePlate string    `db:"license_plate"`
		CreatedAt    time.Time `db:"created_at"`
	}
	if err := r.db.SelectContext(ctx, &rows, vehicleInventoryQuery, ownerID); err != nil {
		return Table{}, err
	}

	t := Table{Headers: []string{"Make", "Model", "Year", "License Plate", "Added"}}
	for _, v := range rows {
		t.Rows = append(t.Rows, []string{
			v.Make, v.Model, fmt.Sprintf("%d", v.Year), v.LicensePlate,
			v.CreatedAt.Format("2006-01-02"),
		})
	}
	return t, nil
}

const vehicleInventoryQuery = `
SELECT make, model, year, license_plate, created_at
FROM vehicles WHERE owner_id = $1
ORDER BY make, model
`

func (r *Repository) driverLicenseExpiry(ctx context.Context, ownerID string) (Table, error) {
	var rows []struct {
		Name          string    `db:"name"`
		LicenseNumber string    `db:"license_number"`
		LicenseExpiry time.Time `db:"license_expiry"`
		Status        string    `db:"status"`
	}
	if err := r.db.SelectContext(ctx, &rows, driverLicenseExpiryQuery, ownerID); err != nil {
		return Table{}, err
	}

	t := Table{Headers: []string{"Driver", "License Number", "Expires", "Status"}}
	for _, d := range rows {
		t.Rows = append(t.Rows, []string{
			d.Name, d.LicenseNumber, d.LicenseExpiry.Format("2006-01-02"), d.Status,
		})
	}
	return t, nil
}

const driverLicenseExpiryQuery = `
SELECT first_name || ' ' || last_name AS name, license_number, license_expiry, status
FROM drivers WHERE owner_id = $1
ORDER BY license_expiry ASC
`

func (r *Repository) vehicleCostAnalysis(ctx context.Context, ownerID string) (Table, error) {
	var rows []struct {
		Vehicle          string `db:"vehicle"`
		MaintenanceCents int64  `db:"maintenance_cents"`
		RevenueCents     int64  `db:"revenue_cents"`
	}
	if err := r.db.SelectContext(ctx, &rows, vehicleCostAnalysisQuery, ownerID); err != nil {
		return Table{}, err
	}

	t := Table{Headers: []string{"Vehicle", "Maintenance Cost", "Rental Revenue", "Net"}}
	for _, v := range rows {
		net := v.RevenueCents - v.MaintenanceCents
		t.Rows = append(t.Rows, []string{
			v.Vehicle, dollars(v.MaintenanceCents), dollars(v.RevenueCents), dollars(net),
		})
	}
	return t, nil
}

const vehicleCostAnalysisQuery = `
SELECT v.make || ' ' || v.model || ' (' || v.license_plate || ')' AS vehicle,
       COALESCE((SELECT SUM(m.cost_cents) FROM maintenance_records m
                 WHERE m.vehicle_id = v.id AND m.owner_id = v.owner_id), 0) AS maintenance_cents,
       COALESCE((SELECT SUM(r.total_cost_cents) FROM rentals r
                 WHERE r.vehicle_id = v.id AND r.owner_id = v.owner_id AND r.status = 'completed'), 0) AS revenue_cents
FROM vehicles v
WHERE v.owner_id = $1
ORDER BY v.make, v.model
`

func dollars(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

func (r *Repository) SaveReport(ctx context.Context, sr *SavedReport) error {
	return r.db.GetContext(ctx, sr, saveReportQuery,
		sr.ID, sr.OwnerID, sr.Name, sr.Description, sr.ReportType, sr.Parameters)
}

const saveReportQuery = `
INSERT INTO saved_reports (id, owner_id, name, description, report_type, parameters, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
RETURNING *
`

func (r *Repository) ListSavedReports(ctx context.Context, ownerID string) ([]SavedReport, error) {
	var reports []SavedReport
	err := r.db.SelectContext(ctx, &reports, listSavedReportsQuery, ownerID)
	return reports, err
}

const listSavedReportsQuery = `
SELECT * FROM saved_reports WHERE owner_id = $1 ORDER BY created_at DESC
`

func (r *Repository) DeleteSavedReport(ctx context.Context, id uuid.UUID, ownerID string) error {
	res, err := r.db.ExecContext(ctx, deleteSavedReportQuery, id, ownerID)
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

const deleteSavedReportQuery = `DELETE FROM saved_reports WHERE id = $1 AND owner_id = $2`
