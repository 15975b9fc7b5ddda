package api

import (
	"fmt"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/openfleet/fleetman-backend/rental"
)

var rentalColumns = []string{
	"id", "vehicle_id", "owner_id", "customer_name", "customer_email", "customer_phone",
	"start_date", "end_date", "daily_rate_cents", "total_cost_cents", "status", "notes",
	"created_at", "updated_at",
}

var vehicleColumns = []string{
	"id", "owner_id", "make", "model", "year", "license_plate", "location",
	"created_at", "updated_at",
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func expectVehicleLookup(mock sqlmock.Sqlmock, vehicleID uuid.UUID) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM vehicles WHERE id = $1 AND owner_id = $2")).
		WithArgs(vehicleID, testSubject).
		WillReturnRows(sqlmock.NewRows(vehicleColumns).AddRow(
			vehicleID, testSubject, "Toyota", "Corolla", 2021, "211-D-12345", "(0,0)",
			time.Now(), time.Now(),
		))
}

func TestCreateRental(t *testing.T) {
	vehicleID := uuid.New()

	t.Run("creates and bills planned days", func(t *testing.T) {
		a, mock := newTestAPI(t, fakeAuth(testSubject))

		expectVehicleLookup(mock, vehicleID)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM rentals")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO rentals")).
			WillReturnRows(sqlmock.NewRows(rentalColumns).AddRow(
				uuid.New(), vehicleID, testSubject, "Jordan Smith", nil, nil,
				date(2024, 3, 1), date(2024, 3, 4), 5000, 15000, "active", nil,
				time.Now(), time.Now(),
			))
		mock.ExpectCommit()

		w := doJSON(t, a, http.MethodPost, "/rentals", fmt.Sprintf(`{
			"vehicleId": %q,
			"customerName": "Jordan Smith",
			"startDate": "2024-03-01",
			"endDate": "2024-03-04",
			"dailyRateCents": 5000
		}`, vehicleID))

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		// Mar 1 - Mar 4 is 3 planned days at $50.00.
		assert.Equal(t, float64(15000), body["totalCostCents"])
		assert.Equal(t, "active", body["status"])
	})

	t.Run("conflicting window is rejected", func(t *testing.T) {
		a, mock := newTestAPI(t, fakeAuth(testSubject))

		expectVehicleLookup(mock, vehicleID)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM rentals")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
		mock.ExpectRollback()

		w := doJSON(t, a, http.MethodPost, "/rentals", fmt.Sprintf(`{
			"vehicleId": %q,
			"customerName": "Jordan Smith",
			"startDate": "2024-03-04",
			"endDate": "2024-03-08",
			"dailyRateCents": 5000
		}`, vehicleID))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "RENTAL_OVERLAP", decodeBody(t, w)["code"])
	})

	t.Run("rejects end before start", func(t *testing.T) {
		a, _ := newTestAPI(t, fakeAuth(testSubject))

		w := doJSON(t, a, http.MethodPost, "/rentals", fmt.Sprintf(`{
			"vehicleId": %q,
			"customerName": "Jordan Smith",
			"startDate": "2024-03-04",
			"endDate": "2024-03-01",
			"dailyRateCents": 5000
		}`, vehicleID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_DATE", decodeBody(t, w)["code"])
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		a, _ := newTestAPI(t, fakeAuth(testSubject))

		w := doJSON(t, a, http.MethodPost, "/rentals", fmt.Sprintf(`{
			"vehicleId": %q,
			"customerName": "Jordan Smith",
			"startDate": "03/01/2024",
			"endDate": "2024-03-04",
			"dailyRateCents": 5000
		}`, vehicleID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_DATE", decodeBody(t, w)["code"])
	})

	t.Run("rejects a nonpositive rate", func(t *testing.T) {
		a, _ := newTestAPI(t, fakeAuth(testSubject))

		w := doJSON(t, a, http.MethodPost, "/rentals", fmt.Sprintf(`{
			"vehicleId": %q,
			"customerName": "Jordan Smith",
			"startDate": "2024-03-01",
			"endDate": "2024-03-04",
			"dailyRateCents": -100
		}`, vehicleID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_RATE", decodeBody(t, w)["code"])
	})

	t.Run("no identity fails closed", func(t *testing.T) {
		a, _ := newTestAPI(t, noAuth())

		w := doJSON(t, a, http.MethodPost, "/rentals", `{}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCompleteRental(t *testing.T) {
	id := uuid.New()

	t.Run("bills inclusive days and reports the final cost", func(t *testing.T) {
		a, mock := newTestAPI(t, fakeAuth(testSubject))

		stored := sqlmock.NewRows(rentalColumns).AddRow(
			id, uuid.New(), testSubject, "Jordan Smith", nil, nil,
			date(2024, 3, 1), date(2024, 3, 4), 5000, 15000, "active", nil,
			time.Now(), time.Now(),
		)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WithArgs(id, testSubject).
			WillReturnRows(stored)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE rentals")).
			WithArgs(id, testSubject, date(2024, 3, 3), int64(15000)).
			WillReturnRows(sqlmock.NewRows(rentalColumns).AddRow(
				id, uuid.New(), testSubject, "Jordan Smith", nil, nil,
				date(2024, 3, 1), date(2024, 3, 3), 5000, 15000, "completed", nil,
				time.Now(), time.Now(),
			))
		mock.ExpectCommit()

		w := doJSON(t, a, http.MethodPost, "/rentals/"+id.String()+"/complete",
			`{"actualEndDate": "2024-03-03"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		// Mar 1 - Mar 3 is 3 inclusive days.
		assert.Equal(t, "Rental completed successfully. Final cost: $150.00 for 3 day(s).", body["message"])
	})

	t.Run("unknown rental", func(t *testing.T) {
		a, mock := newTestAPI(t, fakeAuth(testSubject))

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WithArgs(id, testSubject).
			WillReturnRows(sqlmock.NewRows(rentalColumns))
		mock.ExpectRollback()

		w := doJSON(t, a, http.MethodPost, "/rentals/"+id.String()+"/complete", `{}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "RENTAL_NOT_FOUND", decodeBody(t, w)["code"])
	})
}

func TestUpdateRentalStatus(t *testing.T) {
	id := uuid.New()

	t.Run("rejects an unknown status", func(t *testing.T) {
		a, _ := newTestAPI(t, fakeAuth(testSubject))

		w := doJSON(t, a, http.MethodPost, "/rentals/"+id.String()+"/status",
			`{"status": "returned"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_STATUS", decodeBody(t, w)["code"])
	})

	t.Run("marks a rental cancelled", func(t *testing.T) {
		a, mock := newTestAPI(t, fakeAuth(testSubject))

		mock.ExpectExec(regexp.QuoteMeta("UPDATE rentals SET status")).
			WithArgs(id, testSubject, rental.StatusCancelled).
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := doJSON(t, a, http.MethodPost, "/rentals/"+id.String()+"/status",
			`{"status": "cancelled"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestListRentals(t *testing.T) {
	t.Run("filters by status", func(t *testing.T) {
		a, mock := newTestAPI(t, fakeAuth(testSubject))

		cols := append(rentalColumns[:len(rentalColumns):len(rentalColumns)], "vehicle_info")
		mock.ExpectQuery(regexp.QuoteMeta("FROM rentals r")).
			WithArgs(testSubject, rental.StatusActive).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(
				uuid.New(), uuid.New(), testSubject, "Jordan Smith", nil, nil,
				date(2024, 3, 1), date(2024, 3, 4), 5000, 15000, "active", nil,
				time.Now(), time.Now(), "Toyota Corolla (2021) - 211-D-12345",
			))

		w := doJSON(t, a, http.MethodGet, "/rentals?status=active", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects an unknown filter", func(t *testing.T) {
		a, _ := newTestAPI(t, fakeAuth(testSubject))

		w := doJSON(t, a, http.MethodGet, "/rentals?status=broken", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAvailability(t *testing.T) {
	vehicleID := uuid.New()

	t.Run("free window", func(t *testing.T) {
		a, mock := newTestAPI(t, fakeAuth(testSubject))

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM rentals")).
			WithArgs(vehicleID, testSubject, date(2024, 3, 1), date(2024, 3, 4)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		w := doJSON(t, a, http.MethodGet,
			"/vehicles/"+vehicleID.String()+"/availability?startDate=2024-03-01&endDate=2024-03-04", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decodeBody(t, w)["available"])
	})

	t.Run("store failure reports unavailable", func(t *testing.T) {
		a, mock := newTestAPI(t, fakeAuth(testSubject))

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM rentals")).
			WillReturnError(fmt.Errorf("connection reset"))

		w := doJSON(t, a, http.MethodGet,
			"/vehicles/"+vehicleID.String()+"/availability?startDate=2024-03-01&endDate=2024-03-04", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, decodeBody(t, w)["available"])
	})

	t.Run("no identity fails closed", func(t *testing.T) {
		a, _ := newTestAPI(t, noAuth())

		w := doJSON(t, a, http.MethodGet,
			"/vehicles/"+vehicleID.String()+"/availability?startDate=2024-03-01&endDate=2024-03-04", "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
