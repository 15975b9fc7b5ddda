package api

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/openfleet/fleetman-backend/account"
	"github.com/openfleet/fleetman-backend/customer"
	"github.com/openfleet/fleetman-backend/driver"
	"github.com/openfleet/fleetman-backend/internal/idp"
	"github.com/openfleet/fleetman-backend/internal/o11y"
	"github.com/openfleet/fleetman-backend/maintenance"
	"github.com/openfleet/fleetman-backend/rental"
	"github.com/openfleet/fleetman-backend/report"
	"github.com/openfleet/fleetman-backend/vehicle"
)

const testSubject = "auth0|test-owner"

// fakeAuth stands in for the JWT middleware and plants validated claims for
// the given subject on the request context.
func fakeAuth(subject string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: subject},
		}
		ctx := context.WithValue(c.Request.Context(), jwtmiddleware.ContextKey{}, claims)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// noAuth passes requests through without planting claims, exercising the
// fail-closed path in every handler.
func noAuth() gin.HandlerFunc {
	return func(c *gin.Context) { c.Next() }
}

func newTestAPI(t *testing.T, auth gin.HandlerFunc) (*API, sqlmock.Sqlmock) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")

	obs := &o11y.Observability{
		Logger:   slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		Registry: prometheus.NewRegistry(),
	}

	a := New(Config{
		Vehicles:    vehicle.NewRepository(db),
		Rentals:     rental.NewRepository(db),
		Customers:   customer.NewRepository(db),
		Drivers:     driver.NewRepository(db),
		Maintenance: maintenance.NewRepository(db),
		Reports:     report.NewRepository(db),
		Accounts:    account.NewRepository(db),
		IDP:         idp.NewFakeClient(),

		Obs:  obs,
		Auth: auth,
	})

	return a, mock
}

func doJSON(t *testing.T, a *API, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
