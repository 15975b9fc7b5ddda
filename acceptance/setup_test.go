package acceptance

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openfleet/fleetman-backend/account"
	"github.com/openfleet/fleetman-backend/api"
	"github.com/openfleet/fleetman-backend/customer"
	"github.com/openfleet/fleetman-backend/driver"
	"github.com/openfleet/fleetman-backend/internal/idp"
	"github.com/openfleet/fleetman-backend/internal/o11y"
	"github.com/openfleet/fleetman-backend/maintenance"
	"github.com/openfleet/fleetman-backend/rental"
	"github.com/openfleet/fleetman-backend/report"
	"github.com/openfleet/fleetman-backend/vehicle"
)

// The acceptance suite runs against a real database. It skips unless
// DATABASE_URL points at one with the migrations applied.

const testOwner = "auth0|acceptance-owner"

type TestServer struct {
	DB     *sqlx.DB
	API    *api.API
	IDP    *idp.FakeClient
	Router http.Handler
}

func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set; skipping acceptance tests")
	}

	db, err := sqlx.Connect("pgx", dbURL)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	cleanupTestData(t, db)

	fakeIDP := idp.NewFakeClient()

	obs := &o11y.Observability{
		Logger:   slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		Registry: prometheus.NewRegistry(),
	}

	a := api.New(api.Config{
		Vehicles:    vehicle.NewRepository(db),
		Rentals:     rental.NewRepository(db),
		Customers:   customer.NewRepository(db),
		Drivers:     driver.NewRepository(db),
		Maintenance: maintenance.NewRepository(db),
		Reports:     report.NewRepository(db),
		Accounts:    account.NewRepository(db),
		IDP:         fakeIDP,

		Obs:  obs,
		Auth: fakeAuthMiddleware(),
	})

	return &TestServer{
		DB:     db,
		API:    a,
		IDP:    fakeIDP,
		Router: a.Router(),
	}
}

func (ts *TestServer) Close() {
	ts.DB.Close()
}

func cleanupTestData(t *testing.T, db *sqlx.DB) {
	t.Helper()

	// Delete in order of dependencies
	for _, table := range []string{"rentals", "maintenance_records", "saved_reports", "customers", "drivers", "vehicles", "accounts"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Logf("warning: failed to clean %s: %v", table, err)
		}
	}
}

// fakeAuthMiddleware reads the owner identity from the X-Owner-ID header
// instead of validating a JWT.
func fakeAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetHeader("X-Owner-ID")
		if subject == "" {
			c.Next()
			return
		}
		claims := &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: subject},
		}
		ctx := context.WithValue(c.Request.Context(), jwtmiddleware.ContextKey{}, claims)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (ts *TestServer) request(t *testing.T, method, path, owner string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		req.Header.Set("X-Owner-ID", owner)
	}

	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}
