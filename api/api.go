package api

import (
	"database/sql"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openfleet/fleetman-backend/account"
	"github.com/openfleet/fleetman-backend/customer"
	"github.com/openfleet/fleetman-backend/driver"
	"github.com/openfleet/fleetman-backend/internal/idp"
	"github.com/openfleet/fleetman-backend/internal/middleware"
	"github.com/openfleet/fleetman-backend/internal/o11y"
	"github.com/openfleet/fleetman-backend/maintenance"
	"github.com/openfleet/fleetman-backend/rental"
	"github.com/openfleet/fleetman-backend/report"
	"github.com/openfleet/fleetman-backend/vehicle"
)

// Config wires the API's collaborators. Auth is injectable so tests can swap
// the JWT middleware for a fake.
type Config struct {
	Vehicles    *vehicle.Repository
	Rentals     *rental.Repository
	Customers   *customer.Repository
	Drivers     *driver.Repository
	Maintenance *maintenance.Repository
	Reports     *report.Repository
	Accounts    *account.Repository
	IDP         idp.Client

	Obs  *o11y.Observability
	Auth gin.HandlerFunc

	MetricsUsername string
	MetricsPassword string

	// StripeEnabled gates the billing endpoints and the invoice-on-completion
	// hook; the Stripe API key is set process-wide in main.
	StripeEnabled bool
}

type API struct {
	r   *gin.Engine
	vr  *vehicle.Repository
	rr  *rental.Repository
	cr  *customer.Repository
	dr  *driver.Repository
	mr  *maintenance.Repository
	rpr *report.Repository
	ar  *account.Repository
	idp idp.Client

	obs           *o11y.Observability
	stripeEnabled bool
}

func New(cfg Config) *API {
	a := &API{
		r:             gin.New(),
		vr:            cfg.Vehicles,
		rr:            cfg.Rentals,
		cr:            cfg.Customers,
		dr:            cfg.Drivers,
		mr:            cfg.Maintenance,
		rpr:           cfg.Reports,
		ar:            cfg.Accounts,
		idp:           cfg.IDP,
		obs:           cfg.Obs,
		stripeEnabled: cfg.StripeEnabled,
	}

	a.r.Use(gin.Recovery())
	a.r.Use(middleware.Tracing())
	a.r.Use(middleware.Logging(cfg.Obs.Logger))
	a.r.Use(middleware.Metrics(cfg.Obs.Registry))

	a.r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// The metrics endpoint is only mounted when credentials are configured.
	if cfg.MetricsUsername != "" {
		metrics := a.r.Group("/metrics", gin.BasicAuth(gin.Accounts{
			cfg.MetricsUsername: cfg.MetricsPassword,
		}))
		metrics.GET("", gin.WrapH(promhttp.HandlerFor(cfg.Obs.Registry, promhttp.HandlerOpts{})))
	}

	protected := a.r.Group("/")
	protected.Use(cfg.Auth)
	{
		protected.GET("/vehicles", a.listVehiclesHandler)
		protected.POST("/vehicles", a.createVehicleHandler)
		protected.GET("/vehicles/:id", a.getVehicleHandler)
		protected.PUT("/vehicles/:id", a.updateVehicleHandler)
		protected.DELETE("/vehicles/:id", a.deleteVehicleHandler)
		protected.POST("/vehicles/:id/transfer", a.transferVehicleHandler)
		protected.POST("/vehicles/:id/location", a.updateVehicleLocationHandler)
		protected.GET("/vehicles/:id/availability", a.availabilityHandler)
		protected.GET("/vehicles/:id/rentals", a.vehicleRentalsHandler)
		protected.GET("/vehicles/:id/maintenance", a.vehicleMaintenanceHandler)

		protected.GET("/rentals", a.listRentalsHandler)
		protected.POST("/rentals", a.createRentalHandler)
		protected.GET("/rentals/:id", a.getRentalHandler)
		protected.PUT("/rentals/:id", a.updateRentalHandler)
		protected.DELETE("/rentals/:id", a.deleteRentalHandler)
		protected.POST("/rentals/:id/complete", a.completeRentalHandler)
		protected.POST("/rentals/:id/status", a.updateRentalStatusHandler)

		protected.GET("/customers", a.listCustomersHandler)
		protected.POST("/customers", a.createCustomerHandler)
		protected.GET("/customers/:id", a.getCustomerHandler)
		protected.PUT("/customers/:id", a.updateCustomerHandler)
		protected.DELETE("/customers/:id", a.deleteCustomerHandler)

		protected.GET("/drivers", a.listDriversHandler)
		protected.POST("/drivers", a.createDriverHandler)
		protected.PUT("/drivers/:id", a.updateDriverHandler)
		protected.DELETE("/drivers/:id", a.deleteDriverHandler)
		protected.POST("/drivers/:id/status", a.updateDriverStatusHandler)

		protected.GET("/maintenance", a.listMaintenanceHandler)
		protected.POST("/maintenance", a.createMaintenanceHandler)
		protected.GET("/maintenance/:id", a.getMaintenanceHandler)
		protected.PUT("/maintenance/:id", a.updateMaintenanceHandler)
		protected.DELETE("/maintenance/:id", a.deleteMaintenanceHandler)
		protected.POST("/maintenance/:id/complete", a.completeMaintenanceHandler)
		protected.POST("/maintenance/check-overdue", a.checkOverdueMaintenanceHandler)

		protected.GET("/reports", a.listReportsHandler)
		protected.GET("/reports/saved", a.listSavedReportsHandler)
		protected.POST("/reports/saved", a.saveReportHandler)
		protected.DELETE("/reports/saved/:id", a.deleteSavedReportHandler)
		protected.GET("/reports/:reportId", a.generateReportHandler)

		protected.GET("/dashboard/stats", a.dashboardStatsHandler)

		protected.GET("/me", a.meHandler)
		protected.POST("/me/sync", a.syncProfileHandler)

		if cfg.StripeEnabled {
			protected.POST("/billing/session", a.createBillingSessionHandler)
		}
	}

	return a
}

func (a *API) Router() *gin.Engine {
	return a.r
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing date")
	}
	return time.Parse(dateLayout, s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
