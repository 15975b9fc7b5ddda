package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openfleet/fleetman-backend/internal/middleware"
)

// availabilityHandler answers "can this vehicle be rented for [start, end]?".
// It fails closed: a store error reports the vehicle as unavailable rather
// than surfacing a 500, so a flaky database can never hand out a double
// booking.
func (a *API) availabilityHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid vehicle id"})
		return
	}

	start, err := parseDate(c.Query("startDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_DATE", "message": "Invalid startDate format"})
		return
	}
	end, err := parseDate(c.Query("endDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_DATE", "message": "Invalid endDate format"})
		return
	}

	var excludeID *uuid.UUID
	if raw := c.Query("excludeRentalId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid excludeRentalId"})
			return
		}
		excludeID = &id
	}

	available, err := a.rr.CheckAvailability(c, ownerID, vehicleID, start, end, excludeID)
	if err != nil {
		logger.ErrorContext(c, "availability check failed", "error", err, "vehicle_id", vehicleID)
		c.JSON(http.StatusOK, gin.H{"available": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"available": available})
}
