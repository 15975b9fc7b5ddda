package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openfleet/fleetman-backend/driver"
	"github.com/openfleet/fleetman-backend/internal/middleware"
)

type driverResponse struct {
	ID            uuid.UUID     `json:"id"`
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	LicenseNumber string        `json:"licenseNumber"`
	LicenseExpiry string        `json:"licenseExpiry"`
	ContactNumber string        `json:"contactNumber,omitempty"`
	Email         string        `json:"email,omitempty"`
	Status        driver.Status `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func toDriverResponse(d driver.Driver) driverResponse {
	return driverResponse{
		ID:            d.ID,
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		LicenseNumber: d.LicenseNumber,
		LicenseExpiry: d.LicenseExpiry.Format(dateLayout),
		ContactNumber: d.ContactNumber.String,
		Email:         d.Email.String,
		Status:        d.Status,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type driverRequest struct {
	FirstName     string        `json:"firstName" binding:"required"`
	LastName      string        `json:"lastName" binding:"required"`
	LicenseNumber string        `json:"licenseNumber" binding:"required"`
	LicenseExpiry string        `json:"licenseExpiry" binding:"required"`
	ContactNumber string        `json:"contactNumber"`
	Email         string        `json:"email"`
	Status        driver.Status `json:"status"`
}

func (a *API) listDriversHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	drivers, err := a.dr.ListByOwner(c, ownerID)
	if err != nil {
		logger.ErrorContext(c, "failed to list drivers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]driverResponse, 0, len(drivers))
	for _, d := range drivers {
		responses = append(responses, toDriverResponse(d))
	}
	c.JSON(http.StatusOK, responses)
}

func (a *API) createDriverHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	var req driverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	expiry, err := parseDate(req.LicenseExpiry)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_DATE", "message": "Invalid licenseExpiry format"})
		return
	}

	status := req.Status
	if status == "" {
		status = driver.StatusActive
	}
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_STATUS", "message": "Unknown driver status"})
		return
	}

	d := &driver.Driver{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		LicenseNumber: req.LicenseNumber,
		LicenseExpiry: expiry,
		ContactNumber: nullString(req.ContactNumber),
		Email:         nullString(req.Email),
		Status:        status,
	}
	if err := a.dr.Create(c, d); err != nil {
		logger.ErrorContext(c, "failed to create driver", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, toDriverResponse(*d))
}

func (a *API) updateDriverHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid driver id"})
		return
	}

	var req driverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	expiry, err := parseDate(req.LicenseExpiry)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_DATE", "message": "Invalid licenseExpiry format"})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_STATUS", "message": "Unknown driver status"})
		return
	}

	d := &driver.Driver{
		ID:            id,
		OwnerID:       ownerID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		LicenseNumber: req.LicenseNumber,
		LicenseExpiry: expiry,
		ContactNumber: nullString(req.ContactNumber),
		Email:         nullString(req.Email),
		Status:        req.Status,
	}
	if err := a.dr.Update(c, d); err != nil {
		if errors.Is(err, driver.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "DRIVER_NOT_FOUND", "message": "Driver not found"})
			return
		}
		logger.ErrorContext(c, "failed to update driver", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, toDriverResponse(*d))
}

type updateDriverStatusRequest struct {
	Status driver.Status `json:"status" binding:"required"`
}

func (a *API) updateDriverStatusHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid driver id"})
		return
	}

	var req updateDriverStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_STATUS", "message": "Unknown driver status"})
		return
	}

	if err := a.dr.UpdateStatus(c, id, ownerID, req.Status); err != nil {
		if errors.Is(err, driver.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "DRIVER_NOT_FOUND", "message": "Driver not found"})
			return
		}
		logger.ErrorContext(c, "failed to update driver status", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Driver marked as %s", req.Status)})
}

func (a *API) deleteDriverHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid driver id"})
		return
	}

	if err := a.dr.Delete(c, id, ownerID); err != nil {
		if errors.Is(err, driver.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "DRIVER_NOT_FOUND", "message": "Driver not found"})
			return
		}
		logger.ErrorContext(c, "failed to delete driver", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Driver deleted successfully"})
}
