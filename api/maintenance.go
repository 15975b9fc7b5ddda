package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openfleet/fleetman-backend/internal/middleware"
	"github.com/openfleet/fleetman-backend/maintenance"
	"github.com/openfleet/fleetman-backend/vehicle"
)

type maintenanceResponse struct {
	ID              uuid.UUID          `json:"id"`
	VehicleID       uuid.UUID          `json:"vehicleId"`
	VehicleInfo     string             `json:"vehicleInfo,omitempty"`
	ServiceType     string             `json:"serviceType"`
	Description     string             `json:"description,omitempty"`
	DatePerformed   string             `json:"datePerformed,omitempty"`
	NextDueDate     string             `json:"nextDueDate"`
	CostCents       int64              `json:"costCents"`
	Status          maintenance.Status `json:"status"`
	ServiceProvider string             `json:"serviceProvider,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

func toMaintenanceResponse(rec maintenance.Record) maintenanceResponse {
	resp := maintenanceResponse{
		ID:              rec.ID,
		VehicleID:       rec.VehicleID,
		ServiceType:     rec.ServiceType,
		Description:     rec.Description.String,
		NextDueDate:     rec.NextDueDate.Format(dateLayout),
		CostCents:       rec.CostCents,
		Status:          rec.Status,
		ServiceProvider: rec.ServiceProvider.String,
		Notes:           rec.Notes.String,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
	if rec.DatePerformed.Valid {
		resp.DatePerformed = rec.DatePerformed.Time.Format(dateLayout)
	}
	return resp
}

func toMaintenanceWithVehicleResponse(rec maintenance.RecordWithVehicle) maintenanceResponse {
	resp := toMaintenanceResponse(rec.Record)
	resp.VehicleInfo = rec.VehicleInfo
	return resp
}

type maintenanceRequest struct {
	VehicleID       string `json:"vehicleId" binding:"required"`
	ServiceType     string `json:"serviceType" binding:"required"`
	Description     string `json:"description"`
	DatePerformed   string `json:"datePerformed"`
	NextDueDate     string `json:"nextDueDate" binding:"required"`
	CostCents       int64  `json:"costCents"`
	Status          string `json:"status"`
	ServiceProvider string `json:"serviceProvider"`
	Notes           string `json:"notes"`
}

func (req maintenanceRequest) toRecord(ownerID string) (maintenance.Record, error) {
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return maintenance.Record{}, fmt.Errorf("invalid vehicleId: %w", err)
	}

	nextDue, err := parseDate(req.NextDueDate)
	if err != nil {
		return maintenance.Record{}, fmt.Errorf("invalid nextDueDate: %w", err)
	}

	rec := maintenance.Record{
		OwnerID:         ownerID,
		VehicleID:       vehicleID,
		ServiceType:     req.ServiceType,
		Description:     nullString(req.Description),
		NextDueDate:     nextDue,
		CostCents:       req.CostCents,
		ServiceProvider: nullString(req.ServiceProvider),
		Notes:           nullString(req.Notes),
	}

	if req.DatePerformed != "" {
		performed, err := parseDate(req.DatePerformed)
		if err != nil {
			return maintenance.Record{}, fmt.Errorf("invalid datePerformed: %w", err)
		}
		rec.DatePerformed = sql.NullTime{Time: performed, Valid: true}
	}

	if req.Status != "" {
		if err := rec.Status.Scan(req.Status); err != nil {
			return maintenance.Record{}, err
		}
	}

	return rec, nil
}

func (a *API) listMaintenanceHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	records, err := a.mr.ListByOwner(c, ownerID)
	if err != nil {
		logger.ErrorContext(c, "failed to list maintenance records", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]maintenanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, toMaintenanceWithVehicleResponse(rec))
	}
	c.JSON(http.StatusOK, responses)
}

func (a *API) createMaintenanceHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	rec, err := req.toRecord(ownerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}
	rec.ID = uuid.New()

	if _, err := a.vr.GetByID(c, rec.VehicleID, ownerID); err != nil {
		if errors.Is(err, vehicle.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "VEHICLE_NOT_FOUND", "message": "Vehicle not found"})
			return
		}
		logger.ErrorContext(c, "failed to get vehicle", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if err := a.mr.Create(c, &rec); err != nil {
		logger.ErrorContext(c, "failed to create maintenance record", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, toMaintenanceResponse(rec))
}

func (a *API) getMaintenanceHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid maintenance record id"})
		return
	}

	rec, err := a.mr.GetByID(c, id, ownerID)
	if err != nil {
		if errors.Is(err, maintenance.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "MAINTENANCE_NOT_FOUND", "message": "Maintenance record not found"})
			return
		}
		logger.ErrorContext(c, "failed to get maintenance record", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, toMaintenanceWithVehicleResponse(rec))
}

func (a *API) updateMaintenanceHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid maintenance record id"})
		return
	}

	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	rec, err := req.toRecord(ownerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}
	rec.ID = id

	if err := a.mr.Update(c, &rec); err != nil {
		if errors.Is(err, maintenance.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "MAINTENANCE_NOT_FOUND", "message": "Maintenance record not found"})
			return
		}
		logger.ErrorContext(c, "failed to update maintenance record", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, toMaintenanceResponse(rec))
}

func (a *API) completeMaintenanceHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid maintenance record id"})
		return
	}

	rec, err := a.mr.MarkCompleted(c, id, ownerID)
	if err != nil {
		if errors.Is(err, maintenance.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "MAINTENANCE_NOT_FOUND", "message": "Maintenance record not found"})
			return
		}
		logger.ErrorContext(c, "failed to complete maintenance record", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"record":  toMaintenanceResponse(rec),
		"message": "Maintenance record marked as completed",
	})
}

// checkOverdueMaintenanceHandler flips the caller's scheduled records that are
// past due to overdue and reports how many changed.
func (a *API) checkOverdueMaintenanceHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	flipped, err := a.mr.SweepOverdue(c, ownerID)
	if err != nil {
		logger.ErrorContext(c, "failed to sweep overdue maintenance", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": flipped})
}

func (a *API) deleteMaintenanceHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid maintenance record id"})
		return
	}

	if err := a.mr.Delete(c, id, ownerID); err != nil {
		if errors.Is(err, maintenance.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "MAINTENANCE_NOT_FOUND", "message": "Maintenance record not found"})
			return
		}
		logger.ErrorContext(c, "failed to delete maintenance record", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Maintenance record deleted successfully"})
}
