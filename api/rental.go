package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openfleet/fleetman-backend/internal/middleware"
	"github.com/openfleet/fleetman-backend/rental"
	"github.com/openfleet/fleetman-backend/vehicle"
)

type rentalResponse struct {
	ID             uuid.UUID     `json:"id"`
	VehicleID      uuid.UUID     `json:"vehicleId"`
	VehicleInfo    string        `json:"vehicleInfo,omitempty"`
	CustomerName   string        `json:"customerName"`
	CustomerEmail  string        `json:"customerEmail,omitempty"`
	CustomerPhone  string        `json:"customerPhone,omitempty"`
	StartDate      string        `json:"startDate"`
	EndDate        string        `json:"endDate"`
	DailyRateCents int64         `json:"dailyRateCents"`
	TotalCostCents int64         `json:"totalCostCents"`
	Status         rental.Status `json:"status"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

func toRentalResponse(r rental.Rental) rentalResponse {
	return rentalResponse{
		ID:             r.ID,
		VehicleID:      r.VehicleID,
		CustomerName:   r.CustomerName,
		CustomerEmail:  r.CustomerEmail.String,
		CustomerPhone:  r.CustomerPhone.String,
		StartDate:      r.StartDate.Format(dateLayout),
		EndDate:        r.EndDate.Format(dateLayout),
		DailyRateCents: r.DailyRateCents,
		TotalCostCents: r.TotalCostCents,
		Status:         r.Status,
		Notes:          r.Notes.String,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func toRentalWithVehicleResponse(r rental.RentalWithVehicle) rentalResponse {
	resp := toRentalResponse(r.Rental)
	resp.VehicleInfo = r.VehicleInfo
	return resp
}

type createRentalRequest struct {
	VehicleID      string `json:"vehicleId" binding:"required"`
	CustomerName   string `json:"customerName" binding:"required"`
	CustomerEmail  string `json:"customerEmail"`
	CustomerPhone  string `json:"customerPhone"`
	StartDate      string `json:"startDate" binding:"required"`
	EndDate        string `json:"endDate" binding:"required"`
	DailyRateCents int64  `json:"dailyRateCents" binding:"required"`
	Notes          string `json:"notes"`
}

func (a *API) createRentalHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	var req createRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid vehicleId"})
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_DATE", "message": "Invalid startDate format"})
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_DATE", "message": "Invalid endDate format"})
		return
	}
	if endDate.Before(startDate) {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_DATE", "message": "endDate must not be before startDate"})
		return
	}
	if req.DailyRateCents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_RATE", "message": "dailyRateCents must be positive"})
		return
	}

	// Verify the vehicle exists and belongs to the caller.
	if _, err := a.vr.GetByID(c, vehicleID, ownerID); err != nil {
		if errors.Is(err, vehicle.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "VEHICLE_NOT_FOUND", "message": "Vehicle not found"})
			return
		}
		logger.ErrorContext(c, "failed to get vehicle", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	r := &rental.Rental{
		ID:             uuid.New(),
		VehicleID:      vehicleID,
		OwnerID:        ownerID,
		CustomerName:   req.CustomerName,
		CustomerEmail:  nullString(req.CustomerEmail),
		CustomerPhone:  nullString(req.CustomerPhone),
		StartDate:      startDate,
		EndDate:        endDate,
		DailyRateCents: req.DailyRateCents,
		Notes:          nullString(req.Notes),
	}

	err = a.rr.Create(c, r)
	if err != nil {
		if errors.Is(err, rental.ErrOverlap) {
			c.JSON(http.StatusConflict, gin.H{
				"code":    "RENTAL_OVERLAP",
				"message": "This vehicle is already rented during the selected period",
			})
			return
		}
		logger.ErrorContext(c, "failed to create rental", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, toRentalResponse(*r))
}

func (a *API) listRentalsHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	var statusPtr *rental.Status
	if s := c.Query("status"); s != "" {
		status := rental.Status(s)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_STATUS", "message": "Unknown rental status"})
			return
		}
		statusPtr = &status
	}

	rentals, err := a.rr.ListByOwner(c, ownerID, statusPtr)
	if err != nil {
		logger.ErrorContext(c, "failed to list rentals", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]rentalResponse, 0, len(rentals))
	for _, r := range rentals {
		responses = append(responses, toRentalWithVehicleResponse(r))
	}
	c.JSON(http.StatusOK, responses)
}

func (a *API) getRentalHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid rental id"})
		return
	}

	r, err := a.rr.GetByID(c, id, ownerID)
	if err != nil {
		if errors.Is(err, rental.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "RENTAL_NOT_FOUND", "message": "Rental not found"})
			return
		}
		logger.ErrorContext(c, "failed to get rental", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, toRentalWithVehicleResponse(r))
}

type updateRentalRequest struct {
	StartDate      string        `json:"startDate" binding:"required"`
	EndDate        string        `json:"endDate" binding:"required"`
	DailyRateCents int64         `json:"dailyRateCents" binding:"required"`
	Status         rental.Status `json:"status" binding:"required"`
	Notes          string        `json:"notes"`
}

func (a *API) updateRentalHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid rental id"})
		return
	}

	var req updateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_DATE", "message": "Invalid startDate format"})
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_DATE", "message": "Invalid endDate format"})
		return
	}
	if endDate.Before(startDate) {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_DATE", "message": "endDate must not be before startDate"})
		return
	}
	if req.DailyRateCents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_RATE", "message": "dailyRateCents must be positive"})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_STATUS", "message": "Unknown rental status"})
		return
	}

	updated, completedDays, err := a.rr.Update(c, id, ownerID, rental.UpdateParams{
		StartDate:      startDate,
		EndDate:        endDate,
		DailyRateCents: req.DailyRateCents,
		Notes:          req.Notes,
		Status:         req.Status,
	})
	if err != nil {
		if errors.Is(err, rental.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "RENTAL_NOT_FOUND", "message": "Rental not found"})
			return
		}
		logger.ErrorContext(c, "failed to update rental", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	message := "Rental updated successfully"
	if completedDays > 0 {
		message = completionMessage(updated.TotalCostCents, completedDays)
	}
	c.JSON(http.StatusOK, gin.H{"rental": toRentalResponse(updated), "message": message})
}

type completeRentalRequest struct {
	ActualEndDate string `json:"actualEndDate"`
	Notes         string `json:"notes"`
}

func (a *API) completeRentalHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid rental id"})
		return
	}

	var req completeRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	opts := rental.CompleteOptions{Notes: req.Notes}
	if req.ActualEndDate != "" {
		actualEnd, err := parseDate(req.ActualEndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_DATE", "message": "Invalid actualEndDate format"})
			return
		}
		opts.ActualEndDate = &actualEnd
	}

	completed, days, err := a.rr.Complete(c, id, ownerID, opts)
	if err != nil {
		if errors.Is(err, rental.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "RENTAL_NOT_FOUND", "message": "Rental not found"})
			return
		}
		logger.ErrorContext(c, "failed to complete rental", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if a.stripeEnabled {
		a.invoiceCompletedRental(c, completed, days)
	}

	c.JSON(http.StatusOK, gin.H{
		"rental":  toRentalResponse(completed),
		"message": completionMessage(completed.TotalCostCents, days),
	})
}

func completionMessage(totalCents int64, days int) string {
	return fmt.Sprintf("Rental completed successfully. Final cost: $%.2f for %d day(s).",
		float64(totalCents)/100, days)
}

type updateRentalStatusRequest struct {
	Status rental.Status `json:"status" binding:"required"`
}

func (a *API) updateRentalStatusHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid rental id"})
		return
	}

	var req updateRentalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_STATUS", "message": "Unknown rental status"})
		return
	}

	err = a.rr.UpdateStatus(c, id, ownerID, req.Status)
	if err != nil {
		if errors.Is(err, rental.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "RENTAL_NOT_FOUND", "message": "Rental not found"})
			return
		}
		logger.ErrorContext(c, "failed to update rental status", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Rental marked as %s", req.Status)})
}

func (a *API) deleteRentalHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid rental id"})
		return
	}

	err = a.rr.Delete(c, id, ownerID)
	if err != nil {
		if errors.Is(err, rental.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "RENTAL_NOT_FOUND", "message": "Rental not found"})
			return
		}
		logger.ErrorContext(c, "failed to delete rental", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rental deleted successfully"})
}
