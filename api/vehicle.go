package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openfleet/fleetman-backend/internal/middleware"
	"github.com/openfleet/fleetman-backend/vehicle"
)

type vehicleResponse struct {
	ID            uuid.UUID `json:"id"`
	Make          string    `json:"make"`
	Model         string    `json:"model"`
	Year          int       `json:"year"`
	LicensePlate  string    `json:"licensePlate"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	ActiveRentals int       `json:"activeRentals"`
	RentedTo      string    `json:"rentedTo,omitempty"`
	ReturnDate    string    `json:"returnDate,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toVehicleResponse(v vehicle.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:           v.ID,
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		LicensePlate: v.LicensePlate,
		Latitude:     v.Location.P.X,
		Longitude:    v.Location.P.Y,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func toVehicleWithRentalInfoResponse(v vehicle.VehicleWithRentalInfo) vehicleResponse {
	resp := toVehicleResponse(v.Vehicle)
	resp.ActiveRentals = v.ActiveRentals
	resp.RentedTo = v.RentedTo.String
	if v.ReturnDate.Valid {
		resp.ReturnDate = v.ReturnDate.Time.Format(dateLayout)
	}
	return resp
}

type vehicleRequest struct {
	Make         string `json:"make" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Year         int    `json:"year" binding:"required"`
	LicensePlate string `json:"licensePlate" binding:"required"`
}

func (a *API) listVehiclesHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	vehicles, err := a.vr.ListByOwner(c, ownerID)
	if err != nil {
		logger.ErrorContext(c, "failed to list vehicles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]vehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		responses = append(responses, toVehicleWithRentalInfoResponse(v))
	}
	c.JSON(http.StatusOK, responses)
}

func (a *API) createVehicleHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	v := &vehicle.Vehicle{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
	}
	if err := a.vr.Create(c, v); err != nil {
		logger.ErrorContext(c, "failed to create vehicle", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, toVehicleResponse(*v))
}

func (a *API) getVehicleHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid vehicle id"})
		return
	}

	v, err := a.vr.GetByID(c, id, ownerID)
	if err != nil {
		if errors.Is(err, vehicle.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "VEHICLE_NOT_FOUND", "message": "Vehicle not found"})
			return
		}
		logger.ErrorContext(c, "failed to get vehicle", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, toVehicleResponse(v))
}

func (a *API) updateVehicleHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid vehicle id"})
		return
	}

	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	v := &vehicle.Vehicle{
		ID:           id,
		OwnerID:      ownerID,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
	}
	if err := a.vr.Update(c, v); err != nil {
		if errors.Is(err, vehicle.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "VEHICLE_NOT_FOUND", "message": "Vehicle not found"})
			return
		}
		logger.ErrorContext(c, "failed to update vehicle", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, toVehicleResponse(*v))
}

func (a *API) deleteVehicleHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid vehicle id"})
		return
	}

	err = a.vr.Delete(c, id, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, vehicle.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": "VEHICLE_NOT_FOUND", "message": "Vehicle not found"})
		case errors.Is(err, vehicle.ErrCurrentlyRented):
			c.JSON(http.StatusConflict, gin.H{
				"code":    "VEHICLE_RENTED",
				"message": "Vehicle has an active rental and cannot be deleted",
			})
		default:
			logger.ErrorContext(c, "failed to delete vehicle", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted successfully"})
}

type transferVehicleRequest struct {
	ToOwnerID string `json:"toOwnerId" binding:"required"`
}

func (a *API) transferVehicleHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid vehicle id"})
		return
	}

	var req transferVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	err = a.vr.Transfer(c, id, ownerID, req.ToOwnerID)
	if err != nil {
		if errors.Is(err, vehicle.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "VEHICLE_NOT_FOUND", "message": "Vehicle not found"})
			return
		}
		logger.ErrorContext(c, "failed to transfer vehicle", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vehicle transferred successfully"})
}

type updateLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (a *API) updateVehicleLocationHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid vehicle id"})
		return
	}

	var req updateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	err = a.vr.UpdateLocation(c, id, ownerID, req.Latitude, req.Longitude)
	if err != nil {
		if errors.Is(err, vehicle.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "VEHICLE_NOT_FOUND", "message": "Vehicle not found"})
			return
		}
		logger.ErrorContext(c, "failed to update vehicle location", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Location updated"})
}

func (a *API) vehicleRentalsHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid vehicle id"})
		return
	}

	rentals, err := a.rr.ListActiveForVehicle(c, ownerID, id)
	if err != nil {
		logger.ErrorContext(c, "failed to list vehicle rentals", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]rentalResponse, 0, len(rentals))
	for _, r := range rentals {
		responses = append(responses, toRentalResponse(r))
	}
	c.JSON(http.StatusOK, responses)
}

func (a *API) vehicleMaintenanceHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid vehicle id"})
		return
	}

	records, err := a.mr.ListByVehicle(c, id, ownerID)
	if err != nil {
		logger.ErrorContext(c, "failed to list vehicle maintenance", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]maintenanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, toMaintenanceResponse(rec))
	}
	c.JSON(http.StatusOK, responses)
}
