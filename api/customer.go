package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openfleet/fleetman-backend/customer"
	"github.com/openfleet/fleetman-backend/internal/middleware"
)

type customerResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	RentalCount int       `json:"rentalCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toCustomerResponse(cu customer.Customer) customerResponse {
	return customerResponse{
		ID:        cu.ID,
		Name:      cu.Name,
		Email:     cu.Email.String,
		Phone:     cu.Phone.String,
		Address:   cu.Address.String,
		Notes:     cu.Notes.String,
		CreatedAt: cu.CreatedAt,
		UpdatedAt: cu.UpdatedAt,
	}
}

type customerRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func (a *API) listCustomersHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	customers, err := a.cr.ListByOwner(c, ownerID)
	if err != nil {
		logger.ErrorContext(c, "failed to list customers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]customerResponse, 0, len(customers))
	for _, cu := range customers {
		resp := toCustomerResponse(cu.Customer)
		resp.RentalCount = cu.RentalCount
		responses = append(responses, resp)
	}
	c.JSON(http.StatusOK, responses)
}

func (a *API) createCustomerHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	cu := &customer.Customer{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    req.Name,
		Email:   nullString(req.Email),
		Phone:   nullString(req.Phone),
		Address: nullString(req.Address),
		Notes:   nullString(req.Notes),
	}
	if err := a.cr.Create(c, cu); err != nil {
		logger.ErrorContext(c, "failed to create customer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, toCustomerResponse(*cu))
}

func (a *API) getCustomerHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid customer id"})
		return
	}

	cu, err := a.cr.GetByID(c, id, ownerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "CUSTOMER_NOT_FOUND", "message": "Customer not found"})
			return
		}
		logger.ErrorContext(c, "failed to get customer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, toCustomerResponse(cu))
}

func (a *API) updateCustomerHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid customer id"})
		return
	}

	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	cu := &customer.Customer{
		ID:      id,
		OwnerID: ownerID,
		Name:    req.Name,
		Email:   nullString(req.Email),
		Phone:   nullString(req.Phone),
		Address: nullString(req.Address),
		Notes:   nullString(req.Notes),
	}
	if err := a.cr.Update(c, cu); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "CUSTOMER_NOT_FOUND", "message": "Customer not found"})
			return
		}
		logger.ErrorContext(c, "failed to update customer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, toCustomerResponse(*cu))
}

// deleteCustomerHandler removes a customer. With ?cascade=true it also purges
// the rentals carrying the customer's snapshot name.
func (a *API) deleteCustomerHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid customer id"})
		return
	}

	var deletedRentals int64
	if c.Query("cascade") == "true" {
		cu, err := a.cr.GetByID(c, id, ownerID)
		if err != nil {
			if errors.Is(err, customer.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"code": "CUSTOMER_NOT_FOUND", "message": "Customer not found"})
				return
			}
			logger.ErrorContext(c, "failed to get customer", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		deletedRentals, err = a.rr.DeleteByCustomerName(c, ownerID, cu.Name)
		if err != nil {
			logger.ErrorContext(c, "failed to delete customer rentals", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
	}

	if err := a.cr.Delete(c, id, ownerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "CUSTOMER_NOT_FOUND", "message": "Customer not found"})
			return
		}
		logger.ErrorContext(c, "failed to delete customer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully", "deletedRentals": deletedRentals})
}
