package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openfleet/fleetman-backend/internal/middleware"
	"github.com/openfleet/fleetman-backend/report"
)

func (a *API) listReportsHandler(c *gin.Context) {
	if _, ok := middleware.GetOwnerID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, report.Canned)
}

func (a *API) generateReportHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	reportID := c.Param("reportId")
	table, err := a.rpr.Generate(c, ownerID, reportID)
	if err != nil {
		if errors.Is(err, report.ErrUnknownReport) {
			c.JSON(http.StatusNotFound, gin.H{"code": "REPORT_NOT_FOUND", "message": "Unknown report"})
			return
		}
		logger.ErrorContext(c, "failed to generate report", "error", err, "report_id", reportID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, table)
}

func (a *API) listSavedReportsHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	reports, err := a.rpr.ListSavedReports(c, ownerID)
	if err != nil {
		logger.ErrorContext(c, "failed to list saved reports", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if reports == nil {
		reports = []report.SavedReport{}
	}

	c.JSON(http.StatusOK, reports)
}

type saveReportRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ReportType  string `json:"reportType" binding:"required"`
	Parameters  string `json:"parameters"`
}

func (a *API) saveReportHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	var req saveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	sr := &report.SavedReport{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		ReportType:  req.ReportType,
		Parameters:  req.Parameters,
	}
	if err := a.rpr.SaveReport(c, sr); err != nil {
		logger.ErrorContext(c, "failed to save report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, sr)
}

func (a *API) deleteSavedReportHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid report id"})
		return
	}

	if err := a.rpr.DeleteSavedReport(c, id, ownerID); err != nil {
		if errors.Is(err, report.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "REPORT_NOT_FOUND", "message": "Saved report not found"})
			return
		}
		logger.ErrorContext(c, "failed to delete saved report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Saved report deleted successfully"})
}
