package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openfleet/fleetman-backend/internal/middleware"
	"github.com/openfleet/fleetman-backend/report"
)

func (a *API) dashboardStatsHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	stats, err := a.rpr.GetStats(c, ownerID)
	if err != nil {
		logger.ErrorContext(c, "failed to get dashboard stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if stats.RecentActivity == nil {
		stats.RecentActivity = []report.Activity{}
	}

	c.JSON(http.StatusOK, stats)
}
