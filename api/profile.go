package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openfleet/fleetman-backend/internal/middleware"
)

type profileResponse struct {
	ID        string `json:"id"`
	SubjectID string `json:"subjectId"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	HasStripe bool   `json:"hasStripe"`
}

// meHandler returns the caller's account, creating it on first sight.
func (a *API) meHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	acct, err := a.ar.GetOrCreate(c, ownerID)
	if err != nil {
		logger.ErrorContext(c, "failed to get account", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		ID:        acct.ID.String(),
		SubjectID: acct.SubjectID,
		Email:     acct.Email.String,
		Name:      acct.Name.String,
		HasStripe: acct.StripeID.Valid,
	})
}

// syncProfileHandler pulls the caller's profile from the identity provider's
// userinfo endpoint and stores it on the account.
func (a *API) syncProfileHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	if _, err := a.ar.GetOrCreate(c, ownerID); err != nil {
		logger.ErrorContext(c, "failed to get account", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	info, err := a.idp.GetUserInfo(c, token)
	if err != nil {
		logger.ErrorContext(c, "failed to fetch user info", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "identity provider unavailable"})
		return
	}

	if err := a.ar.UpdateProfile(c, ownerID, info.Email, info.Name); err != nil {
		logger.ErrorContext(c, "failed to update profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile synced"})
}
