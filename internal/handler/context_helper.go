package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/vgp-compliance-api/internal/middleware"
)

// actorID returns the authenticated user id, or "" for anonymous calls.
func actorID(c *gin.Context) string {
	if claims := middleware.CurrentUser(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// actorName is the human readable name recorded in created_by fields.
func actorName(c *gin.Context) string {
	return middleware.CurrentUser(c).DisplayName()
}
