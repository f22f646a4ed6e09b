package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-hub-api/internal/middleware"
	"github.com/noah-isme/alumni-hub-api/internal/models"
)

// roleFromContext returns the caller's role, or "" for anonymous requests.
func roleFromContext(c *gin.Context) models.UserRole {
	claims := middleware.Claims(c)
	if claims == nil {
		return ""
	}
	return claims.Role
}
