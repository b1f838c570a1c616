package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-rapor-api/internal/middleware"
	"github.com/noah-isme/sma-rapor-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorID is the authenticated user id, or "" for unauthenticated calls.
func actorID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}
