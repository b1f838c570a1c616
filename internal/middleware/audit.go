package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-rapor-api/internal/models"
)

// Audit actions recorded for engine writes.
const (
	AuditGenerateReportCards = "REPORT_CARD_GENERATE"
	AuditUpdateReportCard    = "REPORT_CARD_UPDATE"
	AuditLockReportCard      = "REPORT_CARD_LOCK"
	AuditProcessPromotions   = "PROMOTION_PROCESS"
)

// Audit writes one structured audit line per successful request. The resource
// id is the :id path parameter when the route has one.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("audit")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if status >= 400 {
			return
		}

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("route", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Int("status", status),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
		}
		if id := c.Param("id"); id != "" {
			fields = append(fields, zap.String("resource_id", id))
		}
		if value, ok := c.Get(ContextUserKey); ok {
			if claims, ok := value.(*models.JWTClaims); ok {
				fields = append(fields, zap.String("actor_id", claims.UserID), zap.String("actor_role", string(claims.Role)))
			}
		}
		logger.Info("audit", fields...)
	}
}
