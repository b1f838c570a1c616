package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/sma-rapor-api/internal/app"
	"github.com/noah-isme/sma-rapor-api/internal/handler"
	"github.com/noah-isme/sma-rapor-api/internal/middleware"
	"github.com/noah-isme/sma-rapor-api/internal/models"
	"github.com/noah-isme/sma-rapor-api/pkg/config"
	"github.com/noah-isme/sma-rapor-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-rapor-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-rapor-api/pkg/middleware/requestid"
)

func newRouter(c *app.Container) *gin.Engine {
	cfg := c.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(c.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(c.Metrics, "/metrics"))

	metricsHandler := handler.NewMetricsHandler(c.Metrics, map[string]handler.Pinger{
		"postgres": c.DB,
		"redis":    handler.PingFunc(c.Cache.Ping),
	})
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	reportCards := handler.NewReportCardHandler(c.ReportCards)
	promotions := handler.NewPromotionHandler(c.Promotions)
	attendance := handler.NewAttendanceHandler(c.Attendance)
	terms := handler.NewTermHandler(c.Terms)

	staff := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher)
	admins := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	audit := func(action string) gin.HandlerFunc { return middleware.Audit(c.Logger, action) }

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(c.Auth))

	termGroup := api.Group("/terms")
	termGroup.GET("/active", staff, terms.GetActive)
	termGroup.GET("/:id", staff, terms.Get)
	termGroup.GET("/:id/next", staff, terms.Next)

	api.GET("/attendance/summary", staff, attendance.Summary)

	cards := api.Group("/report-cards")
	cards.GET("", staff, reportCards.List)
	cards.POST("/generate", staff, audit(middleware.AuditGenerateReportCards), reportCards.Generate)
	cards.GET("/:id", staff, reportCards.Get)
	cards.PATCH("/:id", staff, audit(middleware.AuditUpdateReportCard), reportCards.Update)
	cards.GET("/:id/export", staff, reportCards.Export)
	cards.POST("/:id/toggle-lock", admins, audit(middleware.AuditLockReportCard), reportCards.ToggleLock)
	cards.POST("/:id/lock", admins, audit(middleware.AuditLockReportCard), reportCards.Lock)
	cards.POST("/:id/unlock", admins, audit(middleware.AuditLockReportCard), reportCards.Unlock)

	promotionGroup := api.Group("/promotions")
	promotionGroup.GET("", staff, promotions.List)
	promotionGroup.POST("/process", admins, audit(middleware.AuditProcessPromotions), promotions.Process)
	promotionGroup.POST("/bulk", admins, audit(middleware.AuditProcessPromotions), promotions.Bulk)

	return r
}
