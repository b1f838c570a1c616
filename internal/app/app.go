// Package app assembles repositories and services from configuration. Both the
// HTTP gateway and the operator CLI build on the same container.
package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-rapor-api/internal/grading"
	"github.com/noah-isme/sma-rapor-api/internal/repository"
	"github.com/noah-isme/sma-rapor-api/internal/service"
	"github.com/noah-isme/sma-rapor-api/pkg/cache"
	"github.com/noah-isme/sma-rapor-api/pkg/config"
	"github.com/noah-isme/sma-rapor-api/pkg/database"
)

// Container holds the wired services of the engine.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client
	Cache  *repository.CacheRepository

	Metrics     *service.MetricsService
	Auth        *service.AuthService
	Terms       *service.TermService
	Attendance  *service.AttendanceService
	ReportCards *service.ReportCardService
	Promotions  *service.PromotionService
}

// New opens Postgres (and Redis when enabled) and wires every service.
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return Wire(cfg, logger, db, redisClient), nil
}

// Wire builds the container over already opened connections. redisClient may be nil.
func Wire(cfg *config.Config, logger *zap.Logger, db *sqlx.DB, redisClient *redis.Client) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := validator.New()
	metrics := service.NewMetricsService()

	terms := repository.NewTermRepository(db)
	classGroups := repository.NewClassGroupRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	assignments := repository.NewTeachingAssignmentRepository(db)
	scores := repository.NewAssessmentScoreRepository(db)
	kkm := repository.NewKKMRepository(db)
	attendance := repository.NewAttendanceRepository(db)
	students := repository.NewStudentRepository(db)
	cards := repository.NewReportCardRepository(db)
	promotions := repository.NewPromotionRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logger)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.ReportCards.CacheTTL, logger, cfg.ReportCards.CacheEnabled && cacheRepo.Enabled())

	var leases service.LeaseStore
	if cacheRepo.Enabled() {
		leases = cacheRepo
	}
	locks := service.NewGenerationLock(leases, cfg.ReportCards.LockTTL, logger)

	reportCards := service.NewReportCardService(service.ReportCardDeps{
		ClassGroups: classGroups,
		Terms:       terms,
		Enrollments: enrollments,
		Assignments: assignments,
		Scores:      scores,
		KKM:         kkm,
		Attendance:  attendance,
		Cards:       cards,
		Tx:          db,
		Locks:       locks,
		Cache:       cacheSvc,
		Metrics:     metrics,
	}, service.ReportCardConfig{
		SkillPolicy: grading.SkillPolicy(cfg.ReportCards.SkillPolicy),
		DefaultKKM:  cfg.ReportCards.DefaultKKM,
		CacheTTL:    cfg.ReportCards.CacheTTL,
	}, validate, logger.Named("report_cards"))

	return &Container{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Redis:       redisClient,
		Cache:       cacheRepo,
		Metrics:     metrics,
		Auth:        service.NewAuthService(logger, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret}),
		Terms:       service.NewTermService(terms, cfg.Configuration.ActiveTermID, logger),
		Attendance:  service.NewAttendanceService(attendance, validate, logger),
		ReportCards: reportCards,
		Promotions: service.NewPromotionService(classGroups, terms, enrollments, students, promotions, db,
			metrics, validate, logger.Named("promotions")),
	}
}

// Ping checks Postgres and, when configured, Redis.
func (c *Container) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := c.Cache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close releases connections.
func (c *Container) Close() error {
	var firstErr error
	if err := c.Cache.Close(); err != nil {
		firstErr = err
	}
	if err := c.DB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
