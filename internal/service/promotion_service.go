package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-rapor-api/internal/dto"
	"github.com/noah-isme/sma-rapor-api/internal/models"
	appErrors "github.com/noah-isme/sma-rapor-api/pkg/errors"
)

type promotionTermReader interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
	FindNextAfter(ctx context.Context, after time.Time) (*models.Term, error)
}

type promotionEnrollmentStore interface {
	ListByClassGroup(ctx context.Context, classGroupID string) ([]models.ClassEnrollmentDetail, error)
	CreateIfAbsent(ctx context.Context, exec sqlx.ExtContext, enrollment *models.ClassEnrollment) (bool, error)
}

type studentStatusWriter interface {
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.StudentStatus) error
}

type promotionStore interface {
	Upsert(ctx context.Context, exec sqlx.ExtContext, promotion *models.ClassPromotion) error
	InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, promotion *models.ClassPromotion) (bool, error)
	ProcessedStudents(ctx context.Context, fromTermID string, studentIDs []string) (map[string]bool, error)
	ListByClassGroup(ctx context.Context, classGroupID string) ([]models.ClassPromotionDetail, error)
}

// PromotionService records end-of-term placement decisions.
type PromotionService struct {
	classGroups classGroupReader
	terms       promotionTermReader
	enrollments promotionEnrollmentStore
	students    studentStatusWriter
	promotions  promotionStore
	tx          txProvider
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewPromotionService wires the promotion workflow.
func NewPromotionService(
	classGroups classGroupReader,
	terms promotionTermReader,
	enrollments promotionEnrollmentStore,
	students studentStatusWriter,
	promotions promotionStore,
	tx txProvider,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *PromotionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromotionService{
		classGroups: classGroups,
		terms:       terms,
		enrollments: enrollments,
		students:    students,
		promotions:  promotions,
		tx:          tx,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

type promotionItem struct {
	studentID string
	status    models.PromotionStatus
	target    *string
	note      *string
}

type promotionScope struct {
	group  *models.ClassGroup
	term   *models.Term
	toTerm *models.Term
	byID   map[string]models.ClassEnrollmentDetail
	list   []models.ClassEnrollmentDetail
}

// Process records explicit decisions for enrollments of a class group.
// Every decision is checked before anything is written.
func (s *PromotionService) Process(ctx context.Context, req dto.ProcessPromotionsRequest, actorID string) (*dto.PromotionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid promotion payload")
	}

	statuses := make([]models.PromotionStatus, len(req.Decisions))
	seen := make(map[string]bool, len(req.Decisions))
	for i, decision := range req.Decisions {
		if seen[decision.EnrollmentID] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("enrollment %s appears more than once", decision.EnrollmentID))
		}
		seen[decision.EnrollmentID] = true
		status, err := parseDecisionStatus(decision.Status, decision.TargetClassGroupID)
		if err != nil {
			return nil, err
		}
		statuses[i] = status
	}

	scope, err := s.loadScope(ctx, req.ClassGroupID)
	if err != nil {
		return nil, err
	}

	targets := make([]*string, 0, len(req.Decisions))
	items := make([]promotionItem, 0, len(req.Decisions))
	for i, decision := range req.Decisions {
		enrollment, ok := scope.byID[decision.EnrollmentID]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("enrollment %s not found in class group", decision.EnrollmentID))
		}
		target := targetFor(statuses[i], decision.TargetClassGroupID)
		targets = append(targets, target)
		items = append(items, promotionItem{
			studentID: enrollment.StudentID,
			status:    statuses[i],
			target:    target,
			note:      decision.Note,
		})
	}
	if err := s.ensureTargets(ctx, targets...); err != nil {
		return nil, err
	}

	applied, err := s.apply(ctx, scope, items, actorID, false)
	if err != nil {
		return nil, err
	}
	return &dto.PromotionResult{Processed: applied, ToTermID: termIDOf(scope.toTerm)}, nil
}

// BulkPromote applies one decision to every enrollment of the class group that has
// no decision for the term yet. Existing decisions are counted as skipped.
func (s *PromotionService) BulkPromote(ctx context.Context, req dto.BulkPromoteRequest, actorID string) (*dto.PromotionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk promotion payload")
	}
	status, err := parseDecisionStatus(req.Status, req.TargetClassGroupID)
	if err != nil {
		return nil, err
	}
	scope, err := s.loadScope(ctx, req.ClassGroupID)
	if err != nil {
		return nil, err
	}
	target := targetFor(status, req.TargetClassGroupID)
	if err := s.ensureTargets(ctx, target); err != nil {
		return nil, err
	}

	studentIDs := make([]string, 0, len(scope.list))
	for _, enrollment := range scope.list {
		studentIDs = append(studentIDs, enrollment.StudentID)
	}
	processed, err := s.promotions.ProcessedStudents(ctx, scope.term.ID, studentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing promotions")
	}

	items := make([]promotionItem, 0, len(scope.list))
	skipped := 0
	for _, enrollment := range scope.list {
		if processed[enrollment.StudentID] {
			skipped++
			continue
		}
		items = append(items, promotionItem{studentID: enrollment.StudentID, status: status, target: target})
	}

	applied, err := s.apply(ctx, scope, items, actorID, true)
	if err != nil {
		return nil, err
	}
	skipped += len(items) - applied
	return &dto.PromotionResult{Processed: applied, Skipped: skipped, ToTermID: termIDOf(scope.toTerm)}, nil
}

// List returns decisions recorded for a class group.
func (s *PromotionService) List(ctx context.Context, query dto.PromotionListQuery) ([]models.ClassPromotionDetail, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "class_group_id is required")
	}
	promotions, err := s.promotions.ListByClassGroup(ctx, query.ClassGroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list promotions")
	}
	if promotions == nil {
		promotions = []models.ClassPromotionDetail{}
	}
	return promotions, nil
}

func parseDecisionStatus(raw string, target *string) (models.PromotionStatus, error) {
	status, ok := models.ParsePromotionStatus(raw)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown promotion status %q", raw))
	}
	if status.MovesClass() && (target == nil || *target == "") {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("status %s requires target_class_group_id", status))
	}
	return status, nil
}

// targetFor drops the target of decisions that do not place the student in a class.
func targetFor(status models.PromotionStatus, target *string) *string {
	if !status.MovesClass() {
		return nil
	}
	return target
}

func termIDOf(term *models.Term) *string {
	if term == nil {
		return nil
	}
	id := term.ID
	return &id
}

func (s *PromotionService) loadScope(ctx context.Context, classGroupID string) (*promotionScope, error) {
	group, err := s.classGroups.FindByID(ctx, classGroupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class group")
	}
	term, err := s.terms.FindByID(ctx, group.TermID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term of class group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	toTerm, err := nextTerm(ctx, s.terms, term)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListByClassGroup(ctx, group.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	byID := make(map[string]models.ClassEnrollmentDetail, len(enrollments))
	for _, enrollment := range enrollments {
		byID[enrollment.ID] = enrollment
	}
	return &promotionScope{group: group, term: term, toTerm: toTerm, byID: byID, list: enrollments}, nil
}

func (s *PromotionService) ensureTargets(ctx context.Context, targets ...*string) error {
	checked := make(map[string]bool)
	for _, target := range targets {
		if target == nil || checked[*target] {
			continue
		}
		checked[*target] = true
		if _, err := s.classGroups.FindByID(ctx, *target); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("target class group %s not found", *target))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target class group")
		}
	}
	return nil
}

// apply writes the decisions in one transaction and returns how many were recorded.
// With keepExisting, a student that already has a decision for the term is left alone,
// including decisions committed after the caller's pre-check.
func (s *PromotionService) apply(ctx context.Context, scope *promotionScope, items []promotionItem, actorID string, keepExisting bool) (applied int, err error) {
	if len(items) == 0 {
		return 0, nil
	}
	if s.tx == nil {
		return 0, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var processedBy *string
	if actorID != "" {
		processedBy = &actorID
	}
	now := time.Now().UTC()
	toTermID := termIDOf(scope.toTerm)

	recorded := make([]promotionItem, 0, len(items))
	for _, item := range items {
		record := &models.ClassPromotion{
			StudentID:        item.studentID,
			FromClassGroupID: scope.group.ID,
			ToClassGroupID:   item.target,
			FromTermID:       scope.term.ID,
			ToTermID:         toTermID,
			Status:           item.status,
			Note:             item.note,
			ProcessedBy:      processedBy,
			ProcessedAt:      now,
		}
		inserted := true
		if keepExisting {
			inserted, err = s.promotions.InsertIfAbsent(ctx, tx, record)
		} else {
			err = s.promotions.Upsert(ctx, tx, record)
		}
		if err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save promotion")
			return 0, err
		}
		if !inserted {
			continue
		}
		recorded = append(recorded, item)
		if item.status.MovesClass() {
			enrollment := &models.ClassEnrollment{ClassGroupID: *item.target, StudentID: item.studentID, EnrolledAt: now}
			if _, err = s.enrollments.CreateIfAbsent(ctx, tx, enrollment); err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll student in target class group")
				return 0, err
			}
		}
		if studentStatus, ok := item.status.StudentStatus(); ok {
			if err = s.students.UpdateStatus(ctx, tx, item.studentID, studentStatus); err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student status")
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit promotions")
		return 0, err
	}

	for _, item := range recorded {
		s.metrics.RecordPromotion(item.status)
	}
	s.logger.Info("promotions recorded",
		zap.String("class_group_id", scope.group.ID),
		zap.String("from_term_id", scope.term.ID),
		zap.Int("count", len(recorded)),
		zap.Int("kept_existing", len(items)-len(recorded)),
	)
	return len(recorded), nil
}
