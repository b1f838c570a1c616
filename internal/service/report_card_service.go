package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-rapor-api/internal/dto"
	"github.com/noah-isme/sma-rapor-api/internal/grading"
	"github.com/noah-isme/sma-rapor-api/internal/models"
	appErrors "github.com/noah-isme/sma-rapor-api/pkg/errors"
)

type classGroupReader interface {
	FindByID(ctx context.Context, id string) (*models.ClassGroup, error)
}

type termReader interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
}

type classEnrollmentLister interface {
	ListByClassGroup(ctx context.Context, classGroupID string) ([]models.ClassEnrollmentDetail, error)
}

type teachingAssignmentLister interface {
	ListByClassGroupAndTerm(ctx context.Context, classGroupID, termID string) ([]models.TeachingAssignment, error)
}

type assessmentScoreLister interface {
	ListByAssignments(ctx context.Context, assignmentIDs []string) ([]models.ScoredAssessment, error)
}

type kkmReader interface {
	MapByTerm(ctx context.Context, termID string) (map[string]float64, error)
}

type attendanceSummaryReader interface {
	SummarizeMany(ctx context.Context, studentIDs []string, termID string) (map[string]models.AttendanceSummary, error)
}

type reportCardStore interface {
	ListByClassAndTerm(ctx context.Context, classGroupID, termID string) ([]models.ReportCardDetail, error)
	FindDetailByID(ctx context.Context, id string) (*models.ReportCardDetail, error)
	FindForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ReportCard, error)
	Upsert(ctx context.Context, exec sqlx.ExtContext, card *models.ReportCard) (string, error)
	UpsertSubjects(ctx context.Context, exec sqlx.ExtContext, subjects []models.ReportCardSubject) error
	DeleteSubjectsExcept(ctx context.Context, exec sqlx.ExtContext, reportCardID string, keep []string) error
	SetLockedAt(ctx context.Context, exec sqlx.ExtContext, id string, lockedAt *time.Time) error
	UpdateEditorial(ctx context.Context, exec sqlx.ExtContext, card *models.ReportCard) error
	FindSubjectForUpdate(ctx context.Context, exec sqlx.ExtContext, reportCardID, subjectID string) (*models.ReportCardSubject, error)
	UpdateSubject(ctx context.Context, exec sqlx.ExtContext, subject *models.ReportCardSubject) error
	RecomputeTotals(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type generationLocker interface {
	Acquire(ctx context.Context, classGroupID, termID string) (func(), error)
}

// ReportCardConfig tunes the builder.
type ReportCardConfig struct {
	SkillPolicy grading.SkillPolicy
	DefaultKKM  float64
	CacheTTL    time.Duration
}

// ReportCardDeps groups the readers and stores the report card service needs.
type ReportCardDeps struct {
	ClassGroups classGroupReader
	Terms       termReader
	Enrollments classEnrollmentLister
	Assignments teachingAssignmentLister
	Scores      assessmentScoreLister
	KKM         kkmReader
	Attendance  attendanceSummaryReader
	Cards       reportCardStore
	Tx          txProvider
	Locks       generationLocker
	Cache       *CacheService
	Metrics     *MetricsService
	Exporter    *ExportService
}

// ReportCardService builds, edits and locks report cards.
type ReportCardService struct {
	classGroups classGroupReader
	terms       termReader
	enrollments classEnrollmentLister
	assignments teachingAssignmentLister
	scores      assessmentScoreLister
	kkm         kkmReader
	attendance  attendanceSummaryReader
	cards       reportCardStore
	tx          txProvider
	locks       generationLocker
	cache       *CacheService
	metrics     *MetricsService
	exporter    *ExportService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         ReportCardConfig
}

// NewReportCardService wires the report card workflows.
func NewReportCardService(deps ReportCardDeps, cfg ReportCardConfig, validate *validator.Validate, logger *zap.Logger) *ReportCardService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SkillPolicy == "" {
		cfg.SkillPolicy = grading.SkillMirrorKnowledge
	}
	if cfg.DefaultKKM <= 0 {
		cfg.DefaultKKM = models.DefaultKKM
	}
	if deps.Locks == nil {
		deps.Locks = NewGenerationLock(nil, 0, logger)
	}
	if deps.Exporter == nil {
		deps.Exporter = NewExportService(nil, nil)
	}
	return &ReportCardService{
		classGroups: deps.ClassGroups,
		terms:       deps.Terms,
		enrollments: deps.Enrollments,
		assignments: deps.Assignments,
		scores:      deps.Scores,
		kkm:         deps.KKM,
		attendance:  deps.Attendance,
		cards:       deps.Cards,
		tx:          deps.Tx,
		locks:       deps.Locks,
		cache:       deps.Cache,
		metrics:     deps.Metrics,
		exporter:    deps.Exporter,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
	}
}

type generationInputs struct {
	enrollments []models.ClassEnrollmentDetail
	assignments []models.TeachingAssignment
	kkm         map[string]float64
	scores      []models.ScoredAssessment
	attendance  map[string]models.AttendanceSummary
	existing    map[string]models.ReportCardDetail
}

type builtReportCard struct {
	card     models.ReportCard
	subjects []models.ReportCardSubject
}

// Generate recomputes the report cards of every student enrolled in the class group for the term.
func (s *ReportCardService) Generate(ctx context.Context, req dto.GenerateReportCardsRequest, actorID string) (*dto.GenerateReportCardsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}
	start := time.Now()

	group, term, err := s.loadScope(ctx, req.ClassGroupID, req.TermID)
	if err != nil {
		return nil, err
	}

	release, err := s.locks.Acquire(ctx, group.ID, term.ID)
	if err != nil {
		s.metrics.ObserveGeneration(GenerationOutcomeConflict, 0, time.Since(start))
		return nil, err
	}
	defer release()

	count, err := s.generate(ctx, group, term, actorID)
	outcome := GenerationOutcomeSuccess
	switch {
	case appErrors.Is(err, appErrors.ErrLocked):
		outcome = GenerationOutcomeLocked
	case err != nil:
		outcome = GenerationOutcomeFailure
	}
	s.metrics.ObserveGeneration(outcome, count, time.Since(start))
	if err != nil {
		s.logger.Warn("report card generation failed",
			zap.String("class_group_id", group.ID),
			zap.String("term_id", term.ID),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, reportCardListKey(group.ID, term.ID))
	s.logger.Info("report cards generated",
		zap.String("class_group_id", group.ID),
		zap.String("term_id", term.ID),
		zap.Int("count", count),
		zap.Duration("duration", time.Since(start)),
	)
	return &dto.GenerateReportCardsResponse{GeneratedCount: count}, nil
}

func (s *ReportCardService) loadScope(ctx context.Context, classGroupID, termID string) (*models.ClassGroup, *models.Term, error) {
	group, err := s.classGroups.FindByID(ctx, classGroupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "class group not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class group")
	}
	term, err := s.terms.FindByID(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	if group.TermID != term.ID {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "class group does not belong to the term")
	}
	return group, term, nil
}

func (s *ReportCardService) generate(ctx context.Context, group *models.ClassGroup, term *models.Term, actorID string) (int, error) {
	inputs, err := s.loadInputs(ctx, group.ID, term.ID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report card inputs")
	}

	for _, card := range inputs.existing {
		if card.Locked() {
			return 0, appErrors.Clone(appErrors.ErrLocked, "report cards of this class group are locked")
		}
	}

	built, err := s.build(inputs, term.ID, actorID)
	if err != nil {
		return 0, err
	}
	if err := s.persist(ctx, built); err != nil {
		return 0, err
	}
	return len(built), nil
}

// loadInputs reads everything a run needs. Assignments feed the score query and
// enrollments feed the attendance query, so those pairs are chained.
func (s *ReportCardService) loadInputs(ctx context.Context, classGroupID, termID string) (*generationInputs, error) {
	inputs := &generationInputs{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		enrollments, err := s.enrollments.ListByClassGroup(gctx, classGroupID)
		if err != nil {
			return err
		}
		studentIDs := make([]string, 0, len(enrollments))
		for _, e := range enrollments {
			studentIDs = append(studentIDs, e.StudentID)
		}
		attendance, err := s.attendance.SummarizeMany(gctx, studentIDs, termID)
		if err != nil {
			return err
		}
		inputs.enrollments = enrollments
		inputs.attendance = attendance
		return nil
	})

	g.Go(func() error {
		assignments, err := s.assignments.ListByClassGroupAndTerm(gctx, classGroupID, termID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(assignments))
		for _, a := range assignments {
			ids = append(ids, a.ID)
		}
		scores, err := s.scores.ListByAssignments(gctx, ids)
		if err != nil {
			return err
		}
		inputs.assignments = assignments
		inputs.scores = scores
		return nil
	})

	g.Go(func() error {
		kkm, err := s.kkm.MapByTerm(gctx, termID)
		if err != nil {
			return err
		}
		inputs.kkm = kkm
		return nil
	})

	g.Go(func() error {
		cards, err := s.cards.ListByClassAndTerm(gctx, classGroupID, termID)
		if err != nil {
			return err
		}
		existing := make(map[string]models.ReportCardDetail, len(cards))
		for _, card := range cards {
			existing[card.ClassEnrollmentID] = card
		}
		inputs.existing = existing
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}

func (s *ReportCardService) build(inputs *generationInputs, termID, actorID string) ([]builtReportCard, error) {
	// Subjects are keyed by subject id; two assignments of the same subject merge.
	subjectOf := make(map[string]string, len(inputs.assignments))
	subjectOrder := make([]string, 0, len(inputs.assignments))
	seen := make(map[string]bool, len(inputs.assignments))
	for _, a := range inputs.assignments {
		subjectOf[a.ID] = a.SubjectID
		if !seen[a.SubjectID] {
			seen[a.SubjectID] = true
			subjectOrder = append(subjectOrder, a.SubjectID)
		}
	}

	scores := make(map[string]map[string][]grading.WeightedScore)
	for _, sc := range inputs.scores {
		if err := grading.ValidateScore(sc.Score, sc.MaxScore); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("invalid score for assessment %s", sc.AssessmentID))
		}
		subjectID, ok := subjectOf[sc.TeachingAssignmentID]
		if !ok {
			continue
		}
		byStudent, ok := scores[subjectID]
		if !ok {
			byStudent = make(map[string][]grading.WeightedScore)
			scores[subjectID] = byStudent
		}
		byStudent[sc.StudentID] = append(byStudent[sc.StudentID], grading.WeightedScore{Raw: sc.Score, MaxScore: sc.MaxScore, Weight: sc.Weight})
	}

	var generatedBy *string
	if actorID != "" {
		generatedBy = &actorID
	}
	now := time.Now().UTC()

	built := make([]builtReportCard, 0, len(inputs.enrollments))
	entries := make([]grading.RankEntry, 0, len(inputs.enrollments))
	for _, enrollment := range inputs.enrollments {
		subjects := make([]models.ReportCardSubject, 0, len(subjectOrder))
		averages := make([]float64, 0, len(subjectOrder))
		for _, subjectID := range subjectOrder {
			result, ok := grading.AggregateSubject(scores[subjectID][enrollment.StudentID], s.kkmFor(inputs.kkm, subjectID), s.cfg.SkillPolicy)
			if !ok {
				continue
			}
			subjects = append(subjects, subjectRow(subjectID, result))
			averages = append(averages, result.Average)
		}
		total, average, count := grading.StudentTotals(averages)
		summary := inputs.attendance[enrollment.StudentID]

		card := models.ReportCard{
			ClassEnrollmentID: enrollment.ID,
			TermID:            termID,
			TotalScore:        total,
			AverageScore:      average,
			SubjectCount:      count,
			TotalStudents:     len(inputs.enrollments),
			SickDays:          summary.Sick,
			PermitDays:        summary.Permit,
			AbsentDays:        summary.Absent,
			GeneratedAt:       now,
			GeneratedBy:       generatedBy,
		}
		if existing, ok := inputs.existing[enrollment.ID]; ok {
			card.ID = existing.ID
		}
		built = append(built, builtReportCard{card: card, subjects: subjects})
		entries = append(entries, grading.RankEntry{EnrollmentID: enrollment.ID, StudentName: enrollment.StudentName, Average: average})
	}

	ranks := grading.Rank(entries)
	for i := range built {
		built[i].card.Rank = ranks[built[i].card.ClassEnrollmentID]
	}
	return built, nil
}

func (s *ReportCardService) kkmFor(table map[string]float64, subjectID string) float64 {
	if kkm, ok := table[subjectID]; ok {
		return kkm
	}
	return s.cfg.DefaultKKM
}

func subjectRow(subjectID string, result grading.SubjectResult) models.ReportCardSubject {
	row := models.ReportCardSubject{
		SubjectID:      subjectID,
		KnowledgeScore: result.Average,
		KnowledgeGrade: string(result.KnowledgeGrade),
		SkillScore:     result.SkillScore,
		KKM:            result.KKM,
		Passed:         result.Passed,
	}
	if result.SkillGrade != nil {
		grade := string(*result.SkillGrade)
		row.SkillGrade = &grade
	}
	return row
}

func (s *ReportCardService) persist(ctx context.Context, built []builtReportCard) (err error) {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range built {
		item := &built[i]
		id, upsertErr := s.cards.Upsert(ctx, tx, &item.card)
		if errors.Is(upsertErr, sql.ErrNoRows) {
			err = appErrors.Clone(appErrors.ErrLocked, "report card was locked during generation")
			return err
		}
		if upsertErr != nil {
			err = appErrors.Wrap(upsertErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save report card")
			return err
		}
		keep := make([]string, 0, len(item.subjects))
		for j := range item.subjects {
			item.subjects[j].ReportCardID = id
			keep = append(keep, item.subjects[j].SubjectID)
		}
		if err = s.cards.UpsertSubjects(ctx, tx, item.subjects); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save report card subjects")
			return err
		}
		if err = s.cards.DeleteSubjectsExcept(ctx, tx, id, keep); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prune report card subjects")
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit report cards")
		return err
	}
	return nil
}

// List returns the report cards of a class group for a term ordered by rank.
func (s *ReportCardService) List(ctx context.Context, query dto.ReportCardListQuery) ([]models.ReportCardDetail, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "class_group_id and term_id are required")
	}
	key := reportCardListKey(query.ClassGroupID, query.TermID)
	var cached []models.ReportCardDetail
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	cards, err := s.cards.ListByClassAndTerm(ctx, query.ClassGroupID, query.TermID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list report cards")
	}
	if cards == nil {
		cards = []models.ReportCardDetail{}
	}
	_ = s.cache.Set(ctx, key, cards, s.cfg.CacheTTL)
	return cards, nil
}

// Get returns one report card with its subjects.
func (s *ReportCardService) Get(ctx context.Context, id string) (*models.ReportCardDetail, error) {
	card, err := s.cards.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report card not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report card")
	}
	return card, nil
}

// Update edits subject rows and editorial fields of a draft report card.
func (s *ReportCardService) Update(ctx context.Context, id string, req dto.UpdateReportCardRequest) (_ *models.ReportCardDetail, err error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report card payload")
	}
	status, err := parseOptionalStatus(req.PromotionStatus)
	if err != nil {
		return nil, err
	}
	if err := validateSubjectEdits(req.Subjects); err != nil {
		return nil, err
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	card, err := s.cards.FindForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = appErrors.Clone(appErrors.ErrNotFound, "report card not found")
			return nil, err
		}
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report card")
		return nil, err
	}
	if card.Locked() {
		err = appErrors.Clone(appErrors.ErrLocked, "report card is locked")
		return nil, err
	}

	scoreChanged := false
	for _, edit := range req.Subjects {
		subject, findErr := s.cards.FindSubjectForUpdate(ctx, tx, card.ID, edit.SubjectID)
		if findErr != nil {
			if errors.Is(findErr, sql.ErrNoRows) {
				err = appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("subject %s not found on report card", edit.SubjectID))
				return nil, err
			}
			err = appErrors.Wrap(findErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report card subject")
			return nil, err
		}
		applySubjectEdit(subject, edit)
		if edit.KnowledgeScore != nil {
			scoreChanged = true
		}
		if err = s.cards.UpdateSubject(ctx, tx, subject); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update report card subject")
			return nil, err
		}
	}
	if scoreChanged {
		if err = s.cards.RecomputeTotals(ctx, tx, card.ID); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to recompute report card totals")
			return nil, err
		}
	}

	if status != nil || req.HomeroomNote != nil {
		if status != nil {
			card.PromotionStatus = status
		}
		if req.HomeroomNote != nil {
			card.HomeroomNote = req.HomeroomNote
		}
		if err = s.cards.UpdateEditorial(ctx, tx, card); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update report card")
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit report card update")
		return nil, err
	}

	s.invalidateTerm(ctx, card.TermID)
	return s.Get(ctx, id)
}

func parseOptionalStatus(raw *string) (*models.PromotionStatus, error) {
	if raw == nil {
		return nil, nil
	}
	status, ok := models.ParsePromotionStatus(*raw)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown promotion status %q", *raw))
	}
	return &status, nil
}

func validateSubjectEdits(edits []dto.SubjectEditRequest) error {
	seen := make(map[string]bool, len(edits))
	for _, edit := range edits {
		if seen[edit.SubjectID] {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("subject %s edited more than once", edit.SubjectID))
		}
		seen[edit.SubjectID] = true
		for _, score := range []*float64{edit.KnowledgeScore, edit.SkillScore} {
			if score != nil && (*score < 0 || *score > 100) {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("score for subject %s must be between 0 and 100", edit.SubjectID))
			}
		}
		for _, grade := range []*string{edit.KnowledgeGrade, edit.SkillGrade} {
			if grade != nil && !grading.Grade(normalizeGrade(*grade)).Valid() {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("grade %q for subject %s is not on the A-E scale", *grade, edit.SubjectID))
			}
		}
	}
	return nil
}

func normalizeGrade(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func applySubjectEdit(subject *models.ReportCardSubject, edit dto.SubjectEditRequest) {
	if edit.KnowledgeScore != nil {
		subject.KnowledgeScore = *edit.KnowledgeScore
		subject.KnowledgeGrade = string(grading.GradeFor(*edit.KnowledgeScore))
	}
	if edit.KnowledgeGrade != nil {
		subject.KnowledgeGrade = normalizeGrade(*edit.KnowledgeGrade)
	}
	if edit.SkillScore != nil {
		score := *edit.SkillScore
		grade := string(grading.GradeFor(score))
		subject.SkillScore = &score
		subject.SkillGrade = &grade
	}
	if edit.SkillGrade != nil {
		grade := normalizeGrade(*edit.SkillGrade)
		subject.SkillGrade = &grade
	}
	if edit.Remark != nil {
		subject.Remark = edit.Remark
	}
	subject.Passed = grading.Passes(subject.KnowledgeScore, subject.KKM)
}

// Lock finalizes a report card. Locking a locked card keeps its timestamp.
func (s *ReportCardService) Lock(ctx context.Context, id string) (*dto.ToggleLockResponse, error) {
	return s.setLock(ctx, id, func(bool) bool { return true })
}

// Unlock returns a report card to draft.
func (s *ReportCardService) Unlock(ctx context.Context, id string) (*dto.ToggleLockResponse, error) {
	return s.setLock(ctx, id, func(bool) bool { return false })
}

// ToggleLock flips the lock state and reports the new state.
func (s *ReportCardService) ToggleLock(ctx context.Context, id string) (*dto.ToggleLockResponse, error) {
	return s.setLock(ctx, id, func(locked bool) bool { return !locked })
}

func (s *ReportCardService) setLock(ctx context.Context, id string, next func(locked bool) bool) (_ *dto.ToggleLockResponse, err error) {
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	card, err := s.cards.FindForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = appErrors.Clone(appErrors.ErrNotFound, "report card not found")
			return nil, err
		}
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report card")
		return nil, err
	}

	locked := next(card.Locked())
	if locked != card.Locked() {
		var lockedAt *time.Time
		if locked {
			now := time.Now().UTC()
			lockedAt = &now
		}
		if err = s.cards.SetLockedAt(ctx, tx, card.ID, lockedAt); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update report card lock")
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit report card lock")
		return nil, err
	}

	s.invalidateTerm(ctx, card.TermID)
	s.logger.Info("report card lock changed", zap.String("report_card_id", card.ID), zap.Bool("locked", locked))
	return &dto.ToggleLockResponse{Locked: locked}, nil
}

// Export renders a report card for printing in either lock state.
func (s *ReportCardService) Export(ctx context.Context, id string, format dto.ExportFormat) (*dto.ExportedFile, error) {
	card, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.exporter.RenderReportCard(card, format)
}

func (s *ReportCardService) invalidateTerm(ctx context.Context, termID string) {
	_ = s.cache.Invalidate(ctx, reportCardListKey("*", termID))
}
