package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-rapor-api/internal/models"
	appErrors "github.com/noah-isme/sma-rapor-api/pkg/errors"
)

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

type classGroupStub struct {
	groups map[string]*models.ClassGroup
	calls  int
}

func (s *classGroupStub) FindByID(ctx context.Context, id string) (*models.ClassGroup, error) {
	s.calls++
	group, ok := s.groups[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return group, nil
}

type termStub struct {
	terms map[string]*models.Term
	next  *models.Term
}

func (s *termStub) FindByID(ctx context.Context, id string) (*models.Term, error) {
	term, ok := s.terms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return term, nil
}

func (s *termStub) FindActive(ctx context.Context) (*models.Term, error) {
	for _, term := range s.terms {
		if term.IsActive {
			return term, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *termStub) FindNextAfter(ctx context.Context, after time.Time) (*models.Term, error) {
	if s.next == nil || !s.next.StartDate.After(after) {
		return nil, sql.ErrNoRows
	}
	return s.next, nil
}

type enrollmentStub struct {
	mu          sync.Mutex
	enrollments map[string][]models.ClassEnrollmentDetail
	created     []models.ClassEnrollment
	failFor     string
}

func (s *enrollmentStub) ListByClassGroup(ctx context.Context, classGroupID string) ([]models.ClassEnrollmentDetail, error) {
	return s.enrollments[classGroupID], nil
}

func (s *enrollmentStub) CreateIfAbsent(ctx context.Context, exec sqlx.ExtContext, enrollment *models.ClassEnrollment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor != "" && enrollment.StudentID == s.failFor {
		return false, errors.New("insert class enrollment: connection reset")
	}
	s.created = append(s.created, *enrollment)
	return true, nil
}

type assignmentStub struct {
	assignments []models.TeachingAssignment
}

func (s *assignmentStub) ListByClassGroupAndTerm(ctx context.Context, classGroupID, termID string) ([]models.TeachingAssignment, error) {
	return s.assignments, nil
}

type scoreStub struct {
	scores []models.ScoredAssessment
}

func (s *scoreStub) ListByAssignments(ctx context.Context, assignmentIDs []string) ([]models.ScoredAssessment, error) {
	return s.scores, nil
}

type kkmStub struct {
	table map[string]float64
}

func (s *kkmStub) MapByTerm(ctx context.Context, termID string) (map[string]float64, error) {
	return s.table, nil
}

type attendanceStub struct {
	summaries map[string]models.AttendanceSummary
}

func (s *attendanceStub) SummarizeMany(ctx context.Context, studentIDs []string, termID string) (map[string]models.AttendanceSummary, error) {
	return s.summaries, nil
}

func (s *attendanceStub) Summarize(ctx context.Context, studentID, termID string) (*models.AttendanceSummary, error) {
	summary, ok := s.summaries[studentID]
	if !ok {
		summary = models.AttendanceSummary{StudentID: studentID, TermID: termID}
	}
	return &summary, nil
}

type reportCardStoreStub struct {
	mu         sync.Mutex
	existing   []models.ReportCardDetail
	cards      map[string]*models.ReportCard
	rows       map[string]*models.ReportCardSubject
	detail     *models.ReportCardDetail
	upserted   []models.ReportCard
	subjects   map[string][]models.ReportCardSubject
	kept       map[string][]string
	lockWrites []*time.Time
	updated    []models.ReportCardSubject
	editorial  []models.ReportCard
	recomputed []string
	upsertErr  error
}

func newReportCardStoreStub() *reportCardStoreStub {
	return &reportCardStoreStub{
		cards:    make(map[string]*models.ReportCard),
		rows:     make(map[string]*models.ReportCardSubject),
		subjects: make(map[string][]models.ReportCardSubject),
		kept:     make(map[string][]string),
	}
}

func (s *reportCardStoreStub) ListByClassAndTerm(ctx context.Context, classGroupID, termID string) ([]models.ReportCardDetail, error) {
	return s.existing, nil
}

func (s *reportCardStoreStub) FindDetailByID(ctx context.Context, id string) (*models.ReportCardDetail, error) {
	if s.detail == nil || s.detail.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.detail, nil
}

func (s *reportCardStoreStub) FindForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ReportCard, error) {
	card, ok := s.cards[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *card
	return &clone, nil
}

func (s *reportCardStoreStub) Upsert(ctx context.Context, exec sqlx.ExtContext, card *models.ReportCard) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return "", s.upsertErr
	}
	if card.ID == "" {
		card.ID = "rc-" + card.ClassEnrollmentID
	}
	s.upserted = append(s.upserted, *card)
	return card.ID, nil
}

func (s *reportCardStoreStub) UpsertSubjects(ctx context.Context, exec sqlx.ExtContext, subjects []models.ReportCardSubject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, subject := range subjects {
		s.subjects[subject.ReportCardID] = append(s.subjects[subject.ReportCardID], subject)
	}
	return nil
}

func (s *reportCardStoreStub) DeleteSubjectsExcept(ctx context.Context, exec sqlx.ExtContext, reportCardID string, keep []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kept[reportCardID] = keep
	return nil
}

func (s *reportCardStoreStub) SetLockedAt(ctx context.Context, exec sqlx.ExtContext, id string, lockedAt *time.Time) error {
	s.lockWrites = append(s.lockWrites, lockedAt)
	return nil
}

func (s *reportCardStoreStub) UpdateEditorial(ctx context.Context, exec sqlx.ExtContext, card *models.ReportCard) error {
	s.editorial = append(s.editorial, *card)
	return nil
}

func (s *reportCardStoreStub) FindSubjectForUpdate(ctx context.Context, exec sqlx.ExtContext, reportCardID, subjectID string) (*models.ReportCardSubject, error) {
	row, ok := s.rows[reportCardID+"|"+subjectID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *row
	return &clone, nil
}

func (s *reportCardStoreStub) UpdateSubject(ctx context.Context, exec sqlx.ExtContext, subject *models.ReportCardSubject) error {
	s.updated = append(s.updated, *subject)
	return nil
}

func (s *reportCardStoreStub) RecomputeTotals(ctx context.Context, exec sqlx.ExtContext, id string) error {
	s.recomputed = append(s.recomputed, id)
	return nil
}

type studentStatusStub struct {
	updates map[string]models.StudentStatus
	err     error
}

func (s *studentStatusStub) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.StudentStatus) error {
	if s.err != nil {
		return s.err
	}
	if s.updates == nil {
		s.updates = make(map[string]models.StudentStatus)
	}
	s.updates[id] = status
	return nil
}

type promotionStoreStub struct {
	processed map[string]bool
	// stored holds decisions written after ProcessedStudents was read.
	stored   map[string]bool
	upserted []models.ClassPromotion
	inserted []models.ClassPromotion
	list     []models.ClassPromotionDetail
	err      error
}

func (s *promotionStoreStub) Upsert(ctx context.Context, exec sqlx.ExtContext, promotion *models.ClassPromotion) error {
	if s.err != nil {
		return s.err
	}
	s.upserted = append(s.upserted, *promotion)
	return nil
}

func (s *promotionStoreStub) InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, promotion *models.ClassPromotion) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.processed[promotion.StudentID] || s.stored[promotion.StudentID] {
		return false, nil
	}
	s.inserted = append(s.inserted, *promotion)
	return true, nil
}

func (s *promotionStoreStub) ProcessedStudents(ctx context.Context, fromTermID string, studentIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	for _, id := range studentIDs {
		if s.processed[id] {
			result[id] = true
		}
	}
	return result, nil
}

func (s *promotionStoreStub) ListByClassGroup(ctx context.Context, classGroupID string) ([]models.ClassPromotionDetail, error) {
	return s.list, nil
}

type cacheRepoStub struct {
	mu      sync.Mutex
	values  map[string]interface{}
	deleted []string
}

func (s *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if cards, ok := value.([]models.ReportCardDetail); ok {
		if target, ok := dest.(*[]models.ReportCardDetail); ok {
			*target = cards
		}
	}
	return nil
}

func (s *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]interface{})
	}
	s.values[key] = value
	return nil
}

func (s *cacheRepoStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, pattern)
	return nil
}
