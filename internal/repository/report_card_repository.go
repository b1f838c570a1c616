package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-rapor-api/internal/models"
)

// ReportCardRepository persists report cards and their subject rows.
type ReportCardRepository struct {
	db *sqlx.DB
}

// NewReportCardRepository constructs the repository.
func NewReportCardRepository(db *sqlx.DB) *ReportCardRepository {
	return &ReportCardRepository{db: db}
}

const reportCardColumns = `rc.id, rc.class_enrollment_id, rc.term_id, rc.total_score, rc.average_score, rc.subject_count,
        rc.rank, rc.total_students, rc.sick_days, rc.permit_days, rc.absent_days, rc.promotion_status,
        rc.homeroom_note, rc.locked_at, rc.generated_at, rc.generated_by, rc.created_at, rc.updated_at`

const reportCardDetailFrom = `FROM report_cards rc
        JOIN class_enrollments e ON e.id = rc.class_enrollment_id
        JOIN students s ON s.id = e.student_id
        JOIN class_groups cg ON cg.id = e.class_group_id
        JOIN terms t ON t.id = rc.term_id`

const reportCardDetailSelect = `SELECT ` + reportCardColumns + `,
        e.student_id, s.full_name AS student_name, s.nis AS student_nis,
        e.class_group_id, cg.name AS class_name, t.name AS term_name
        ` + reportCardDetailFrom

// ListByClassAndTerm returns report cards of a class group for a term ordered by rank.
func (r *ReportCardRepository) ListByClassAndTerm(ctx context.Context, classGroupID, termID string) ([]models.ReportCardDetail, error) {
	query := reportCardDetailSelect + `
        WHERE e.class_group_id = $1 AND rc.term_id = $2
        ORDER BY rc.rank, s.full_name`
	var cards []models.ReportCardDetail
	if err := r.db.SelectContext(ctx, &cards, query, classGroupID, termID); err != nil {
		return nil, fmt.Errorf("list report cards: %w", err)
	}
	return cards, nil
}

// FindDetailByID returns a report card with context and subjects.
func (r *ReportCardRepository) FindDetailByID(ctx context.Context, id string) (*models.ReportCardDetail, error) {
	var card models.ReportCardDetail
	if err := r.db.GetContext(ctx, &card, reportCardDetailSelect+` WHERE rc.id = $1`, id); err != nil {
		return nil, err
	}
	subjects, err := r.ListSubjects(ctx, id)
	if err != nil {
		return nil, err
	}
	card.Subjects = subjects
	return &card, nil
}

// FindForUpdate loads a report card row and locks it for the surrounding transaction.
func (r *ReportCardRepository) FindForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ReportCard, error) {
	query := `SELECT ` + reportCardColumns + ` FROM report_cards rc WHERE rc.id = $1 FOR UPDATE`
	var card models.ReportCard
	if err := sqlx.GetContext(ctx, target(r.db, exec), &card, query, id); err != nil {
		return nil, err
	}
	return &card, nil
}

// ListSubjects returns the subject rows of a report card.
func (r *ReportCardRepository) ListSubjects(ctx context.Context, reportCardID string) ([]models.ReportCardSubject, error) {
	const query = `SELECT rs.id, rs.report_card_id, rs.subject_id, s.name AS subject_name, rs.knowledge_score, rs.knowledge_grade,
        rs.skill_score, rs.skill_grade, rs.kkm, rs.passed, rs.remark, rs.updated_at
        FROM report_card_subjects rs
        JOIN subjects s ON s.id = rs.subject_id
        WHERE rs.report_card_id = $1
        ORDER BY s.name`
	var subjects []models.ReportCardSubject
	if err := r.db.SelectContext(ctx, &subjects, query, reportCardID); err != nil {
		return nil, fmt.Errorf("list report card subjects: %w", err)
	}
	return subjects, nil
}

// Upsert writes generated totals keyed by (class_enrollment_id, term_id) and returns the stored ID.
// Editorial fields (promotion status, note, lock) survive regeneration. A locked row is left
// untouched and the call fails with an error wrapping sql.ErrNoRows.
func (r *ReportCardRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, card *models.ReportCard) (string, error) {
	now := time.Now().UTC()
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	if card.GeneratedAt.IsZero() {
		card.GeneratedAt = now
	}
	const query = `INSERT INTO report_cards (id, class_enrollment_id, term_id, total_score, average_score, subject_count, rank,
        total_students, sick_days, permit_days, absent_days, generated_at, generated_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
        ON CONFLICT (class_enrollment_id, term_id) DO UPDATE SET
            total_score = EXCLUDED.total_score,
            average_score = EXCLUDED.average_score,
            subject_count = EXCLUDED.subject_count,
            rank = EXCLUDED.rank,
            total_students = EXCLUDED.total_students,
            sick_days = EXCLUDED.sick_days,
            permit_days = EXCLUDED.permit_days,
            absent_days = EXCLUDED.absent_days,
            generated_at = EXCLUDED.generated_at,
            generated_by = EXCLUDED.generated_by,
            updated_at = EXCLUDED.updated_at
        WHERE report_cards.locked_at IS NULL
        RETURNING id`
	var id string
	err := sqlx.GetContext(ctx, target(r.db, exec), &id, query,
		card.ID, card.ClassEnrollmentID, card.TermID, card.TotalScore, card.AverageScore, card.SubjectCount, card.Rank,
		card.TotalStudents, card.SickDays, card.PermitDays, card.AbsentDays, card.GeneratedAt, card.GeneratedBy, now)
	if err != nil {
		return "", fmt.Errorf("upsert report card: %w", err)
	}
	card.ID = id
	return id, nil
}

// UpsertSubjects writes subject rows keyed by (report_card_id, subject_id). Remarks are preserved.
func (r *ReportCardRepository) UpsertSubjects(ctx context.Context, exec sqlx.ExtContext, subjects []models.ReportCardSubject) error {
	if len(subjects) == 0 {
		return nil
	}
	const query = `INSERT INTO report_card_subjects (id, report_card_id, subject_id, knowledge_score, knowledge_grade,
        skill_score, skill_grade, kkm, passed, updated_at)
        VALUES (:id, :report_card_id, :subject_id, :knowledge_score, :knowledge_grade, :skill_score, :skill_grade, :kkm, :passed, :updated_at)
        ON CONFLICT (report_card_id, subject_id) DO UPDATE SET
            knowledge_score = EXCLUDED.knowledge_score,
            knowledge_grade = EXCLUDED.knowledge_grade,
            skill_score = EXCLUDED.skill_score,
            skill_grade = EXCLUDED.skill_grade,
            kkm = EXCLUDED.kkm,
            passed = EXCLUDED.passed,
            updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	ext := target(r.db, exec)
	for i := range subjects {
		if subjects[i].ID == "" {
			subjects[i].ID = uuid.NewString()
		}
		subjects[i].UpdatedAt = now
		if _, err := sqlx.NamedExecContext(ctx, ext, query, subjects[i]); err != nil {
			return fmt.Errorf("upsert report card subject: %w", err)
		}
	}
	return nil
}

// DeleteSubjectsExcept removes subject rows of a card that the latest run did not produce.
func (r *ReportCardRepository) DeleteSubjectsExcept(ctx context.Context, exec sqlx.ExtContext, reportCardID string, keep []string) error {
	const query = `DELETE FROM report_card_subjects WHERE report_card_id = $1 AND NOT (subject_id = ANY($2))`
	if keep == nil {
		keep = []string{}
	}
	if _, err := target(r.db, exec).ExecContext(ctx, query, reportCardID, pq.Array(keep)); err != nil {
		return fmt.Errorf("prune report card subjects: %w", err)
	}
	return nil
}

// SetLockedAt sets or clears the lock timestamp.
func (r *ReportCardRepository) SetLockedAt(ctx context.Context, exec sqlx.ExtContext, id string, lockedAt *time.Time) error {
	const query = `UPDATE report_cards SET locked_at = $2, updated_at = $3 WHERE id = $1`
	if _, err := target(r.db, exec).ExecContext(ctx, query, id, lockedAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("set report card lock: %w", err)
	}
	return nil
}

// UpdateEditorial stores promotion status and homeroom note.
func (r *ReportCardRepository) UpdateEditorial(ctx context.Context, exec sqlx.ExtContext, card *models.ReportCard) error {
	card.UpdatedAt = time.Now().UTC()
	const query = `UPDATE report_cards SET promotion_status = :promotion_status, homeroom_note = :homeroom_note, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, card); err != nil {
		return fmt.Errorf("update report card: %w", err)
	}
	return nil
}

// FindSubjectForUpdate loads one subject row of a card inside the transaction.
func (r *ReportCardRepository) FindSubjectForUpdate(ctx context.Context, exec sqlx.ExtContext, reportCardID, subjectID string) (*models.ReportCardSubject, error) {
	const query = `SELECT id, report_card_id, subject_id, knowledge_score, knowledge_grade, skill_score, skill_grade, kkm, passed, remark, updated_at
        FROM report_card_subjects WHERE report_card_id = $1 AND subject_id = $2 FOR UPDATE`
	var subject models.ReportCardSubject
	if err := sqlx.GetContext(ctx, target(r.db, exec), &subject, query, reportCardID, subjectID); err != nil {
		return nil, err
	}
	return &subject, nil
}

// UpdateSubject stores an edited subject row.
func (r *ReportCardRepository) UpdateSubject(ctx context.Context, exec sqlx.ExtContext, subject *models.ReportCardSubject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE report_card_subjects SET knowledge_score = :knowledge_score, knowledge_grade = :knowledge_grade,
        skill_score = :skill_score, skill_grade = :skill_grade, passed = :passed, remark = :remark, updated_at = :updated_at
        WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, subject); err != nil {
		return fmt.Errorf("update report card subject: %w", err)
	}
	return nil
}

// RecomputeTotals refreshes total, average and subject count from the card's subject rows.
func (r *ReportCardRepository) RecomputeTotals(ctx context.Context, exec sqlx.ExtContext, id string) error {
	const query = `UPDATE report_cards rc SET
            total_score = agg.total,
            subject_count = agg.cnt,
            average_score = CASE WHEN agg.cnt > 0 THEN agg.total / agg.cnt ELSE 0 END,
            updated_at = $2
        FROM (SELECT COALESCE(SUM(knowledge_score), 0) AS total, COUNT(*) AS cnt
              FROM report_card_subjects WHERE report_card_id = $1) agg
        WHERE rc.id = $1`
	if _, err := target(r.db, exec).ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("recompute report card totals: %w", err)
	}
	return nil
}
