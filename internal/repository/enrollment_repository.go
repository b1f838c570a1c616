package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-rapor-api/internal/models"
)

// EnrollmentRepository handles persistence of class enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByClassGroup returns every enrollment of a class group with student info.
func (r *EnrollmentRepository) ListByClassGroup(ctx context.Context, classGroupID string) ([]models.ClassEnrollmentDetail, error) {
	const query = `SELECT e.id, e.class_group_id, e.student_id, e.enrolled_at, s.full_name AS student_name, s.nis AS student_nis
        FROM class_enrollments e
        JOIN students s ON s.id = e.student_id
        WHERE e.class_group_id = $1
        ORDER BY s.full_name, e.id`
	var enrollments []models.ClassEnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, classGroupID); err != nil {
		return nil, fmt.Errorf("list class enrollments: %w", err)
	}
	return enrollments, nil
}

// CreateIfAbsent inserts the enrollment unless the student is already in the class group.
// It reports whether a row was created.
func (r *EnrollmentRepository) CreateIfAbsent(ctx context.Context, exec sqlx.ExtContext, enrollment *models.ClassEnrollment) (bool, error) {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	const query = `INSERT INTO class_enrollments (id, class_group_id, student_id, enrolled_at)
        VALUES (:id, :class_group_id, :student_id, :enrolled_at)
        ON CONFLICT (class_group_id, student_id) DO NOTHING`
	res, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, enrollment)
	if err != nil {
		return false, fmt.Errorf("create enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create enrollment rows: %w", err)
	}
	return affected > 0, nil
}
