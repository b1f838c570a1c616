package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-rapor-api/internal/models"
)

// TeachingAssignmentRepository reads subject/teacher bindings of a class group.
type TeachingAssignmentRepository struct {
	db *sqlx.DB
}

// NewTeachingAssignmentRepository constructs the repository.
func NewTeachingAssignmentRepository(db *sqlx.DB) *TeachingAssignmentRepository {
	return &TeachingAssignmentRepository{db: db}
}

// ListByClassGroupAndTerm returns the subject set of a class group for a term.
func (r *TeachingAssignmentRepository) ListByClassGroupAndTerm(ctx context.Context, classGroupID, termID string) ([]models.TeachingAssignment, error) {
	const query = `SELECT ta.id, ta.term_id, ta.class_group_id, ta.subject_id, ta.teacher_id, s.name AS subject_name, ta.created_at
        FROM teaching_assignments ta
        JOIN subjects s ON s.id = ta.subject_id
        WHERE ta.class_group_id = $1 AND ta.term_id = $2
        ORDER BY s.name`
	var assignments []models.TeachingAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, classGroupID, termID); err != nil {
		return nil, fmt.Errorf("list teaching assignments: %w", err)
	}
	return assignments, nil
}
