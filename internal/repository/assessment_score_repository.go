package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-rapor-api/internal/models"
)

// AssessmentScoreRepository reads recorded assessment scores.
type AssessmentScoreRepository struct {
	db *sqlx.DB
}

// NewAssessmentScoreRepository constructs the repository.
func NewAssessmentScoreRepository(db *sqlx.DB) *AssessmentScoreRepository {
	return &AssessmentScoreRepository{db: db}
}

// ListByAssignments returns every score under the given teaching assignments
// joined with the assessment weight and maximum.
func (r *AssessmentScoreRepository) ListByAssignments(ctx context.Context, assignmentIDs []string) ([]models.ScoredAssessment, error) {
	if len(assignmentIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT a.teaching_assignment_id, a.id AS assessment_id, sc.student_id, sc.score, a.max_score, a.weight
        FROM assessment_scores sc
        JOIN assessments a ON a.id = sc.assessment_id
        WHERE a.teaching_assignment_id = ANY($1)`
	var rows []models.ScoredAssessment
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(assignmentIDs)); err != nil {
		return nil, fmt.Errorf("list assessment scores: %w", err)
	}
	return rows, nil
}
