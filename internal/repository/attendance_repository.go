package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-rapor-api/internal/models"
)

// AttendanceRepository aggregates attendance rows.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceSummarySelect = `SELECT a.student_id, ta.term_id,
        COUNT(*) FILTER (WHERE a.status = 'S') AS sick,
        COUNT(*) FILTER (WHERE a.status = 'I') AS permit,
        COUNT(*) FILTER (WHERE a.status = 'A') AS absent
        FROM attendances a
        JOIN teaching_assignments ta ON ta.id = a.teaching_assignment_id`

// SummarizeMany counts sick/permit/absent rows per student within a term.
// Students without rows are absent from the result.
func (r *AttendanceRepository) SummarizeMany(ctx context.Context, studentIDs []string, termID string) (map[string]models.AttendanceSummary, error) {
	result := make(map[string]models.AttendanceSummary, len(studentIDs))
	if len(studentIDs) == 0 {
		return result, nil
	}
	query := attendanceSummarySelect + `
        WHERE ta.term_id = $1 AND a.student_id = ANY($2)
        GROUP BY a.student_id, ta.term_id`
	var rows []models.AttendanceSummary
	if err := r.db.SelectContext(ctx, &rows, query, termID, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("summarize attendance: %w", err)
	}
	for _, row := range rows {
		result[row.StudentID] = row
	}
	return result, nil
}

// Summarize counts sick/permit/absent rows for one student within a term.
func (r *AttendanceRepository) Summarize(ctx context.Context, studentID, termID string) (*models.AttendanceSummary, error) {
	summaries, err := r.SummarizeMany(ctx, []string{studentID}, termID)
	if err != nil {
		return nil, err
	}
	summary, ok := summaries[studentID]
	if !ok {
		summary = models.AttendanceSummary{StudentID: studentID, TermID: termID}
	}
	return &summary, nil
}
