package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessmentScoreRepositoryListByAssignments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssessmentScoreRepository(db)

	rows := sqlmock.NewRows([]string{"teaching_assignment_id", "assessment_id", "student_id", "score", "max_score", "weight"}).
		AddRow("ta-1", "as-1", "stu-1", 40.0, 50.0, 30).
		AddRow("ta-1", "as-2", "stu-1", 76.0, 100.0, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.teaching_assignment_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	scores, err := repo.ListByAssignments(context.Background(), []string{"ta-1"})
	require.NoError(t, err)
	require.Len(t, scores, 2)
	require.NotNil(t, scores[0].Weight)
	assert.Equal(t, 30, *scores[0].Weight)
	assert.Nil(t, scores[1].Weight)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentScoreRepositoryNoAssignments(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()

	scores, err := NewAssessmentScoreRepository(db).ListByAssignments(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, scores)
}

func TestKKMRepositoryMapByTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewKKMRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT subject_id, term_id, kkm FROM subject_kkms WHERE term_id = $1")).
		WithArgs("term-1").
		WillReturnRows(sqlmock.NewRows([]string{"subject_id", "term_id", "kkm"}).AddRow("math", "term-1", 75.0))

	kkm, err := repo.MapByTerm(context.Background(), "term-1")
	require.NoError(t, err)
	assert.Equal(t, 75.0, kkm["math"])
	_, ok := kkm["art"]
	assert.False(t, ok)
}

func TestTeachingAssignmentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeachingAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "term_id", "class_group_id", "subject_id", "teacher_id", "subject_name", "created_at"}).
		AddRow("ta-1", "term-1", "cg-1", "math", "tch-1", "Matematika", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE ta.class_group_id = $1 AND ta.term_id = $2")).
		WithArgs("cg-1", "term-1").
		WillReturnRows(rows)

	assignments, err := repo.ListByClassGroupAndTerm(context.Background(), "cg-1", "term-1")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "Matematika", assignments[0].SubjectName)
}

func TestStudentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("stu-1", "graduated", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), nil, "stu-1", "graduated"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
