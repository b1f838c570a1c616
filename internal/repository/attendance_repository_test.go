package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceRepositorySummarizeMany(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "term_id", "sick", "permit", "absent"}).
		AddRow("stu-1", "term-1", 2, 1, 0)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE ta.term_id = $1 AND a.student_id = ANY($2)")).
		WithArgs("term-1", sqlmock.AnyArg()).
		WillReturnRows(rows)

	result, err := repo.SummarizeMany(context.Background(), []string{"stu-1", "stu-2"}, "term-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result["stu-1"].Sick)
	assert.Equal(t, 1, result["stu-1"].Permit)
	_, ok := result["stu-2"]
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositorySummarizeDefaultsToZero(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM attendances a")).
		WithArgs("term-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "term_id", "sick", "permit", "absent"}))

	summary, err := repo.Summarize(context.Background(), "stu-9", "term-1")
	require.NoError(t, err)
	assert.Equal(t, "stu-9", summary.StudentID)
	assert.Zero(t, summary.Sick+summary.Permit+summary.Absent)
}

func TestAttendanceRepositorySummarizeManyEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	result, err := repo.SummarizeMany(context.Background(), nil, "term-1")
	require.NoError(t, err)
	assert.Empty(t, result)
}
