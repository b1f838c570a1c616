package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-rapor-api/internal/models"
)

var reportCardRowColumns = []string{"id", "class_enrollment_id", "term_id", "total_score", "average_score", "subject_count",
	"rank", "total_students", "sick_days", "permit_days", "absent_days", "promotion_status", "homeroom_note", "locked_at",
	"generated_at", "generated_by", "created_at", "updated_at"}

func TestReportCardRepositoryUpsertReturnsStoredID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportCardRepository(db)

	args := make([]driver.Value, 14)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (class_enrollment_id, term_id) DO UPDATE SET")).
		WithArgs(args...).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("rc-existing"))

	card := &models.ReportCard{ClassEnrollmentID: "enr-1", TermID: "term-1", TotalScore: 160, AverageScore: 80, SubjectCount: 2, Rank: 1, TotalStudents: 3}
	id, err := repo.Upsert(context.Background(), nil, card)
	require.NoError(t, err)
	assert.Equal(t, "rc-existing", id)
	assert.Equal(t, "rc-existing", card.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportCardRepositoryUpsertSkipsLockedRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportCardRepository(db)

	args := make([]driver.Value, 14)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE report_cards.locked_at IS NULL")).
		WithArgs(args...).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Upsert(context.Background(), nil, &models.ReportCard{ClassEnrollmentID: "enr-1", TermID: "term-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportCardRepositoryUpsertSubjects(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportCardRepository(db)

	for i := 0; i < 2; i++ {
		mock.ExpectExec("INSERT INTO report_card_subjects").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	subjects := []models.ReportCardSubject{
		{ReportCardID: "rc-1", SubjectID: "math", KnowledgeScore: 80, KnowledgeGrade: "B", KKM: 70, Passed: true},
		{ReportCardID: "rc-1", SubjectID: "art", KnowledgeScore: 60, KnowledgeGrade: "D", KKM: 70},
	}
	require.NoError(t, repo.UpsertSubjects(context.Background(), nil, subjects))
	assert.NotEmpty(t, subjects[0].ID)
	assert.NotEmpty(t, subjects[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportCardRepositoryDeleteSubjectsExcept(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportCardRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM report_card_subjects WHERE report_card_id = $1 AND NOT (subject_id = ANY($2))")).
		WithArgs("rc-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteSubjectsExcept(context.Background(), nil, "rc-1", []string{"math"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportCardRepositoryFindForUpdateInTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportCardRepository(db)

	locked := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM report_cards rc WHERE rc.id = $1 FOR UPDATE")).
		WithArgs("rc-1").
		WillReturnRows(sqlmock.NewRows(reportCardRowColumns).
			AddRow("rc-1", "enr-1", "term-1", 160.0, 80.0, 2, 1, 3, 0, 0, 0, nil, nil, locked, time.Now(), nil, time.Now(), time.Now()))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	card, err := repo.FindForUpdate(context.Background(), tx, "rc-1")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.True(t, card.Locked())
	assert.Nil(t, card.PromotionStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportCardRepositoryListByClassAndTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportCardRepository(db)

	columns := append(append([]string{}, reportCardRowColumns...), "student_id", "student_name", "student_nis", "class_group_id", "class_name", "term_name")
	rows := sqlmock.NewRows(columns).
		AddRow("rc-1", "enr-1", "term-1", 170.0, 85.0, 2, 1, 2, 1, 0, 0, "promoted", "Rajin", nil, time.Now(), "usr-1", time.Now(), time.Now(),
			"stu-1", "Ani", "001", "cg-1", "X IPA 1", "Ganjil")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.class_group_id = $1 AND rc.term_id = $2")).
		WithArgs("cg-1", "term-1").
		WillReturnRows(rows)

	cards, err := repo.ListByClassAndTerm(context.Background(), "cg-1", "term-1")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Ani", cards[0].StudentName)
	require.NotNil(t, cards[0].PromotionStatus)
	assert.Equal(t, models.PromotionStatusPromoted, *cards[0].PromotionStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportCardRepositorySetLockedAt(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReportCardRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_cards SET locked_at = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("rc-1", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetLockedAt(context.Background(), nil, "rc-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
