package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-rapor-api/internal/dto"
	"github.com/noah-isme/sma-rapor-api/internal/models"
	appErrors "github.com/noah-isme/sma-rapor-api/pkg/errors"
)

func TestAttendanceServiceSummarize(t *testing.T) {
	repo := &attendanceStub{summaries: map[string]models.AttendanceSummary{
		"stu-1": {StudentID: "stu-1", TermID: "term-1", Sick: 2, Permit: 1, Absent: 3},
	}}
	svc := NewAttendanceService(repo, nil, nil)

	summary, err := svc.Summarize(context.Background(), dto.AttendanceSummaryQuery{StudentID: "stu-1", TermID: "term-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Sick)
	assert.Equal(t, 3, summary.Absent)

	empty, err := svc.Summarize(context.Background(), dto.AttendanceSummaryQuery{StudentID: "stu-9", TermID: "term-1"})
	require.NoError(t, err)
	assert.Zero(t, empty.Sick+empty.Permit+empty.Absent)
}

func TestAttendanceServiceSummarizeRequiresScope(t *testing.T) {
	svc := NewAttendanceService(&attendanceStub{}, nil, nil)
	_, err := svc.Summarize(context.Background(), dto.AttendanceSummaryQuery{StudentID: "stu-1"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
