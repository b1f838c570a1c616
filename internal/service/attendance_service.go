package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-rapor-api/internal/dto"
	"github.com/noah-isme/sma-rapor-api/internal/models"
	appErrors "github.com/noah-isme/sma-rapor-api/pkg/errors"
)

type attendanceSummarizer interface {
	Summarize(ctx context.Context, studentID, termID string) (*models.AttendanceSummary, error)
}

// AttendanceService exposes per-term attendance counts.
type AttendanceService struct {
	repo      attendanceSummarizer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo attendanceSummarizer, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, validator: validate, logger: logger}
}

// Summarize counts sick, permit and absent sessions of a student within a term.
func (s *AttendanceService) Summarize(ctx context.Context, query dto.AttendanceSummaryQuery) (*models.AttendanceSummary, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "student_id and term_id are required")
	}
	summary, err := s.repo.Summarize(ctx, query.StudentID, query.TermID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarize attendance")
	}
	return summary, nil
}
