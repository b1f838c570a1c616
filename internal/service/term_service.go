package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-rapor-api/internal/models"
	appErrors "github.com/noah-isme/sma-rapor-api/pkg/errors"
)

type termRepository interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
	FindActive(ctx context.Context) (*models.Term, error)
	FindNextAfter(ctx context.Context, after time.Time) (*models.Term, error)
}

// TermService resolves terms for callers. A pinned term id overrides the active flag.
type TermService struct {
	repo         termRepository
	pinnedTermID string
	logger       *zap.Logger
}

// NewTermService creates a new term service instance.
func NewTermService(repo termRepository, pinnedTermID string, logger *zap.Logger) *TermService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{repo: repo, pinnedTermID: pinnedTermID, logger: logger}
}

// Get returns a term by id.
func (s *TermService) Get(ctx context.Context, id string) (*models.Term, error) {
	term, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	return term, nil
}

// GetActive returns the term operations should default to.
func (s *TermService) GetActive(ctx context.Context) (*models.Term, error) {
	if s.pinnedTermID != "" {
		return s.Get(ctx, s.pinnedTermID)
	}
	term, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "active term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active term")
	}
	return term, nil
}

// Next returns the earliest term starting after the given term ends.
func (s *TermService) Next(ctx context.Context, id string) (*models.Term, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := nextTerm(ctx, s.repo, current)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no term follows the given term")
	}
	return next, nil
}

type nextTermFinder interface {
	FindNextAfter(ctx context.Context, after time.Time) (*models.Term, error)
}

// nextTerm returns nil without error when no later term exists.
func nextTerm(ctx context.Context, repo nextTermFinder, current *models.Term) (*models.Term, error) {
	next, err := repo.FindNextAfter(ctx, current.EndDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve next term")
	}
	return next, nil
}
