package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-rapor-api/internal/models"
)

const termColumns = `id, name, type, academic_year, start_date, end_date, is_active, created_at, updated_at`

// TermRepository reads academic terms.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository instantiates a term repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// FindByID returns a term by ID.
func (r *TermRepository) FindByID(ctx context.Context, id string) (*models.Term, error) {
	var term models.Term
	if err := r.db.GetContext(ctx, &term, `SELECT `+termColumns+` FROM terms WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &term, nil
}

// FindActive returns the term currently flagged active.
func (r *TermRepository) FindActive(ctx context.Context) (*models.Term, error) {
	var term models.Term
	if err := r.db.GetContext(ctx, &term, `SELECT `+termColumns+` FROM terms WHERE is_active = TRUE LIMIT 1`); err != nil {
		return nil, err
	}
	return &term, nil
}

// FindNextAfter returns the earliest term starting after the provided instant.
func (r *TermRepository) FindNextAfter(ctx context.Context, after time.Time) (*models.Term, error) {
	var term models.Term
	const query = `SELECT ` + termColumns + ` FROM terms WHERE start_date > $1 ORDER BY start_date ASC, id ASC LIMIT 1`
	if err := r.db.GetContext(ctx, &term, query, after); err != nil {
		return nil, err
	}
	return &term, nil
}
