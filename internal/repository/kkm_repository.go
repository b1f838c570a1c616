package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-rapor-api/internal/models"
)

// KKMRepository reads subject passing thresholds.
type KKMRepository struct {
	db *sqlx.DB
}

// NewKKMRepository constructs the repository.
func NewKKMRepository(db *sqlx.DB) *KKMRepository {
	return &KKMRepository{db: db}
}

// MapByTerm returns subject ID -> KKM for the term. Subjects without a row are absent.
func (r *KKMRepository) MapByTerm(ctx context.Context, termID string) (map[string]float64, error) {
	const query = `SELECT subject_id, term_id, kkm FROM subject_kkms WHERE term_id = $1`
	var rows []models.SubjectKKM
	if err := r.db.SelectContext(ctx, &rows, query, termID); err != nil {
		return nil, fmt.Errorf("list subject kkm: %w", err)
	}
	result := make(map[string]float64, len(rows))
	for _, row := range rows {
		result[row.SubjectID] = row.KKM
	}
	return result, nil
}
