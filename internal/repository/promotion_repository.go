package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-rapor-api/internal/models"
)

// PromotionRepository persists class promotion decisions.
type PromotionRepository struct {
	db *sqlx.DB
}

// NewPromotionRepository constructs the repository.
func NewPromotionRepository(db *sqlx.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

// Upsert stores a decision keyed by (student_id, from_term_id); reprocessing overwrites it.
func (r *PromotionRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, promotion *models.ClassPromotion) error {
	if promotion.ID == "" {
		promotion.ID = uuid.NewString()
	}
	if promotion.ProcessedAt.IsZero() {
		promotion.ProcessedAt = time.Now().UTC()
	}
	const query = `INSERT INTO class_promotions (id, student_id, from_class_group_id, to_class_group_id, from_term_id, to_term_id,
        status, note, processed_by, processed_at)
        VALUES (:id, :student_id, :from_class_group_id, :to_class_group_id, :from_term_id, :to_term_id, :status, :note, :processed_by, :processed_at)
        ON CONFLICT (student_id, from_term_id) DO UPDATE SET
            from_class_group_id = EXCLUDED.from_class_group_id,
            to_class_group_id = EXCLUDED.to_class_group_id,
            to_term_id = EXCLUDED.to_term_id,
            status = EXCLUDED.status,
            note = EXCLUDED.note,
            processed_by = EXCLUDED.processed_by,
            processed_at = EXCLUDED.processed_at`
	if _, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, promotion); err != nil {
		return fmt.Errorf("upsert class promotion: %w", err)
	}
	return nil
}

// InsertIfAbsent stores a decision only when the student has none for the term yet.
// It reports whether a row was written.
func (r *PromotionRepository) InsertIfAbsent(ctx context.Context, exec sqlx.ExtContext, promotion *models.ClassPromotion) (bool, error) {
	if promotion.ID == "" {
		promotion.ID = uuid.NewString()
	}
	if promotion.ProcessedAt.IsZero() {
		promotion.ProcessedAt = time.Now().UTC()
	}
	const query = `INSERT INTO class_promotions (id, student_id, from_class_group_id, to_class_group_id, from_term_id, to_term_id,
        status, note, processed_by, processed_at)
        VALUES (:id, :student_id, :from_class_group_id, :to_class_group_id, :from_term_id, :to_term_id, :status, :note, :processed_by, :processed_at)
        ON CONFLICT (student_id, from_term_id) DO NOTHING`
	result, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, promotion)
	if err != nil {
		return false, fmt.Errorf("insert class promotion: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert class promotion: %w", err)
	}
	return affected > 0, nil
}

// ProcessedStudents returns the subset of students that already have a decision for the term.
func (r *PromotionRepository) ProcessedStudents(ctx context.Context, fromTermID string, studentIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(studentIDs))
	if len(studentIDs) == 0 {
		return result, nil
	}
	const query = `SELECT student_id FROM class_promotions WHERE from_term_id = $1 AND student_id = ANY($2)`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, fromTermID, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("list processed students: %w", err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// ListByClassGroup returns decisions recorded for students leaving a class group.
func (r *PromotionRepository) ListByClassGroup(ctx context.Context, classGroupID string) ([]models.ClassPromotionDetail, error) {
	const query = `SELECT p.id, p.student_id, p.from_class_group_id, p.to_class_group_id, p.from_term_id, p.to_term_id,
        p.status, p.note, p.processed_by, p.processed_at, s.full_name AS student_name
        FROM class_promotions p
        JOIN students s ON s.id = p.student_id
        WHERE p.from_class_group_id = $1
        ORDER BY s.full_name`
	var promotions []models.ClassPromotionDetail
	if err := r.db.SelectContext(ctx, &promotions, query, classGroupID); err != nil {
		return nil, fmt.Errorf("list class promotions: %w", err)
	}
	return promotions, nil
}
