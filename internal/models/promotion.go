package models

import (
	"strings"
	"time"
)

// PromotionStatus is the closed set of placement decisions at a term boundary.
type PromotionStatus string

const (
	PromotionStatusPromoted    PromotionStatus = "promoted"
	PromotionStatusRetained    PromotionStatus = "retained"
	PromotionStatusGraduated   PromotionStatus = "graduated"
	PromotionStatusTransferred PromotionStatus = "transferred"
)

// Valid returns true when the status is a supported value.
func (s PromotionStatus) Valid() bool {
	switch s {
	case PromotionStatusPromoted, PromotionStatusRetained, PromotionStatusGraduated, PromotionStatusTransferred:
		return true
	default:
		return false
	}
}

// MovesClass reports whether the decision places the student in a target class group.
func (s PromotionStatus) MovesClass() bool {
	return s == PromotionStatusPromoted || s == PromotionStatusRetained
}

// StudentStatus returns the lifecycle status a decision ends in, if it changes one.
func (s PromotionStatus) StudentStatus() (StudentStatus, bool) {
	switch s {
	case PromotionStatusGraduated:
		return StudentStatusGraduated, true
	case PromotionStatusTransferred:
		return StudentStatusTransferred, true
	default:
		return "", false
	}
}

// ParsePromotionStatus normalises raw input into a PromotionStatus.
func ParsePromotionStatus(raw string) (PromotionStatus, bool) {
	status := PromotionStatus(strings.ToLower(strings.TrimSpace(raw)))
	return status, status.Valid()
}

// ClassPromotion records the placement decision for a student leaving a term.
type ClassPromotion struct {
	ID               string          `db:"id" json:"id"`
	StudentID        string          `db:"student_id" json:"student_id"`
	FromClassGroupID string          `db:"from_class_group_id" json:"from_class_group_id"`
	ToClassGroupID   *string         `db:"to_class_group_id" json:"to_class_group_id,omitempty"`
	FromTermID       string          `db:"from_term_id" json:"from_term_id"`
	ToTermID         *string         `db:"to_term_id" json:"to_term_id,omitempty"`
	Status           PromotionStatus `db:"status" json:"status"`
	Note             *string         `db:"note" json:"note,omitempty"`
	ProcessedBy      *string         `db:"processed_by" json:"processed_by,omitempty"`
	ProcessedAt      time.Time       `db:"processed_at" json:"processed_at"`
}

// ClassPromotionDetail enriches a promotion with the student name.
type ClassPromotionDetail struct {
	ClassPromotion
	StudentName string `db:"student_name" json:"student_name"`
}
