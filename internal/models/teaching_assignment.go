package models

import "time"

// TeachingAssignment binds a subject and teacher to a class group within a term.
type TeachingAssignment struct {
	ID           string    `db:"id" json:"id"`
	TermID       string    `db:"term_id" json:"term_id"`
	ClassGroupID string    `db:"class_group_id" json:"class_group_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	TeacherID    string    `db:"teacher_id" json:"teacher_id"`
	SubjectName  string    `db:"subject_name" json:"subject_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
