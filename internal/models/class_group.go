package models

import "time"

// ClassGroup is a cohort of students for one term.
type ClassGroup struct {
	ID                string    `db:"id" json:"id"`
	TermID            string    `db:"term_id" json:"term_id"`
	Name              string    `db:"name" json:"name"`
	Level             string    `db:"level" json:"level"`
	HomeroomTeacherID *string   `db:"homeroom_teacher_id" json:"homeroom_teacher_id,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// ClassEnrollment is the membership of one student in one class group.
type ClassEnrollment struct {
	ID           string    `db:"id" json:"id"`
	ClassGroupID string    `db:"class_group_id" json:"class_group_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	EnrolledAt   time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// ClassEnrollmentDetail enriches an enrollment with student info.
type ClassEnrollmentDetail struct {
	ClassEnrollment
	StudentName string `db:"student_name" json:"student_name"`
	StudentNIS  string `db:"student_nis" json:"student_nis"`
}
