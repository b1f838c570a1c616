package models

import "time"

// StudentStatus is the lifecycle state of a learner.
type StudentStatus string

const (
	StudentStatusActive      StudentStatus = "active"
	StudentStatusGraduated   StudentStatus = "graduated"
	StudentStatusTransferred StudentStatus = "transferred"
)

// Student represents a learner registered in the institution.
type Student struct {
	ID        string        `db:"id" json:"id"`
	NIS       string        `db:"nis" json:"nis"`
	FullName  string        `db:"full_name" json:"full_name"`
	Status    StudentStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}
