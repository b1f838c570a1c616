package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "H"
	AttendanceStatusSick    AttendanceStatus = "S"
	AttendanceStatusPermit  AttendanceStatus = "I"
	AttendanceStatusAbsent  AttendanceStatus = "A"
)

// Attendance is one recorded session attendance of a student.
type Attendance struct {
	ID                   string           `db:"id" json:"id"`
	TeachingAssignmentID string           `db:"teaching_assignment_id" json:"teaching_assignment_id"`
	StudentID            string           `db:"student_id" json:"student_id"`
	Date                 time.Time        `db:"date" json:"date"`
	Status               AttendanceStatus `db:"status" json:"status"`
}

// AttendanceSummary counts non-present occurrences of a student within a term.
type AttendanceSummary struct {
	StudentID string `db:"student_id" json:"student_id"`
	TermID    string `db:"term_id" json:"term_id"`
	Sick      int    `db:"sick" json:"sick"`
	Permit    int    `db:"permit" json:"permit"`
	Absent    int    `db:"absent" json:"absent"`
}
