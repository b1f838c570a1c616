package models

import "time"

// ReportCard is the per-student, per-term academic summary.
type ReportCard struct {
	ID                string           `db:"id" json:"id"`
	ClassEnrollmentID string           `db:"class_enrollment_id" json:"class_enrollment_id"`
	TermID            string           `db:"term_id" json:"term_id"`
	TotalScore        float64          `db:"total_score" json:"total_score"`
	AverageScore      float64          `db:"average_score" json:"average_score"`
	SubjectCount      int              `db:"subject_count" json:"subject_count"`
	Rank              int              `db:"rank" json:"rank"`
	TotalStudents     int              `db:"total_students" json:"total_students"`
	SickDays          int              `db:"sick_days" json:"sick_days"`
	PermitDays        int              `db:"permit_days" json:"permit_days"`
	AbsentDays        int              `db:"absent_days" json:"absent_days"`
	PromotionStatus   *PromotionStatus `db:"promotion_status" json:"promotion_status,omitempty"`
	HomeroomNote      *string          `db:"homeroom_note" json:"homeroom_note,omitempty"`
	LockedAt          *time.Time       `db:"locked_at" json:"locked_at,omitempty"`
	GeneratedAt       time.Time        `db:"generated_at" json:"generated_at"`
	GeneratedBy       *string          `db:"generated_by" json:"generated_by,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}

// Locked reports whether the report card is finalized.
func (r *ReportCard) Locked() bool {
	return r != nil && r.LockedAt != nil
}

// ReportCardSubject holds one subject's result on a report card.
type ReportCardSubject struct {
	ID             string    `db:"id" json:"id"`
	ReportCardID   string    `db:"report_card_id" json:"report_card_id"`
	SubjectID      string    `db:"subject_id" json:"subject_id"`
	SubjectName    string    `db:"subject_name" json:"subject_name,omitempty"`
	KnowledgeScore float64   `db:"knowledge_score" json:"knowledge_score"`
	KnowledgeGrade string    `db:"knowledge_grade" json:"knowledge_grade"`
	SkillScore     *float64  `db:"skill_score" json:"skill_score,omitempty"`
	SkillGrade     *string   `db:"skill_grade" json:"skill_grade,omitempty"`
	KKM            float64   `db:"kkm" json:"kkm"`
	Passed         bool      `db:"passed" json:"passed"`
	Remark         *string   `db:"remark" json:"remark,omitempty"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ReportCardDetail enriches a report card with student and class context.
type ReportCardDetail struct {
	ReportCard
	StudentID    string              `db:"student_id" json:"student_id"`
	StudentName  string              `db:"student_name" json:"student_name"`
	StudentNIS   string              `db:"student_nis" json:"student_nis"`
	ClassGroupID string              `db:"class_group_id" json:"class_group_id"`
	ClassName    string              `db:"class_name" json:"class_name"`
	TermName     string              `db:"term_name" json:"term_name"`
	Subjects     []ReportCardSubject `db:"-" json:"subjects,omitempty"`
}

// ReportCardFilter scopes report card listings.
type ReportCardFilter struct {
	ClassGroupID string
	TermID       string
}
