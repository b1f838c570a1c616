package dto

// GenerateReportCardsRequest triggers a generation run for a class group within a term.
type GenerateReportCardsRequest struct {
	ClassGroupID string `json:"class_group_id" validate:"required"`
	TermID       string `json:"term_id" validate:"required"`
}

// GenerateReportCardsResponse reports how many enrollments a run processed.
type GenerateReportCardsResponse struct {
	GeneratedCount int `json:"generated_count"`
}

// ReportCardListQuery scopes the class listing.
type ReportCardListQuery struct {
	ClassGroupID string `form:"class_group_id" validate:"required"`
	TermID       string `form:"term_id" validate:"required"`
}

// SubjectEditRequest changes one subject row of a draft report card.
// A score without a grade recomputes the grade; a grade alone is a manual override.
type SubjectEditRequest struct {
	SubjectID      string   `json:"subject_id" validate:"required"`
	KnowledgeScore *float64 `json:"knowledge_score"`
	KnowledgeGrade *string  `json:"knowledge_grade"`
	SkillScore     *float64 `json:"skill_score"`
	SkillGrade     *string  `json:"skill_grade"`
	Remark         *string  `json:"remark" validate:"omitempty,max=500"`
}

// UpdateReportCardRequest edits a draft report card.
type UpdateReportCardRequest struct {
	Subjects        []SubjectEditRequest `json:"subjects" validate:"omitempty,dive"`
	PromotionStatus *string              `json:"promotion_status"`
	HomeroomNote    *string              `json:"homeroom_note" validate:"omitempty,max=1000"`
}

// ToggleLockResponse reports the lock state after a toggle.
type ToggleLockResponse struct {
	Locked bool `json:"locked"`
}

// ExportFormat selects the rendering of a printed report card.
type ExportFormat string

const (
	ExportFormatPDF ExportFormat = "pdf"
	ExportFormatCSV ExportFormat = "csv"
)

// ExportedFile is a rendered report card document.
type ExportedFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// AttendanceSummaryQuery selects one student's attendance within a term.
type AttendanceSummaryQuery struct {
	StudentID string `form:"student_id" validate:"required"`
	TermID    string `form:"term_id" validate:"required"`
}
