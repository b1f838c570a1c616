package models

// DefaultAssessmentWeight applies when an assessment has no weight configured.
const DefaultAssessmentWeight = 100

// DefaultKKM is the passing threshold used when a subject has none for the term.
const DefaultKKM = 70.0

// Assessment is a gradable activity under a teaching assignment.
type Assessment struct {
	ID                   string  `db:"id" json:"id"`
	TeachingAssignmentID string  `db:"teaching_assignment_id" json:"teaching_assignment_id"`
	Name                 string  `db:"name" json:"name"`
	Category             string  `db:"category" json:"category"`
	Weight               *int    `db:"weight" json:"weight,omitempty"`
	MaxScore             float64 `db:"max_score" json:"max_score"`
}

// AssessmentScore is one student's raw score for one assessment.
type AssessmentScore struct {
	ID           string  `db:"id" json:"id"`
	AssessmentID string  `db:"assessment_id" json:"assessment_id"`
	StudentID    string  `db:"student_id" json:"student_id"`
	Score        float64 `db:"score" json:"score"`
}

// ScoredAssessment joins a score with the assessment settings needed to aggregate it.
type ScoredAssessment struct {
	TeachingAssignmentID string  `db:"teaching_assignment_id"`
	AssessmentID         string  `db:"assessment_id"`
	StudentID            string  `db:"student_id"`
	Score                float64 `db:"score"`
	MaxScore             float64 `db:"max_score"`
	Weight               *int    `db:"weight"`
}

// SubjectKKM is the minimum passing average of a subject for a term.
type SubjectKKM struct {
	SubjectID string  `db:"subject_id" json:"subject_id"`
	TermID    string  `db:"term_id" json:"term_id"`
	KKM       float64 `db:"kkm" json:"kkm"`
}
