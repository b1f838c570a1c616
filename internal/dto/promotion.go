package dto

// PromotionDecision is the placement of one enrollment at the end of a term.
type PromotionDecision struct {
	EnrollmentID       string  `json:"enrollment_id" validate:"required"`
	Status             string  `json:"status" validate:"required"`
	TargetClassGroupID *string `json:"target_class_group_id"`
	Note               *string `json:"note" validate:"omitempty,max=500"`
}

// ProcessPromotionsRequest records explicit decisions for a class group.
type ProcessPromotionsRequest struct {
	ClassGroupID string              `json:"class_group_id" validate:"required"`
	Decisions    []PromotionDecision `json:"decisions" validate:"required,min=1,dive"`
}

// BulkPromoteRequest applies one decision to every unprocessed enrollment of a class group.
type BulkPromoteRequest struct {
	ClassGroupID       string  `json:"class_group_id" validate:"required"`
	Status             string  `json:"status" validate:"required"`
	TargetClassGroupID *string `json:"target_class_group_id"`
}

// PromotionResult summarises a promotion call.
type PromotionResult struct {
	Processed int     `json:"processed"`
	Skipped   int     `json:"skipped"`
	ToTermID  *string `json:"to_term_id"`
}

// PromotionListQuery scopes the promotion listing.
type PromotionListQuery struct {
	ClassGroupID string `form:"class_group_id" validate:"required"`
}
