package assignment

// DateLayout is the wire format of expires_date.
const DateLayout = "2006-01-02"

type CreateAssignmentDTO struct {
	Kind           string  `json:"kind" validate:"required,oneof=evaluation bonus"`
	SourceID       string  `json:"source_id" validate:"required"`
	TargetID       string  `json:"target_id" validate:"required"`
	AssignmentType string  `json:"assignment_type" validate:"required,oneof=permanent temporary project"`
	ExpiresDate    *string `json:"expires_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type AssignmentResponse struct {
	ID             string  `json:"id"`
	Kind           string  `json:"kind"`
	SourceID       string  `json:"source_id"`
	TargetID       string  `json:"target_id"`
	AssignmentType string  `json:"assignment_type"`
	ExpiresDate    *string `json:"expires_date,omitempty"`
}

type AssignmentsResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
}
