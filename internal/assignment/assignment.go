package assignment

import (
	"fmt"
	"time"

	assignmentDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/assignment"
)

// Kind says which relationship an assignment grants.
type Kind string

const (
	KindEvaluation Kind = "evaluation"
	KindBonus      Kind = "bonus"
)

func (k Kind) Valid() bool {
	return k == KindEvaluation || k == KindBonus
}

type Type string

const (
	TypePermanent Type = "permanent"
	TypeTemporary Type = "temporary"
	TypeProject   Type = "project"
)

func (t Type) Valid() bool {
	return t == TypePermanent || t == TypeTemporary || t == TypeProject
}

// Assignment pairs a source (evaluator or allocator) with a target
// (evaluatee or recipient). SourceID never equals TargetID.
type Assignment struct {
	ID          string     `json:"id"`
	BusinessID  string     `json:"business_id"`
	Kind        Kind       `json:"kind"`
	SourceID    string     `json:"source_id"`
	TargetID    string     `json:"target_id"`
	Type        Type       `json:"assignment_type"`
	ExpiresDate *time.Time `json:"expires_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Expired reports whether a temporary assignment's expiry date lies before
// the calendar day of now. It stays valid for the whole expiry day.
// Permanent and project assignments never expire.
func (a *Assignment) Expired(now time.Time) bool {
	if a.Type != TypeTemporary || a.ExpiresDate == nil {
		return false
	}
	return dayOf(*a.ExpiresDate).Before(dayOf(now))
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DanglingTargetError reports an assignment that references a user who does
// not exist.
type DanglingTargetError struct {
	AssignmentID string
	UserID       string
}

func (e *DanglingTargetError) Error() string {
	return fmt.Sprintf("assignment %s references unknown user %s", e.AssignmentID, e.UserID)
}

func (a *Assignment) ToResponse() AssignmentResponse {
	resp := AssignmentResponse{
		ID:             a.ID,
		Kind:           string(a.Kind),
		SourceID:       a.SourceID,
		TargetID:       a.TargetID,
		AssignmentType: string(a.Type),
	}
	if a.ExpiresDate != nil {
		s := a.ExpiresDate.Format(DateLayout)
		resp.ExpiresDate = &s
	}
	return resp
}

func ToDataModel(a *Assignment) *assignmentDatamodel.Assignment {
	return &assignmentDatamodel.Assignment{
		ID:             a.ID,
		BusinessID:     a.BusinessID,
		Kind:           string(a.Kind),
		SourceID:       a.SourceID,
		TargetID:       a.TargetID,
		AssignmentType: string(a.Type),
		ExpiresDate:    a.ExpiresDate,
		CreatedAt:      a.CreatedAt,
	}
}

func FromDataModel(a *assignmentDatamodel.Assignment) *Assignment {
	return &Assignment{
		ID:          a.ID,
		BusinessID:  a.BusinessID,
		Kind:        Kind(a.Kind),
		SourceID:    a.SourceID,
		TargetID:    a.TargetID,
		Type:        Type(a.AssignmentType),
		ExpiresDate: a.ExpiresDate,
		CreatedAt:   a.CreatedAt,
	}
}
