package evaluation

import (
	"time"

	evaluationDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/evaluation"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusSelfReview Status = "self-review"
	StatusInReview   Status = "manager-review"
	StatusCompleted  Status = "completed"
)

// ScoringSystem is the top of the rating scale an evaluation was scored on.
type ScoringSystem int

const (
	FivePoint ScoringSystem = 5
	TenPoint  ScoringSystem = 10
)

func (s ScoringSystem) Valid() bool {
	return s == FivePoint || s == TenPoint
}

// Evaluation is the output of one evaluation cycle for a user. Only the
// manager's overall rating is consumed here.
type Evaluation struct {
	ID            string
	BusinessID    string
	UserID        string
	Status        Status
	OverallRating *float64
	ScoringSystem ScoringSystem
	CompletedAt   *time.Time
	CreatedAt     time.Time
}

// Scored reports whether the evaluation is completed with a manager rating.
func (e *Evaluation) Scored() bool {
	return e.Status == StatusCompleted && e.OverallRating != nil
}

// MaxScore is the declared scale, or inferred from the rating when the
// scale was not recorded: above 5 means a 10-point scale.
func (e *Evaluation) MaxScore() float64 {
	if e.ScoringSystem.Valid() {
		return float64(e.ScoringSystem)
	}
	if e.OverallRating != nil && *e.OverallRating > float64(FivePoint) {
		return float64(TenPoint)
	}
	return float64(FivePoint)
}

func ToDataModel(e *Evaluation) *evaluationDatamodel.Evaluation {
	out := &evaluationDatamodel.Evaluation{
		ID:            e.ID,
		BusinessID:    e.BusinessID,
		UserID:        e.UserID,
		Status:        string(e.Status),
		OverallRating: e.OverallRating,
		CompletedAt:   e.CompletedAt,
		CreatedAt:     e.CreatedAt,
	}
	if e.ScoringSystem.Valid() {
		s := int(e.ScoringSystem)
		out.ScoringSystem = &s
	}
	return out
}

func FromDataModel(e *evaluationDatamodel.Evaluation) *Evaluation {
	out := &Evaluation{
		ID:            e.ID,
		BusinessID:    e.BusinessID,
		UserID:        e.UserID,
		Status:        Status(e.Status),
		OverallRating: e.OverallRating,
		CompletedAt:   e.CompletedAt,
		CreatedAt:     e.CreatedAt,
	}
	if e.ScoringSystem != nil {
		out.ScoringSystem = ScoringSystem(*e.ScoringSystem)
	}
	return out
}
