package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAllocationSaved     = "allocation.saved"
	EventTypeAllocationFinalized = "allocation.finalized"
)

// AllocationSavedEvent is published after a draft is written to the store.
type AllocationSavedEvent struct {
	BaseEvent
	BusinessID   string `json:"business_id"`
	DepartmentID string `json:"department_id"`
	Year         int    `json:"year"`
	Version      int64  `json:"version"`
	Status       string `json:"status"`
	ActorID      string `json:"actor_id"`
	TotalBudget  string `json:"total_budget"`
	Allocated    string `json:"allocated"`
	Exceeded     bool   `json:"exceeded"`
	Members      int    `json:"members"`
}

func NewAllocationSavedEvent(businessID, departmentID string, year int, version int64, status, actorID, totalBudget, allocated string, exceeded bool, members int) *AllocationSavedEvent {
	eventType := EventTypeAllocationSaved
	if status == "final" {
		eventType = EventTypeAllocationFinalized
	}

	return &AllocationSavedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
		},
		BusinessID:   businessID,
		DepartmentID: departmentID,
		Year:         year,
		Version:      version,
		Status:       status,
		ActorID:      actorID,
		TotalBudget:  totalBudget,
		Allocated:    allocated,
		Exceeded:     exceeded,
		Members:      members,
	}
}
