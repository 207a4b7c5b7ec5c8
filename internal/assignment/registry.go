package assignment

import "time"

// Registry answers who an evaluator or allocator is explicitly assigned to.
// It only filters; expired temporary assignments are hidden, never removed.
type Registry struct {
	assignments []*Assignment
	now         func() time.Time
}

func NewRegistry(assignments []*Assignment, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{assignments: assignments, now: now}
}

func (r *Registry) ByEvaluator(sourceID string) []*Assignment {
	return r.BySource(KindEvaluation, sourceID)
}

func (r *Registry) ByAllocator(sourceID string) []*Assignment {
	return r.BySource(KindBonus, sourceID)
}

// BySource returns the live assignments of kind held by sourceID, in load
// order.
func (r *Registry) BySource(kind Kind, sourceID string) []*Assignment {
	if r == nil {
		return nil
	}

	now := r.now()
	var out []*Assignment
	for _, a := range r.assignments {
		if a.Kind != kind || a.SourceID != sourceID {
			continue
		}
		if a.Expired(now) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// TargetIDs is BySource reduced to the distinct target ids.
func (r *Registry) TargetIDs(kind Kind, sourceID string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, a := range r.BySource(kind, sourceID) {
		if _, dup := seen[a.TargetID]; dup {
			continue
		}
		seen[a.TargetID] = struct{}{}
		out = append(out, a.TargetID)
	}
	return out
}

// Validate returns a *DanglingTargetError for the first assignment whose
// source or target is not in knownUserIDs.
func (r *Registry) Validate(knownUserIDs map[string]struct{}) error {
	for _, a := range r.assignments {
		if _, ok := knownUserIDs[a.SourceID]; !ok {
			return &DanglingTargetError{AssignmentID: a.ID, UserID: a.SourceID}
		}
		if _, ok := knownUserIDs[a.TargetID]; !ok {
			return &DanglingTargetError{AssignmentID: a.ID, UserID: a.TargetID}
		}
	}
	return nil
}
