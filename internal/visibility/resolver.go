package visibility

import (
	"github.com/frahmantamala/performance-bonus/internal/assignment"
	"github.com/frahmantamala/performance-bonus/internal/department"
	"github.com/frahmantamala/performance-bonus/internal/user"
)

// Source says how a member became visible.
type Source string

const (
	SourceHierarchy  Source = "hierarchy"
	SourceAssignment Source = "assignment"
)

// Team is the set of users an actor may evaluate or allocate bonus to, in the
// order of the user list it was computed from.
type Team struct {
	Members []*user.User
	// Dangling lists assignment targets missing from the user list.
	Dangling []string
	via      map[string]Source
}

func (t *Team) Contains(userID string) bool {
	_, ok := t.via[userID]
	return ok
}

// Via reports how userID entered the team. Hierarchy wins when both apply.
func (t *Team) Via(userID string) (Source, bool) {
	s, ok := t.via[userID]
	return s, ok
}

func (t *Team) IDs() []string {
	out := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		out = append(out, m.ID)
	}
	return out
}

func (t *Team) Len() int {
	return len(t.Members)
}

type Resolver struct {
	rules map[user.Role]Rule
}

func NewResolver(rules map[user.Role]Rule) *Resolver {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Resolver{rules: rules}
}

// ComputeTeam resolves the team of actor with the default role table.
func ComputeTeam(actor *user.User, users []*user.User, tree *department.Tree, registry *assignment.Registry, mode Mode) *Team {
	return NewResolver(nil).ComputeTeam(actor, users, tree, registry, mode)
}

// ComputeTeam unions the role's hierarchy matches with the targets of the
// actor's live assignments of the mode's kind. Inactive users are skipped and
// the actor is never part of their own team.
func (r *Resolver) ComputeTeam(actor *user.User, users []*user.User, tree *department.Tree, registry *assignment.Registry, mode Mode) *Team {
	team := &Team{via: make(map[string]Source)}
	if actor == nil {
		return team
	}

	var match Matcher
	if rule, ok := r.rules[actor.Role]; ok {
		match = rule(actor, tree, mode)
	}

	targets := registry.TargetIDs(mode.Kind(), actor.ID)
	assigned := make(map[string]struct{}, len(targets))
	for _, id := range targets {
		assigned[id] = struct{}{}
	}

	known := make(map[string]struct{}, len(users))
	for _, u := range users {
		known[u.ID] = struct{}{}
		if u.ID == actor.ID || !u.IsActive {
			continue
		}
		if _, dup := team.via[u.ID]; dup {
			continue
		}

		switch {
		case match != nil && match(u):
			team.via[u.ID] = SourceHierarchy
		case hasKey(assigned, u.ID):
			team.via[u.ID] = SourceAssignment
		default:
			continue
		}
		team.Members = append(team.Members, u)
	}

	for _, id := range targets {
		if !hasKey(known, id) {
			team.Dangling = append(team.Dangling, id)
		}
	}
	return team
}

func hasKey(m map[string]struct{}, k string) bool {
	_, ok := m[k]
	return ok
}
