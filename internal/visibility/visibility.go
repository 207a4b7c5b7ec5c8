package visibility

import (
	"fmt"

	"github.com/frahmantamala/performance-bonus/internal/assignment"
	"github.com/frahmantamala/performance-bonus/internal/department"
	"github.com/frahmantamala/performance-bonus/internal/user"
)

// Mode selects which relationship a team is computed for.
type Mode string

const (
	ModeEvaluation Mode = "evaluation"
	ModeBonus      Mode = "bonus"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeEvaluation, ModeBonus:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown visibility mode %q", s)
}

// Kind is the assignment kind that widens a team in this mode.
func (m Mode) Kind() assignment.Kind {
	if m == ModeBonus {
		return assignment.KindBonus
	}
	return assignment.KindEvaluation
}

// Matcher reports whether a candidate is visible through the hierarchy.
type Matcher func(candidate *user.User) bool

// Rule derives the hierarchy matcher of an actor. A nil Matcher means the
// role sees nobody through the hierarchy in this mode.
type Rule func(actor *user.User, tree *department.Tree, mode Mode) Matcher

// Everyone is the admin and hr rule.
func Everyone(*user.User, *department.Tree, Mode) Matcher {
	return func(*user.User) bool { return true }
}

// Subtree sees users in the actor's home department or any department
// nested below it.
func Subtree(actor *user.User, tree *department.Tree, _ Mode) Matcher {
	home := actor.HomeDepartment()
	if home == "" {
		return nil
	}
	scope := department.Subtree(tree, home)
	return func(candidate *user.User) bool {
		return candidate.InDepartment(home) || scope.Has(candidate.HomeDepartment())
	}
}

// Juniors sees users of the listed roles in the actor's home department, in
// evaluation mode only.
func Juniors(roles ...user.Role) Rule {
	return func(actor *user.User, _ *department.Tree, mode Mode) Matcher {
		home := actor.HomeDepartment()
		if mode != ModeEvaluation || home == "" {
			return nil
		}
		return func(candidate *user.User) bool {
			return candidate.InDepartment(home) && candidate.HasRole(roles...)
		}
	}
}

// Nobody grants no hierarchy visibility; assignments still apply.
func Nobody(*user.User, *department.Tree, Mode) Matcher {
	return nil
}

// DefaultRules is the role table used by ComputeTeam.
func DefaultRules() map[user.Role]Rule {
	return map[user.Role]Rule{
		user.RoleAdmin:       Everyone,
		user.RoleHR:          Everyone,
		user.RoleHeadManager: Subtree,
		user.RoleManager:     Juniors(user.RoleSupervisor, user.RoleEmployee),
		user.RoleSupervisor:  Juniors(user.RoleEmployee),
		user.RoleEmployee:    Nobody,
	}
}
