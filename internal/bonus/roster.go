package bonus

import (
	"github.com/frahmantamala/performance-bonus/internal/department"
	"github.com/frahmantamala/performance-bonus/internal/evaluation"
	"github.com/frahmantamala/performance-bonus/internal/user"
	"github.com/frahmantamala/performance-bonus/internal/visibility"
	"github.com/shopspring/decimal"
)

// RosterMember is a team member scored for allocation.
type RosterMember struct {
	Member
	User   *user.User
	Via    visibility.Source
	Scored bool
}

// Roster is the scored team an actor allocates a department's budget to.
type Roster struct {
	DepartmentID string
	Year         int
	Members      []RosterMember

	// Dangling lists the actor's bonus assignment targets that match no user.
	Dangling []string
}

func (r *Roster) Contains(userID string) bool {
	for _, m := range r.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// EngineMembers returns the roster in the shape the engine consumes.
func (r *Roster) EngineMembers() []Member {
	out := make([]Member, 0, len(r.Members))
	for _, m := range r.Members {
		out = append(out, m.Member)
	}
	return out
}

func (r *Roster) Salaries() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(r.Members))
	for _, m := range r.Members {
		if m.HasSalary() {
			out[m.UserID] = m.MonthlySalary
		}
	}
	return out
}

// BuildRoster keeps the team members whose home department lies in the
// department's subtree, plus anyone the actor reaches through an explicit
// bonus assignment. Salary comes from the draft entry when it has one, else
// from the user record. Unscored members weigh unscoredWeight.
func BuildRoster(team *visibility.Team, tree *department.Tree, departmentID string, year int, assigned []string, evaluations []*evaluation.Evaluation, draft *Draft, unscoredWeight decimal.Decimal) *Roster {
	scope := department.Subtree(tree, departmentID)
	explicit := make(map[string]struct{}, len(assigned))
	for _, id := range assigned {
		explicit[id] = struct{}{}
	}
	roster := &Roster{DepartmentID: departmentID, Year: year, Dangling: team.Dangling}

	for _, u := range team.Members {
		_, isAssigned := explicit[u.ID]
		if !isAssigned && !scope.Has(u.HomeDepartment()) {
			continue
		}
		via, _ := team.Via(u.ID)

		m := RosterMember{User: u, Via: via, Member: Member{UserID: u.ID, Weight: unscoredWeight}}
		if salary, ok := u.Salary(); ok {
			m.MonthlySalary = salary
		}
		if draft != nil {
			if e, ok := draft.Allocations[u.ID]; ok && e.MonthlySalary.IsPositive() {
				m.MonthlySalary = e.MonthlySalary
			}
		}
		if s, ok := evaluation.LatestScore(u.ID, evaluations); ok {
			m.Weight = decimal.NewFromFloat(s.Normalized())
			m.Scored = true
		}

		roster.Members = append(roster.Members, m)
	}
	return roster
}
