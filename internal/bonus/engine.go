package bonus

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Member is one scored team member as the engine sees them. A zero salary
// means none was declared.
type Member struct {
	UserID        string
	MonthlySalary decimal.Decimal
	// Weight is the normalized 0..10 score, or the neutral weight for a
	// member without a completed evaluation.
	Weight decimal.Decimal
}

func (m Member) HasSalary() bool {
	return m.MonthlySalary.IsPositive()
}

// NoOpReason explains why AutoAllocate computed nothing.
type NoOpReason string

const (
	NoOpMissingBudget NoOpReason = "missing_budget"
	NoOpEmptyTeam     NoOpReason = "empty_team"
	NoOpNoSalaries    NoOpReason = "no_salaries"
	NoOpZeroWeight    NoOpReason = "zero_weight"
)

func (r NoOpReason) Message() string {
	switch r {
	case NoOpMissingBudget:
		return "Set a total budget greater than zero before auto-allocating"
	case NoOpEmptyTeam:
		return "There is nobody in this team to allocate a bonus to"
	case NoOpNoSalaries:
		return "No team member has a monthly salary on record"
	case NoOpZeroWeight:
		return "Team members have no performance weight to split the budget by"
	}
	return ""
}

// Outcome is the result of AutoAllocate. When NoOp is set Percentages is nil
// and existing allocations must be left as they are.
type Outcome struct {
	Percentages map[string]decimal.Decimal
	NoOp        NoOpReason
}

func (o Outcome) Computed() bool {
	return o.NoOp == ""
}

type Engine struct {
	places int32
	unit   decimal.Decimal
}

// NewEngine returns an engine rounding percentages to places decimals.
func NewEngine(places int32) *Engine {
	if places < 0 {
		places = 0
	}
	return &Engine{places: places, unit: decimal.New(1, -places)}
}

// AutoAllocate splits budget across salaried members in proportion to their
// weight and expresses each share as a percentage of that member's salary.
// Members without a salary get no entry. After rounding, the members rounded
// up the most are stepped down one unit at a time until the allocated amount
// fits the budget.
func (e *Engine) AutoAllocate(team []Member, budget decimal.Decimal) Outcome {
	switch {
	case !budget.IsPositive():
		return Outcome{NoOp: NoOpMissingBudget}
	case len(team) == 0:
		return Outcome{NoOp: NoOpEmptyTeam}
	}

	salaried := make([]Member, 0, len(team))
	totalWeight := decimal.Zero
	for _, m := range team {
		if !m.HasSalary() {
			continue
		}
		salaried = append(salaried, m)
		if m.Weight.IsPositive() {
			totalWeight = totalWeight.Add(m.Weight)
		}
	}
	if len(salaried) == 0 {
		return Outcome{NoOp: NoOpNoSalaries}
	}
	if !totalWeight.IsPositive() {
		return Outcome{NoOp: NoOpZeroWeight}
	}

	percentages := make(map[string]decimal.Decimal, len(salaried))
	residuals := make([]decimal.Decimal, len(salaried))
	for i, m := range salaried {
		weight := decimal.Max(m.Weight, decimal.Zero)
		share := budget.Mul(weight).Div(totalWeight)
		exact := share.Mul(hundred).Div(m.MonthlySalary)
		rounded := decimal.Max(exact.Round(e.places), decimal.Zero)
		percentages[m.UserID] = rounded
		residuals[i] = rounded.Sub(exact)
	}

	e.fitBudget(salaried, percentages, residuals, budget)
	return Outcome{Percentages: percentages}
}

func (e *Engine) fitBudget(members []Member, percentages map[string]decimal.Decimal, residuals []decimal.Decimal, budget decimal.Decimal) {
	allocated := decimal.Zero
	for _, m := range members {
		allocated = allocated.Add(amount(m.MonthlySalary, percentages[m.UserID]))
	}

	for allocated.GreaterThan(budget) {
		pick := -1
		for i, m := range members {
			if !percentages[m.UserID].IsPositive() {
				continue
			}
			if pick < 0 || residuals[i].GreaterThan(residuals[pick]) {
				pick = i
			}
		}
		if pick < 0 {
			return
		}

		m := members[pick]
		step := decimal.Min(e.unit, percentages[m.UserID])
		percentages[m.UserID] = percentages[m.UserID].Sub(step)
		residuals[pick] = residuals[pick].Sub(step)
		allocated = allocated.Sub(amount(m.MonthlySalary, step))
	}
}

// AdjustPercentage returns a copy of allocation with delta added to userID's
// percentage, floored at zero.
func AdjustPercentage(allocation map[string]decimal.Decimal, userID string, delta decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(allocation)+1)
	for id, p := range allocation {
		out[id] = p
	}
	out[userID] = decimal.Max(out[userID].Add(delta), decimal.Zero)
	return out
}

type Totals struct {
	Allocated decimal.Decimal
	Remaining decimal.Decimal
	Exceeded  bool
}

// ComputeTotals sums salary x percentage / 100 over members that have both.
// Exceeded is advisory and never blocks a save.
func ComputeTotals(team []Member, allocation map[string]decimal.Decimal, budget decimal.Decimal) Totals {
	allocated := decimal.Zero
	for _, m := range team {
		p, ok := allocation[m.UserID]
		if !ok || !m.HasSalary() {
			continue
		}
		allocated = allocated.Add(amount(m.MonthlySalary, p))
	}
	return Totals{
		Allocated: allocated,
		Remaining: budget.Sub(allocated),
		Exceeded:  allocated.GreaterThan(budget),
	}
}

func amount(salary, percentage decimal.Decimal) decimal.Decimal {
	return salary.Mul(percentage).Div(hundred)
}
