package bonus

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryDTO struct {
	MonthlySalary   *decimal.Decimal `json:"monthly_salary,omitempty"`
	BonusPercentage decimal.Decimal  `json:"bonus_percentage"`
}

type AutoAllocateDTO struct {
	TotalBudget decimal.Decimal `json:"total_budget"`
}

// AdjustDTO applies Delta to one member of a working allocation. When
// Allocations is omitted the stored draft is the starting point.
type AdjustDTO struct {
	Delta       decimal.Decimal     `json:"delta"`
	TotalBudget *decimal.Decimal    `json:"total_budget,omitempty"`
	Allocations map[string]EntryDTO `json:"allocations,omitempty"`
}

type SaveAllocationDTO struct {
	TotalBudget decimal.Decimal     `json:"total_budget"`
	Allocations map[string]EntryDTO `json:"allocations"`
	Version     int64               `json:"version" validate:"min=0"`
}

type FinalizeDTO struct {
	Version int64 `json:"version" validate:"min=0"`
}

type MemberResponse struct {
	UserID          string           `json:"user_id"`
	Name            string           `json:"name"`
	DepartmentID    *string          `json:"department_id,omitempty"`
	Via             string           `json:"via"`
	MonthlySalary   *decimal.Decimal `json:"monthly_salary,omitempty"`
	NormalizedScore decimal.Decimal  `json:"normalized_score"`
	Scored          bool             `json:"scored"`
	BonusPercentage *decimal.Decimal `json:"bonus_percentage,omitempty"`
	BonusAmount     *decimal.Decimal `json:"bonus_amount,omitempty"`
}

type AllocationResponse struct {
	DepartmentID string           `json:"department_id"`
	Year         int              `json:"year"`
	Status       string           `json:"status"`
	Version      int64            `json:"version"`
	TotalBudget  decimal.Decimal  `json:"total_budget"`
	Allocated    decimal.Decimal  `json:"allocated"`
	Remaining    decimal.Decimal  `json:"remaining"`
	Exceeded     bool             `json:"exceeded"`
	LastSaved    *time.Time       `json:"last_saved,omitempty"`
	Computed     *bool            `json:"computed,omitempty"`
	Message      string           `json:"message,omitempty"`
	Members      []MemberResponse `json:"members"`

	// DanglingTargets are assignment targets that reference unknown users.
	DanglingTargets []string `json:"dangling_assignment_targets,omitempty"`
}

func NewAllocationResponse(a *Allocation) AllocationResponse {
	resp := AllocationResponse{
		DepartmentID: a.Draft.DepartmentID,
		Year:         a.Draft.Year,
		Status:       string(a.Draft.Status),
		Version:      a.Draft.Version,
		TotalBudget:  a.Draft.TotalBudget,
		Allocated:    a.Totals.Allocated,
		Remaining:    a.Totals.Remaining,
		Exceeded:     a.Totals.Exceeded,
		Members:      make([]MemberResponse, 0, len(a.Roster.Members)),

		DanglingTargets: a.Roster.Dangling,
	}
	if !a.Draft.LastSaved.IsZero() {
		saved := a.Draft.LastSaved
		resp.LastSaved = &saved
	}
	if a.Outcome != nil {
		computed := a.Outcome.Computed()
		resp.Computed = &computed
		resp.Message = a.Outcome.NoOp.Message()
	}

	for _, m := range a.Roster.Members {
		mr := MemberResponse{
			UserID:          m.UserID,
			Name:            m.User.Name,
			DepartmentID:    m.User.DepartmentID,
			Via:             string(m.Via),
			NormalizedScore: m.Weight,
			Scored:          m.Scored,
		}
		if m.HasSalary() {
			salary := m.MonthlySalary
			mr.MonthlySalary = &salary
		}
		if e, ok := a.Draft.Allocations[m.UserID]; ok {
			pct := e.BonusPercentage
			mr.BonusPercentage = &pct
			if m.HasSalary() {
				amt := amount(m.MonthlySalary, pct).Round(2)
				mr.BonusAmount = &amt
			}
		}
		resp.Members = append(resp.Members, mr)
	}
	return resp
}
