package bonus

import (
	"context"
	"errors"
	"fmt"
	"time"

	allocationDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/allocation"
	"github.com/shopspring/decimal"
)

// ErrStaleDraft is returned by a Store when a save carries a version that no
// longer matches the stored draft.
var ErrStaleDraft = errors.New("allocation draft version is stale")

type Status string

const (
	StatusDraft Status = "draft"
	StatusFinal Status = "final"
)

type Entry struct {
	MonthlySalary   decimal.Decimal
	BonusPercentage decimal.Decimal
}

// Draft is the allocation of one department for one year.
type Draft struct {
	BusinessID   string
	DepartmentID string
	Year         int
	TotalBudget  decimal.Decimal
	Allocations  map[string]Entry
	Status       Status
	// Version is the stored version this draft was read at. Zero skips the
	// stale check and the save overwrites whatever is stored.
	Version   int64
	LastSaved time.Time
}

// Key is the store key of a department's draft for a year.
func Key(departmentID string, year int) string {
	return fmt.Sprintf("%s_%d", departmentID, year)
}

func NewDraft(businessID, departmentID string, year int) *Draft {
	return &Draft{
		BusinessID:   businessID,
		DepartmentID: departmentID,
		Year:         year,
		TotalBudget:  decimal.Zero,
		Allocations:  make(map[string]Entry),
		Status:       StatusDraft,
	}
}

func (d *Draft) Key() string {
	return Key(d.DepartmentID, d.Year)
}

func (d *Draft) Percentages() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(d.Allocations))
	for id, e := range d.Allocations {
		out[id] = e.BonusPercentage
	}
	return out
}

// Apply overwrites the percentage of every member in percentages, recording
// the salary it was computed against. Other entries are kept untouched.
func (d *Draft) Apply(percentages map[string]decimal.Decimal, salaries map[string]decimal.Decimal) {
	if d.Allocations == nil {
		d.Allocations = make(map[string]Entry, len(percentages))
	}
	for id, p := range percentages {
		e := d.Allocations[id]
		e.BonusPercentage = p
		if s, ok := salaries[id]; ok {
			e.MonthlySalary = s
		}
		d.Allocations[id] = e
	}
}

// Clone returns a deep copy of the draft.
func (d *Draft) Clone() *Draft {
	cp := *d
	cp.Allocations = make(map[string]Entry, len(d.Allocations))
	for id, e := range d.Allocations {
		cp.Allocations[id] = e
	}
	return &cp
}

// Store persists drafts keyed by business and Key(departmentID, year).
type Store interface {
	// Get returns nil, nil when no draft was saved yet.
	Get(ctx context.Context, businessID, departmentID string, year int) (*Draft, error)
	// Put writes d, bumps d.Version to the stored version and returns
	// ErrStaleDraft when d.Version is set and differs from the stored one.
	Put(ctx context.Context, d *Draft) error
}

func ToDataModel(d *Draft) *allocationDatamodel.Draft {
	entries := make(map[string]allocationDatamodel.Entry, len(d.Allocations))
	for id, e := range d.Allocations {
		entries[id] = allocationDatamodel.Entry{
			MonthlySalary:   e.MonthlySalary,
			BonusPercentage: e.BonusPercentage,
		}
	}
	return &allocationDatamodel.Draft{
		BusinessID:   d.BusinessID,
		Key:          d.Key(),
		DepartmentID: d.DepartmentID,
		Year:         d.Year,
		TotalBudget:  d.TotalBudget,
		Allocations:  entries,
		Status:       string(d.Status),
		Version:      d.Version,
		LastSaved:    d.LastSaved,
	}
}

func FromDataModel(d *allocationDatamodel.Draft) *Draft {
	entries := make(map[string]Entry, len(d.Allocations))
	for id, e := range d.Allocations {
		entries[id] = Entry{
			MonthlySalary:   e.MonthlySalary,
			BonusPercentage: e.BonusPercentage,
		}
	}
	return &Draft{
		BusinessID:   d.BusinessID,
		DepartmentID: d.DepartmentID,
		Year:         d.Year,
		TotalBudget:  d.TotalBudget,
		Allocations:  entries,
		Status:       Status(d.Status),
		Version:      d.Version,
		LastSaved:    d.LastSaved,
	}
}
