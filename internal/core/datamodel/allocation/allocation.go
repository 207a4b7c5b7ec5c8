package allocation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one member's line in a stored draft.
type Entry struct {
	MonthlySalary   decimal.Decimal `json:"monthly_salary"`
	BonusPercentage decimal.Decimal `json:"bonus_percentage"`
}

type Draft struct {
	BusinessID   string           `gorm:"column:business_id;primaryKey"`
	Key          string           `gorm:"column:draft_key;primaryKey"`
	DepartmentID string           `gorm:"column:department_id;not null"`
	Year         int              `gorm:"column:year;not null"`
	TotalBudget  decimal.Decimal  `gorm:"column:total_budget;type:numeric(16,2)"`
	Allocations  map[string]Entry `gorm:"column:allocations;type:text;serializer:json"`
	Status       string           `gorm:"column:status;not null"`
	Version      int64            `gorm:"column:version;not null;default:0"`
	LastSaved    time.Time        `gorm:"column:last_saved"`
}

func (Draft) TableName() string {
	return "allocation_drafts"
}
