package user

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID            string              `gorm:"column:id;primaryKey"`
	BusinessID    string              `gorm:"column:business_id;index;not null"`
	Email         string              `gorm:"column:email;uniqueIndex;not null"`
	Name          string              `gorm:"column:name;not null"`
	Role          string              `gorm:"column:role;not null"`
	DepartmentID  *string             `gorm:"column:department_id;index"`
	MonthlySalary decimal.NullDecimal `gorm:"column:monthly_salary;type:numeric(14,2)"`
	IsActive      bool                `gorm:"column:is_active"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
