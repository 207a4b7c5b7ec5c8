package department

import "time"

type Department struct {
	ID            string    `gorm:"column:id;primaryKey"`
	BusinessID    string    `gorm:"column:business_id;index;not null"`
	Name          string    `gorm:"column:name;not null"`
	ParentID      *string   `gorm:"column:parent_department_id;index"`
	ManagerID     *string   `gorm:"column:manager_id"`
	IsActive      bool      `gorm:"column:is_active"`
	EmployeeCount int       `gorm:"column:employee_count;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Department) TableName() string {
	return "departments"
}
