package assignment

import "time"

type Assignment struct {
	ID             string     `gorm:"column:id;primaryKey"`
	BusinessID     string     `gorm:"column:business_id;index;not null"`
	Kind           string     `gorm:"column:kind;not null"`
	SourceID       string     `gorm:"column:source_id;index;not null"`
	TargetID       string     `gorm:"column:target_id;not null"`
	AssignmentType string     `gorm:"column:assignment_type;not null"`
	ExpiresDate    *time.Time `gorm:"column:expires_date"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Assignment) TableName() string {
	return "assignments"
}
