package evaluation

import "time"

type Evaluation struct {
	ID            string     `gorm:"column:id;primaryKey"`
	BusinessID    string     `gorm:"column:business_id;index;not null"`
	UserID        string     `gorm:"column:user_id;index;not null"`
	Status        string     `gorm:"column:status;not null"`
	OverallRating *float64   `gorm:"column:overall_rating"`
	ScoringSystem *int       `gorm:"column:scoring_system"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}
