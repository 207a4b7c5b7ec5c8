package postgres

import (
	"context"

	evaluationDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/evaluation"
	"github.com/frahmantamala/performance-bonus/internal/evaluation"
	"gorm.io/gorm"
)

type EvaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) evaluation.RepositoryAPI {
	return &EvaluationRepository{db: db}
}

func (r *EvaluationRepository) ListByBusiness(ctx context.Context, businessID string) ([]*evaluationDatamodel.Evaluation, error) {
	var rows []*evaluationDatamodel.Evaluation
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("user_id ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *EvaluationRepository) Create(ctx context.Context, e *evaluationDatamodel.Evaluation) error {
	return r.db.WithContext(ctx).Create(e).Error
}
