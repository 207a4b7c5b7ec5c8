package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/performance-bonus/internal/assignment"
	assignmentDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/assignment"
	"gorm.io/gorm"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) assignment.RepositoryAPI {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) ListByBusiness(ctx context.Context, businessID string) ([]*assignmentDatamodel.Assignment, error) {
	var rows []*assignmentDatamodel.Assignment
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id string) (*assignmentDatamodel.Assignment, error) {
	var a assignmentDatamodel.Assignment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AssignmentRepository) Create(ctx context.Context, a *assignmentDatamodel.Assignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&assignmentDatamodel.Assignment{}).Error
}
