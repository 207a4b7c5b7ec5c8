package postgres

import (
	"context"
	"errors"

	departmentDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/department"
	"github.com/frahmantamala/performance-bonus/internal/department"
	"gorm.io/gorm"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.RepositoryAPI {
	return &DepartmentRepository{db: db}
}

// ListByBusiness keeps creation order so the tree shows siblings in the
// order they were added.
func (r *DepartmentRepository) ListByBusiness(ctx context.Context, businessID string) ([]*departmentDatamodel.Department, error) {
	var departments []*departmentDatamodel.Department
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at ASC, id ASC").
		Find(&departments).Error
	return departments, err
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id string) (*departmentDatamodel.Department, error) {
	var d departmentDatamodel.Department
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepository) Create(ctx context.Context, d *departmentDatamodel.Department) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DepartmentRepository) Update(ctx context.Context, d *departmentDatamodel.Department) error {
	return r.db.WithContext(ctx).Save(d).Error
}
