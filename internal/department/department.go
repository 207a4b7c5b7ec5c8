package department

import (
	"time"

	departmentDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/department"
)

type Department struct {
	ID            string    `json:"id"`
	BusinessID    string    `json:"business_id"`
	Name          string    `json:"name"`
	ParentID      *string   `json:"parent_department_id,omitempty"`
	ManagerID     *string   `json:"manager_id,omitempty"`
	IsActive      bool      `json:"is_active"`
	EmployeeCount int       `json:"employee_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Parent returns the declared parent id or "" for a top-level department.
func (d *Department) Parent() string {
	if d.ParentID == nil {
		return ""
	}
	return *d.ParentID
}

func (d *Department) Deactivate() {
	d.IsActive = false
	d.UpdatedAt = time.Now()
}

func NewDepartment(id, businessID, name string, parentID, managerID *string) *Department {
	now := time.Now()
	return &Department{
		ID:         id,
		BusinessID: businessID,
		Name:       name,
		ParentID:   parentID,
		ManagerID:  managerID,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (d *Department) ToResponse() DepartmentResponse {
	return DepartmentResponse{
		ID:            d.ID,
		Name:          d.Name,
		ParentID:      d.ParentID,
		ManagerID:     d.ManagerID,
		IsActive:      d.IsActive,
		EmployeeCount: d.EmployeeCount,
	}
}

func ToDataModel(d *Department) *departmentDatamodel.Department {
	return &departmentDatamodel.Department{
		ID:            d.ID,
		BusinessID:    d.BusinessID,
		Name:          d.Name,
		ParentID:      d.ParentID,
		ManagerID:     d.ManagerID,
		IsActive:      d.IsActive,
		EmployeeCount: d.EmployeeCount,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func FromDataModel(d *departmentDatamodel.Department) *Department {
	return &Department{
		ID:            d.ID,
		BusinessID:    d.BusinessID,
		Name:          d.Name,
		ParentID:      d.ParentID,
		ManagerID:     d.ManagerID,
		IsActive:      d.IsActive,
		EmployeeCount: d.EmployeeCount,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
