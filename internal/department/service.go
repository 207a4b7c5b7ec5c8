package department

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/performance-bonus/internal"
	"github.com/frahmantamala/performance-bonus/internal/core/common/validation"
	departmentDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/department"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	ListByBusiness(ctx context.Context, businessID string) ([]*departmentDatamodel.Department, error)
	GetByID(ctx context.Context, id string) (*departmentDatamodel.Department, error)
	Create(ctx context.Context, d *departmentDatamodel.Department) error
	Update(ctx context.Context, d *departmentDatamodel.Department) error
}

// MemberCounter reports how many active employees call a department home.
type MemberCounter interface {
	CountActiveInDepartment(ctx context.Context, departmentID string) (int64, error)
}

type Service struct {
	repo    RepositoryAPI
	members MemberCounter
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, members MemberCounter, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		members: members,
		logger:  logger,
	}
}

func (s *Service) ListByBusiness(ctx context.Context, businessID string) ([]*Department, error) {
	rows, err := s.repo.ListByBusiness(ctx, businessID)
	if err != nil {
		s.logger.Error("failed to list departments", "error", err, "business_id", businessID)
		return nil, err
	}

	departments := make([]*Department, 0, len(rows))
	for _, row := range rows {
		departments = append(departments, FromDataModel(row))
	}
	return departments, nil
}

func (s *Service) Tree(ctx context.Context, businessID string) (*Tree, error) {
	departments, err := s.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	tree := Build(departments)
	if len(tree.Cycles) > 0 {
		s.logger.Warn("department hierarchy contains cycles, affected departments shown at top level",
			"business_id", businessID, "department_ids", tree.Cycles)
	}
	return tree, nil
}

// ParentOptions lists the departments that may become excludeID's parent.
func (s *Service) ParentOptions(ctx context.Context, businessID, excludeID string) ([]Entry, error) {
	tree, err := s.Tree(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return Flatten(tree, excludeID), nil
}

func (s *Service) Create(ctx context.Context, businessID string, dto CreateDepartmentDTO) (*Department, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}

	parentID := nonEmpty(dto.ParentID)
	if parentID != nil {
		parent, err := s.find(ctx, businessID, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, internal.NewValidationFieldError("parent_department_id", "parent department does not exist", internal.ErrCodeDepartmentNotFound)
		}
	}

	d := NewDepartment(uuid.NewString(), businessID, dto.Name, parentID, nonEmpty(dto.ManagerID))
	if err := s.repo.Create(ctx, ToDataModel(d)); err != nil {
		s.logger.Error("failed to create department", "error", err, "business_id", businessID)
		return nil, err
	}

	s.logger.Info("department created", "department_id", d.ID, "business_id", businessID)
	return d, nil
}

// Update applies dto to the department. A parent change that would create a
// cycle is refused with internal.ErrDepartmentCycle and nothing is written.
func (s *Service) Update(ctx context.Context, businessID, id string, dto UpdateDepartmentDTO) (*Department, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}

	departments, err := s.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	var target *Department
	for _, d := range departments {
		if d.ID == id {
			target = d
			break
		}
	}
	if target == nil {
		return nil, internal.ErrDepartmentNotFound
	}

	if dto.ParentID != nil {
		newParent := *dto.ParentID
		if err := ValidateParentChange(departments, id, newParent); err != nil {
			var cycleErr *CycleError
			switch {
			case errors.As(err, &cycleErr):
				s.logger.Warn("refused department reparent", "department_id", id, "parent_id", newParent)
				return nil, internal.ErrDepartmentCycle.WithCause(err)
			case errors.Is(err, ErrParentNotFound):
				return nil, internal.NewValidationFieldError("parent_department_id", "parent department does not exist", internal.ErrCodeDepartmentNotFound)
			default:
				return nil, err
			}
		}
		target.ParentID = nonEmpty(dto.ParentID)
	}
	if dto.Name != nil {
		target.Name = *dto.Name
	}
	if dto.ManagerID != nil {
		target.ManagerID = nonEmpty(dto.ManagerID)
	}
	target.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, ToDataModel(target)); err != nil {
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, err
	}
	return target, nil
}

// Deactivate marks the department inactive. It is refused while active
// employees or active child departments remain.
func (s *Service) Deactivate(ctx context.Context, businessID, id string) error {
	departments, err := s.ListByBusiness(ctx, businessID)
	if err != nil {
		return err
	}

	var target *Department
	activeChildren := 0
	for _, d := range departments {
		if d.ID == id {
			target = d
		}
		if d.Parent() == id && d.ID != id && d.IsActive {
			activeChildren++
		}
	}
	if target == nil {
		return internal.ErrDepartmentNotFound
	}
	if !target.IsActive {
		return nil
	}

	activeEmployees, err := s.members.CountActiveInDepartment(ctx, id)
	if err != nil {
		s.logger.Error("failed to count department members", "error", err, "department_id", id)
		return err
	}

	if activeEmployees > 0 || activeChildren > 0 {
		return internal.ErrDepartmentHasActiveMembers.WithDetails(map[string]interface{}{
			"active_employees": activeEmployees,
			"active_children":  activeChildren,
		})
	}

	target.Deactivate()
	if err := s.repo.Update(ctx, ToDataModel(target)); err != nil {
		s.logger.Error("failed to deactivate department", "error", err, "department_id", id)
		return err
	}

	s.logger.Info("department deactivated", "department_id", id)
	return nil
}

func (s *Service) find(ctx context.Context, businessID, id string) (*Department, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get department", "error", err, "department_id", id)
		return nil, err
	}
	if row == nil || row.BusinessID != businessID {
		return nil, nil
	}
	return FromDataModel(row), nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
