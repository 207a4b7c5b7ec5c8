package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/performance-bonus/internal"
	"github.com/frahmantamala/performance-bonus/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RepositoryAPI interface {
	ListByBusiness(ctx context.Context, businessID string) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	CountActiveInDepartment(ctx context.Context, departmentID string) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListByBusiness(ctx context.Context, businessID string) ([]*User, error) {
	rows, err := s.repo.ListByBusiness(ctx, businessID)
	if err != nil {
		s.logger.Error("failed to list users", "error", err, "business_id", businessID)
		return nil, err
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, nil
}

// GetByID returns internal.ErrUserNotFound when no such user exists.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) CountActiveInDepartment(ctx context.Context, departmentID string) (int64, error) {
	return s.repo.CountActiveInDepartment(ctx, departmentID)
}

func (s *Service) Create(ctx context.Context, businessID string, dto CreateUserDTO) (*User, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}

	var salary decimal.NullDecimal
	if dto.MonthlySalary != nil {
		d, err := decimal.NewFromString(*dto.MonthlySalary)
		if err != nil || d.IsNegative() {
			return nil, internal.NewValidationFieldError("monthly_salary", "monthly_salary must be a non-negative number", internal.ErrCodeValidationFailed)
		}
		salary = decimal.NewNullDecimal(d)
	}

	now := time.Now()
	u := &User{
		ID:            uuid.NewString(),
		BusinessID:    businessID,
		Email:         dto.Email,
		Name:          dto.Name,
		Role:          Role(dto.Role),
		DepartmentID:  dto.DepartmentID,
		MonthlySalary: salary,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, ToDataModel(u)); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}
