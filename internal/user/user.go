package user

import (
	"context"
	"fmt"
	"time"

	userDatamodel "github.com/frahmantamala/performance-bonus/internal/core/datamodel/user"
	"github.com/shopspring/decimal"
)

// Role is the closed set of authority levels a user can hold.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleHR          Role = "hr"
	RoleHeadManager Role = "head-manager"
	RoleManager     Role = "manager"
	RoleSupervisor  Role = "supervisor"
	RoleEmployee    Role = "employee"
)

var Roles = []Role{RoleAdmin, RoleHR, RoleHeadManager, RoleManager, RoleSupervisor, RoleEmployee}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

type User struct {
	ID            string              `json:"id"`
	BusinessID    string              `json:"business_id"`
	Email         string              `json:"email"`
	Name          string              `json:"name"`
	Role          Role                `json:"role"`
	DepartmentID  *string             `json:"department_id,omitempty"`
	MonthlySalary decimal.NullDecimal `json:"monthly_salary"`
	IsActive      bool                `json:"is_active"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// HomeDepartment returns the department id or "" when the user has none.
func (u *User) HomeDepartment() string {
	if u.DepartmentID == nil {
		return ""
	}
	return *u.DepartmentID
}

func (u *User) InDepartment(departmentID string) bool {
	return departmentID != "" && u.HomeDepartment() == departmentID
}

// Salary reports the declared monthly salary; ok is false when none is set
// or it is not positive.
func (u *User) Salary() (decimal.Decimal, bool) {
	if !u.MonthlySalary.Valid || !u.MonthlySalary.Decimal.IsPositive() {
		return decimal.Zero, false
	}
	return u.MonthlySalary.Decimal, true
}

func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func (u *User) ToResponse() ProfileResponse {
	resp := ProfileResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		DepartmentID: u.DepartmentID,
	}
	if salary, ok := u.Salary(); ok {
		s := salary.StringFixed(2)
		resp.MonthlySalary = &s
	}
	return resp
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:            u.ID,
		BusinessID:    u.BusinessID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          string(u.Role),
		DepartmentID:  u.DepartmentID,
		MonthlySalary: u.MonthlySalary,
		IsActive:      u.IsActive,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:            u.ID,
		BusinessID:    u.BusinessID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          Role(u.Role),
		DepartmentID:  u.DepartmentID,
		MonthlySalary: u.MonthlySalary,
		IsActive:      u.IsActive,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

type actorKey struct{}

// ContextWithActor stores the authenticated user for handlers further down
// the chain. Services never read it; handlers pass the actor explicitly.
func ContextWithActor(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, actorKey{}, u)
}

func ActorFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(actorKey{}).(*User)
	return u, ok && u != nil
}
