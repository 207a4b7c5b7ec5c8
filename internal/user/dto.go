package user

type ProfileResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	DepartmentID  *string `json:"department_id,omitempty"`
	MonthlySalary *string `json:"monthly_salary,omitempty"`
}

type UsersResponse struct {
	Users []ProfileResponse `json:"users"`
}

type CreateUserDTO struct {
	Email         string  `json:"email" validate:"required,email"`
	Name          string  `json:"name" validate:"required,max=120"`
	Role          string  `json:"role" validate:"required,oneof=admin hr head-manager manager supervisor employee"`
	DepartmentID  *string `json:"department_id,omitempty"`
	MonthlySalary *string `json:"monthly_salary,omitempty"`
}
