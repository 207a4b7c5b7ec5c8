package department

type CreateDepartmentDTO struct {
	Name      string  `json:"name" validate:"required,max=120"`
	ParentID  *string `json:"parent_department_id,omitempty"`
	ManagerID *string `json:"manager_id,omitempty"`
}

// UpdateDepartmentDTO changes only the fields that are present. An empty
// parent_department_id moves the department to the top level.
type UpdateDepartmentDTO struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	ParentID  *string `json:"parent_department_id,omitempty"`
	ManagerID *string `json:"manager_id,omitempty"`
}

type DepartmentResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ParentID      *string `json:"parent_department_id,omitempty"`
	ManagerID     *string `json:"manager_id,omitempty"`
	IsActive      bool    `json:"is_active"`
	EmployeeCount int     `json:"employee_count"`
}

type TreeNodeResponse struct {
	DepartmentResponse
	Children []TreeNodeResponse `json:"children"`
}

type TreeResponse struct {
	Departments []TreeNodeResponse `json:"departments"`
	Cycles      []string           `json:"cycles,omitempty"`
}

type OptionResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Level         int    `json:"level"`
	IsLast        bool   `json:"is_last"`
	AncestorsLast []bool `json:"ancestors_last"`
}

type OptionsResponse struct {
	Options []OptionResponse `json:"options"`
}

func NewTreeResponse(t *Tree) TreeResponse {
	var convert func(nodes []*Node) []TreeNodeResponse
	convert = func(nodes []*Node) []TreeNodeResponse {
		out := make([]TreeNodeResponse, 0, len(nodes))
		for _, n := range nodes {
			out = append(out, TreeNodeResponse{
				DepartmentResponse: n.Department.ToResponse(),
				Children:           convert(n.Children),
			})
		}
		return out
	}
	return TreeResponse{Departments: convert(t.Roots), Cycles: t.Cycles}
}

func NewOptionsResponse(entries []Entry) OptionsResponse {
	resp := OptionsResponse{Options: make([]OptionResponse, 0, len(entries))}
	for _, e := range entries {
		ancestors := e.AncestorsLast
		if ancestors == nil {
			ancestors = []bool{}
		}
		resp.Options = append(resp.Options, OptionResponse{
			ID:            e.Department.ID,
			Name:          e.Department.Name,
			Level:         e.Level,
			IsLast:        e.IsLast,
			AncestorsLast: ancestors,
		})
	}
	return resp
}
