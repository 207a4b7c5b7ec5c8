package visibility

type MemberResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	DepartmentID *string `json:"department_id,omitempty"`
	Via          string  `json:"via"`
}

type TeamResponse struct {
	Mode    string           `json:"mode"`
	Members []MemberResponse `json:"members"`

	// DanglingTargets are assignment targets that reference unknown users.
	DanglingTargets []string `json:"dangling_assignment_targets,omitempty"`
}

func NewTeamResponse(team *Team, mode Mode) TeamResponse {
	resp := TeamResponse{
		Mode:            string(mode),
		Members:         make([]MemberResponse, 0, team.Len()),
		DanglingTargets: team.Dangling,
	}
	for _, m := range team.Members {
		via, _ := team.Via(m.ID)
		resp.Members = append(resp.Members, MemberResponse{
			ID:           m.ID,
			Name:         m.Name,
			Email:        m.Email,
			Role:         string(m.Role),
			DepartmentID: m.DepartmentID,
			Via:          string(via),
		})
	}
	return resp
}
