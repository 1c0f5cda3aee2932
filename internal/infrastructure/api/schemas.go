package api

// Request/response schemas for the ProjectHub REST contract. These are
// deliberately separate from the domain types: the wire contract is owned
// here and validated here, so malformed payloads are rejected at this edge
// instead of defended against everywhere else.

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type identityResponse struct {
	ID       string `json:"id"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"`
	Role     string `json:"role"     validate:"required"`
}

type authResponse struct {
	AccessToken string           `json:"access_token" validate:"required"`
	User        identityResponse `json:"user"         validate:"required"`
}

type projectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

type membersRequest struct {
	Owners  []string `json:"owners"`
	Members []string `json:"members"`
}

type taskRequest struct {
	Title       string `json:"title"    validate:"required"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"   validate:"omitempty,oneof=pending in_progress completed"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     string `json:"due_date,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
	Assignee    string `json:"assignee,omitempty"`
}

type commentRequest struct {
	Content string `json:"content" validate:"required"`
	Author  string `json:"author"`
}
