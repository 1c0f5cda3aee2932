package ports

import (
	"context"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
)

// AuthPayload is what the backend returns from /login and /register.
type AuthPayload struct {
	AccessToken string
	User        domain.Identity
}

// CredentialCarrier is the single accessor through which the bearer token is
// attached to outbound requests. Every authenticated call goes through one
// carrier; screens never read the token themselves.
type CredentialCarrier interface {
	SetCredential(token string)
	ClearCredential()
}

// AuthAPI covers the unauthenticated entry points.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*AuthPayload, error)
	Register(ctx context.Context, username, email, password string) (*AuthPayload, error)
}

// ProjectAPI covers project CRUD and membership management.
type ProjectAPI interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	CreateProject(ctx context.Context, name, description string) (*domain.Project, error)
	UpdateProject(ctx context.Context, project *domain.Project) (*domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
	UpdateMembers(ctx context.Context, projectID string, owners, members []string) (*domain.Project, error)
}

// TaskAPI covers task CRUD.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	ListProjectTasks(ctx context.Context, projectID string) ([]domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)
	UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// CommentAPI covers the per-task discussion thread.
type CommentAPI interface {
	ListComments(ctx context.Context, projectID, taskID string) ([]domain.Comment, error)
	AddComment(ctx context.Context, projectID, taskID, content, author string) (*domain.Comment, error)
}

// UserAPI lists known usernames for member pickers.
type UserAPI interface {
	ListUsers(ctx context.Context) ([]domain.Identity, error)
}

// Backend is the full ProjectHub REST surface as seen by this client.
type Backend interface {
	CredentialCarrier
	AuthAPI
	ProjectAPI
	TaskAPI
	CommentAPI
	UserAPI
}
