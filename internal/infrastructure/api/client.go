// Package api implements the HTTP client for the ProjectHub REST backend.
// It is the only place the bearer credential is attached to outbound
// requests, and the only place backend payloads are parsed: every response
// is validated at this edge so the rest of the client never defends against
// half-formed data.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
	"github.com/projecthub/projecthub-cli/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

var _ ports.Backend = (*Client)(nil)

// Client talks to the ProjectHub backend. It implements ports.Backend.
type Client struct {
	baseURL  string
	http     *http.Client
	validate *validator.Validate
	log      zerolog.Logger

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		validate: validator.New(),
		log:      log,
	}
}

// SetCredential installs the bearer token attached to every subsequent
// request. There is exactly one accessor for the credential; callers never
// read it back.
func (c *Client) SetCredential(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearCredential removes the bearer token.
func (c *Client) ClearCredential() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func (c *Client) credential() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do performs one request. A non-2xx status becomes a *domain.BackendError
// carrying the backend's own message; transport failures are returned as-is
// wrapped with context.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode: %w", method, path, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.credential(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.BackendError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

// errorMessage extracts the human-readable message from a backend error
// payload. Both `detail` and `error` envelopes occur in the wild; anything
// else yields an empty message and callers fall back to a generic one.
func errorMessage(body io.Reader) string {
	var payload struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	if s, ok := payload.Detail.(string); ok && s != "" {
		return s
	}
	return payload.Error
}

// Login authenticates and returns the (credential, identity) payload.
func (c *Client) Login(ctx context.Context, username, password string) (*ports.AuthPayload, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/login", loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return c.authPayload(resp)
}

// Register creates an account and returns the same payload shape as Login.
func (c *Client) Register(ctx context.Context, username, email, password string) (*ports.AuthPayload, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/register", registerRequest{Username: username, Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return c.authPayload(resp)
}

func (c *Client) authPayload(resp authResponse) (*ports.AuthPayload, error) {
	if err := c.validate.Struct(resp); err != nil {
		c.log.Debug().Err(err).Msg("auth payload failed validation")
		return nil, fmt.Errorf("auth response: %w", domain.ErrMalformedSession)
	}
	return &ports.AuthPayload{
		AccessToken: resp.AccessToken,
		User: domain.Identity{
			ID:       resp.User.ID,
			Username: resp.User.Username,
			Email:    resp.User.Email,
			Role:     resp.User.Role,
		},
	}, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var out []domain.Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	var out domain.Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProject(ctx context.Context, name, description string) (*domain.Project, error) {
	var out domain.Project
	req := projectRequest{Name: name, Description: description}
	if err := c.validate.Struct(req); err != nil {
		return nil, &domain.BackendError{StatusCode: http.StatusBadRequest, Message: "project name is required"}
	}
	if err := c.do(ctx, http.MethodPost, "/projects", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProject(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	var out domain.Project
	if err := c.do(ctx, http.MethodPut, "/projects/"+url.PathEscape(project.ID), project, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil)
}

// UpdateMembers replaces the project's owner and member sets. Usernames are
// deduplicated here because the backend stores whatever it receives.
func (c *Client) UpdateMembers(ctx context.Context, projectID string, owners, members []string) (*domain.Project, error) {
	var out domain.Project
	req := membersRequest{
		Owners:  domain.DedupeUsernames(owners),
		Members: domain.DedupeUsernames(members),
	}
	if err := c.do(ctx, http.MethodPut, "/projects/"+url.PathEscape(projectID)+"/members", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var out []domain.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListProjectTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	var out []domain.Task
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var out domain.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	req := taskRequest{
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		ProjectID:   task.ProjectID,
		Assignee:    task.Assignee,
	}
	if err := c.validate.Struct(req); err != nil {
		return nil, &domain.BackendError{StatusCode: http.StatusBadRequest, Message: "task title is required"}
	}
	var out domain.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	var out domain.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(task.ID), task, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListComments(ctx context.Context, projectID, taskID string) ([]domain.Comment, error) {
	var out []domain.Comment
	path := "/projects/" + url.PathEscape(projectID) + "/tasks/" + url.PathEscape(taskID) + "/comments"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddComment(ctx context.Context, projectID, taskID, content, author string) (*domain.Comment, error) {
	req := commentRequest{Content: content, Author: author}
	if err := c.validate.Struct(req); err != nil {
		return nil, &domain.BackendError{StatusCode: http.StatusBadRequest, Message: "comment content is required"}
	}
	var out domain.Comment
	path := "/projects/" + url.PathEscape(projectID) + "/tasks/" + url.PathEscape(taskID) + "/comments"
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.Identity, error) {
	var out []domain.Identity
	if err := c.do(ctx, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
