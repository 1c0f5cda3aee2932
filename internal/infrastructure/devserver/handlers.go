package devserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
)

type handler struct {
	store   *Store
	auth    *authenticator
	metrics *metrics
}

// ── Schemas ──────────────────────────────────────────────────────────────

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=4"`
}

type authResponse struct {
	AccessToken string          `json:"access_token"`
	User        domain.Identity `json:"user"`
}

type projectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"omitempty,oneof=planning active completed on_hold"`
}

type membersRequest struct {
	Owners  []string `json:"owners"`
	Members []string `json:"members"`
}

type taskRequest struct {
	Title       string `json:"title"    validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status"   validate:"omitempty,oneof=pending in_progress completed"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     string `json:"due_date"`
	ProjectID   string `json:"project_id"`
	Assignee    string `json:"assignee"`
}

type commentRequest struct {
	Content string `json:"content" validate:"required"`
	Author  string `json:"author"`
}

// ── Auth ─────────────────────────────────────────────────────────────────

func (h *handler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, acct, err := h.auth.login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		h.metrics.loginsTotal.WithLabelValues("failure").Inc()
		if status := authStatus(err); status == http.StatusUnauthorized {
			return echo.NewHTTPError(status, "Incorrect username or password")
		}
		return err
	}

	h.metrics.loginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, authResponse{AccessToken: token, User: acct.Identity})
}

func (h *handler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	acct, err := h.auth.register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}
	token, err := h.auth.issueToken(acct)
	if err != nil {
		return err
	}

	h.metrics.registrationsTotal.Inc()
	return c.JSON(http.StatusCreated, authResponse{AccessToken: token, User: acct.Identity})
}

func (h *handler) listUsers(c echo.Context) error {
	users, err := h.store.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// ── Projects ─────────────────────────────────────────────────────────────

func (h *handler) listProjects(c echo.Context) error {
	projects, err := h.store.ListProjects(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

func (h *handler) getProject(c echo.Context) error {
	project, err := h.store.GetProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

func (h *handler) createProject(c echo.Context) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	project := &domain.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.ProjectStatus(req.Status),
		Owners:      []string{identity.Username},
	}
	created, err := h.store.CreateProject(c.Request().Context(), project)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *handler) updateProject(c echo.Context) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	project, err := h.store.GetProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !domain.EvaluateProjectPermissions(identity, project).CanEditProject {
		h.metrics.permissionDenialsTotal.WithLabelValues("project").Inc()
		return domain.ErrForbidden
	}

	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	project.Name = req.Name
	if req.Description != "" {
		project.Description = req.Description
	}
	if req.Status != "" {
		project.Status = domain.ProjectStatus(req.Status)
	}
	updated, err := h.store.UpdateProject(c.Request().Context(), project)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *handler) deleteProject(c echo.Context) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	project, err := h.store.GetProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !domain.EvaluateProjectPermissions(identity, project).CanDeleteProject {
		h.metrics.permissionDenialsTotal.WithLabelValues("project").Inc()
		return domain.ErrForbidden
	}
	if err := h.store.DeleteProject(c.Request().Context(), project.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) updateMembers(c echo.Context) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	project, err := h.store.GetProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !domain.EvaluateProjectPermissions(identity, project).CanManageMembers {
		h.metrics.permissionDenialsTotal.WithLabelValues("project").Inc()
		return domain.ErrForbidden
	}

	var req membersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	updated, err := h.store.ReplaceMembers(c.Request().Context(), project.ID, req.Owners, req.Members)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// ── Tasks ────────────────────────────────────────────────────────────────

func (h *handler) listTasks(c echo.Context) error {
	tasks, err := h.store.ListTasks(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *handler) listProjectTasks(c echo.Context) error {
	tasks, err := h.store.ListTasks(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *handler) getTask(c echo.Context) error {
	task, err := h.store.GetTask(c.Request().Context(), c.Param("taskID"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *handler) createTask(c echo.Context) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// A task bound to a project requires create capability on that project.
	if req.ProjectID != "" {
		project, err := h.store.GetProject(c.Request().Context(), req.ProjectID)
		if err != nil {
			return err
		}
		if !domain.EvaluateTaskPermissions(identity, project, nil).CanCreateTask {
			h.metrics.permissionDenialsTotal.WithLabelValues("task").Inc()
			return domain.ErrForbidden
		}
	}

	task := &domain.Task{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		Assignee:    req.Assignee,
		DueDate:     req.DueDate,
	}
	created, err := h.store.CreateTask(c.Request().Context(), task)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *handler) updateTask(c echo.Context) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	task, err := h.store.GetTask(c.Request().Context(), c.Param("taskID"))
	if err != nil {
		return err
	}
	if allowed, err := h.canMutateTask(c, identity, task, false); err != nil {
		return err
	} else if !allowed {
		h.metrics.permissionDenialsTotal.WithLabelValues("task").Inc()
		return domain.ErrForbidden
	}

	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task.Title = req.Title
	task.Description = req.Description
	if req.Status != "" {
		task.Status = domain.TaskStatus(req.Status)
	}
	if req.Priority != "" {
		task.Priority = domain.TaskPriority(req.Priority)
	}
	task.Assignee = req.Assignee
	task.DueDate = req.DueDate

	updated, err := h.store.UpdateTask(c.Request().Context(), task)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *handler) deleteTask(c echo.Context) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	task, err := h.store.GetTask(c.Request().Context(), c.Param("taskID"))
	if err != nil {
		return err
	}
	if allowed, err := h.canMutateTask(c, identity, task, true); err != nil {
		return err
	} else if !allowed {
		h.metrics.permissionDenialsTotal.WithLabelValues("task").Inc()
		return domain.ErrForbidden
	}
	if err := h.store.DeleteTask(c.Request().Context(), task.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// canMutateTask applies the task capability rules, loading the project when
// the task belongs to one. An orphan task is governed by role alone.
func (h *handler) canMutateTask(c echo.Context, identity *domain.Identity, task *domain.Task, wantDelete bool) (bool, error) {
	var project *domain.Project
	if task.ProjectID != "" {
		var err error
		project, err = h.store.GetProject(c.Request().Context(), task.ProjectID)
		if err != nil {
			return false, err
		}
	}
	caps := domain.EvaluateTaskPermissions(identity, project, task)
	if wantDelete {
		return caps.CanDeleteTask, nil
	}
	return caps.CanEditTask, nil
}

// ── Comments ─────────────────────────────────────────────────────────────

func (h *handler) listComments(c echo.Context) error {
	task, err := h.store.GetTask(c.Request().Context(), c.Param("taskID"))
	if err != nil {
		return err
	}
	comments, err := h.store.ListComments(c.Request().Context(), task.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *handler) addComment(c echo.Context) error {
	identity, err := callerIdentity(c)
	if err != nil {
		return err
	}
	task, err := h.store.GetTask(c.Request().Context(), c.Param("taskID"))
	if err != nil {
		return err
	}

	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	author := req.Author
	if author == "" {
		author = identity.Username
	}
	comment, err := h.store.CreateComment(c.Request().Context(), task.ID, req.Content, author)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}
