// Package devserver is a self-contained ProjectHub backend for local
// development and integration testing. It speaks the same REST contract the
// client consumes in production, backed by an embedded SQLite database, so
// `projecthub devserver` gives a working stack with no external services.
package devserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
)

// New builds the Echo instance with all routes registered.
func New(store *Store, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = newValidator()
	e.HTTPErrorHandler = newHTTPErrorHandler(log)

	// Per-instance registry: registering into the global default one would
	// panic on the second New in a process.
	reg := prometheus.NewRegistry()

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "projecthub_dev",
		Registerer: reg,
	}))

	auth := &authenticator{store: store, secret: jwtSecret}
	h := &handler{store: store, auth: auth, metrics: newMetrics(reg)}

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: reg,
	}))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.POST("/login", h.login)
	e.POST("/register", h.register)

	authed := e.Group("", auth.requireAuth)
	authed.GET("/users", h.listUsers)

	authed.GET("/projects", h.listProjects)
	authed.POST("/projects", h.createProject)
	authed.GET("/projects/:id", h.getProject)
	authed.PUT("/projects/:id", h.updateProject)
	authed.DELETE("/projects/:id", h.deleteProject)
	authed.PUT("/projects/:id/members", h.updateMembers)
	authed.GET("/projects/:id/tasks", h.listProjectTasks)

	authed.GET("/tasks", h.listTasks)
	authed.POST("/tasks", h.createTask)
	authed.GET("/tasks/:taskID", h.getTask)
	authed.PUT("/tasks/:taskID", h.updateTask)
	authed.DELETE("/tasks/:taskID", h.deleteTask)

	authed.GET("/projects/:id/tasks/:taskID/comments", h.listComments)
	authed.POST("/projects/:id/tasks/:taskID/comments", h.addComment)

	return e
}

// errorEnvelope is the canonical error body for all API errors.
type errorEnvelope struct {
	Error string `json:"error"`
}

// newHTTPErrorHandler maps known domain errors to deterministic status codes
// and renders a consistent JSON envelope, logging anything unexpected.
func newHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorEnvelope{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrProjectNotFound):
		return http.StatusNotFound, "project not found"
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "task not found"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
