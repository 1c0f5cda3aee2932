package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
	"github.com/projecthub/projecthub-cli/internal/core/ports"
	"github.com/projecthub/projecthub-cli/internal/core/service"
	"github.com/projecthub/projecthub-cli/internal/infrastructure/api"
	"github.com/projecthub/projecthub-cli/internal/infrastructure/config"
	"github.com/projecthub/projecthub-cli/internal/infrastructure/session"
	"github.com/projecthub/projecthub-cli/pkg/logger"
)

// appContext wires the client stack once per invocation: config, logger,
// session storage, API client, session service, and guard. Commands receive
// it by pointer and never construct dependencies themselves.
type appContext struct {
	cfg     *config.Config
	log     zerolog.Logger
	client  *api.Client
	session *service.SessionService
	guard   *service.Guard

	// location is the CLI's stand-in for the browser's current path; the
	// redirect controller reads it at transition time.
	location string
}

func (a *appContext) init(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})
	a.location = service.LocationDashboard

	repo, err := a.sessionRepository(ctx)
	if err != nil {
		return err
	}

	a.client = api.NewClient(cfg.APIBaseURL, a.log)
	a.session = service.NewSessionService(repo, a.client, a.client, a.log)
	a.guard = service.NewGuard(a.session)

	service.NewRedirectController(a.session, cliNavigator{log: a.log}, func() string {
		return a.location
	}, a.log)

	a.session.Hydrate(ctx)
	return nil
}

func (a *appContext) sessionRepository(ctx context.Context) (ports.SessionRepository, error) {
	switch a.cfg.SessionBackend {
	case "redis":
		client, err := session.Connect(ctx, session.RedisConfig{
			Addr: a.cfg.Redis.Addr,
			DB:   a.cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return session.NewRedisStore(client, "projecthub"), nil
	case "file", "":
		dir := a.cfg.SessionDir
		if dir == "" {
			var err error
			if dir, err = session.DefaultDir(); err != nil {
				return nil, err
			}
		}
		return session.NewFileStore(dir), nil
	}
	return nil, fmt.Errorf("unknown session backend %q", a.cfg.SessionBackend)
}

// requireAuth gates a command on the route guard. The pending state cannot
// occur here because init hydrates before any command runs, but the guard
// contract is honoured all the same.
func (a *appContext) requireAuth() (*domain.Identity, error) {
	decision := a.guard.Evaluate(a.location)
	switch decision.State {
	case service.GuardAuthenticated:
		return a.session.Current(), nil
	case service.GuardPending:
		return nil, fmt.Errorf("session still loading, try again")
	default:
		return nil, fmt.Errorf("not signed in (run 'projecthub login')")
	}
}

// cliNavigator receives navigation commands from the redirect policy. A
// terminal has no pages to move between, so navigation is only observable
// in debug logs.
type cliNavigator struct {
	log zerolog.Logger
}

func (n cliNavigator) NavigateTo(location string) {
	n.log.Debug().Str("to", location).Msg("navigate")
}
