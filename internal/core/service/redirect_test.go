package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
	"github.com/projecthub/projecthub-cli/internal/core/ports"
)

type recordingNavigator struct {
	visits []string
}

func (n *recordingNavigator) NavigateTo(location string) {
	n.visits = append(n.visits, location)
}

func TestRedirectController_LoginFromLoginScreen(t *testing.T) {
	auth := &stubAuthAPI{
		loginFn: func(_ context.Context, _, _ string) (*ports.AuthPayload, error) {
			return &ports.AuthPayload{
				AccessToken: "tok",
				User:        domain.Identity{ID: "1", Username: "alice", Role: domain.RoleUser},
			}, nil
		},
	}
	svc := newTestSession(&stubSessionRepo{}, &stubCarrier{}, auth)

	nav := &recordingNavigator{}
	NewRedirectController(svc, nav, func() string { return LocationLogin }, zerolog.Nop())

	if _, err := svc.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if len(nav.visits) != 1 || nav.visits[0] != LocationDashboard {
		t.Fatalf("expected redirect to dashboard, got %v", nav.visits)
	}
}

func TestRedirectController_LoginElsewhereDoesNotRedirect(t *testing.T) {
	auth := &stubAuthAPI{
		loginFn: func(_ context.Context, _, _ string) (*ports.AuthPayload, error) {
			return &ports.AuthPayload{
				AccessToken: "tok",
				User:        domain.Identity{ID: "1", Username: "alice", Role: domain.RoleUser},
			}, nil
		},
	}
	svc := newTestSession(&stubSessionRepo{}, &stubCarrier{}, auth)

	nav := &recordingNavigator{}
	NewRedirectController(svc, nav, func() string { return "/projects" }, zerolog.Nop())

	if _, err := svc.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if len(nav.visits) != 0 {
		t.Fatalf("expected no redirect, got %v", nav.visits)
	}
}

func TestRedirectController_LogoutNavigatesToLogin(t *testing.T) {
	auth := &stubAuthAPI{
		loginFn: func(_ context.Context, _, _ string) (*ports.AuthPayload, error) {
			return &ports.AuthPayload{
				AccessToken: "tok",
				User:        domain.Identity{ID: "1", Username: "alice", Role: domain.RoleUser},
			}, nil
		},
	}
	svc := newTestSession(&stubSessionRepo{}, &stubCarrier{}, auth)

	nav := &recordingNavigator{}
	NewRedirectController(svc, nav, func() string { return "/dashboard" }, zerolog.Nop())

	if _, err := svc.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if len(nav.visits) != 1 || nav.visits[0] != LocationLogin {
		t.Fatalf("expected navigation to login, got %v", nav.visits)
	}
}
