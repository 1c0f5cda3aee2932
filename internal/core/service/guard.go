package service

import (
	"github.com/projecthub/projecthub-cli/internal/core/ports"
)

// Well-known locations. The frontend maps these to whatever navigation
// primitive it has; the core only names them.
const (
	LocationLogin     = "/login"
	LocationDashboard = "/dashboard"
)

// GuardState is the route guard's decision for one evaluation.
type GuardState string

const (
	GuardPending         GuardState = "pending"
	GuardAuthenticated   GuardState = "authenticated"
	GuardUnauthenticated GuardState = "unauthenticated"
)

// GuardDecision carries the state plus, on redirect, where to go and where
// the caller originally wanted to be (so a post-login redirect can return
// there, best-effort).
type GuardDecision struct {
	State      GuardState
	RedirectTo string
	From       string
}

// Guard gates access to authenticated-only destinations. It holds no state
// of its own: every decision is derived from the session service at
// evaluation time.
type Guard struct {
	session ports.SessionService
}

func NewGuard(session ports.SessionService) *Guard {
	return &Guard{session: session}
}

// Evaluate decides whether the requested location may be entered.
// While the session is still hydrating the decision is deferred: the caller
// renders a neutral waiting state and must not redirect.
func (g *Guard) Evaluate(requested string) GuardDecision {
	if g.session.Loading() {
		return GuardDecision{State: GuardPending}
	}
	if g.session.Current() == nil {
		return GuardDecision{
			State:      GuardUnauthenticated,
			RedirectTo: LocationLogin,
			From:       requested,
		}
	}
	return GuardDecision{State: GuardAuthenticated}
}
