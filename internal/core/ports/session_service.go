package ports

import (
	"context"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
)

// AuthResult is the outcome of a login or register attempt. Expected
// rejections (bad credentials, validation errors) come back as OK=false with
// a message; they are results, not errors. Transport faults are returned as
// errors alongside a zero AuthResult.
type AuthResult struct {
	OK      bool
	Message string
}

// SessionTransition describes an identity change. Previous and Current are
// nil for the logged-out side of the transition.
type SessionTransition struct {
	Previous *domain.Identity
	Current  *domain.Identity
}

// SessionService is the single authority for "who is signed in". The
// (identity, credential) pair is atomic: one is never updated without the
// other.
type SessionService interface {
	// Hydrate restores a persisted session. It never returns an error for a
	// missing or malformed pair; those degrade to the logged-out state with
	// the persisted entries cleared. Loading reports true until the first
	// Hydrate completes.
	Hydrate(ctx context.Context)

	Login(ctx context.Context, username, password string) (AuthResult, error)
	Register(ctx context.Context, email, password, name string) (AuthResult, error)

	// Logout is idempotent: calling it while logged out is a no-op.
	Logout(ctx context.Context) error

	Current() *domain.Identity
	Loading() bool

	// Subscribe registers a callback invoked after every identity
	// transition. Redirect policy lives in subscribers, not in the store.
	Subscribe(fn func(SessionTransition))
}
