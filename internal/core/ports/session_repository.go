package ports

import "context"

// SessionRepository persists the (credential, identity) pair across process
// restarts. The pair is stored as exactly two entries: the raw token string
// and the JSON-encoded identity. The repository treats the identity bytes as
// opaque; parsing and the decision to discard a malformed pair belong to the
// session service.
//
// Load returns domain.ErrSessionNotFound when either entry is absent.
// Clear is idempotent.
type SessionRepository interface {
	Save(ctx context.Context, token string, identityJSON []byte) error
	Load(ctx context.Context) (token string, identityJSON []byte, err error)
	Clear(ctx context.Context) error
}
