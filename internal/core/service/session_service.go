package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
	"github.com/projecthub/projecthub-cli/internal/core/ports"
)

const (
	defaultLoginError    = "Login failed"
	defaultRegisterError = "Registration failed"
)

// SessionService owns the (identity, credential) pair. It is the only writer
// of the durable session store and the only component that hands the
// credential to the backend client.
type SessionService struct {
	repo    ports.SessionRepository
	carrier ports.CredentialCarrier
	auth    ports.AuthAPI
	log     zerolog.Logger

	mu       sync.Mutex
	identity *domain.Identity
	loading  bool
	subs     []func(ports.SessionTransition)
}

func NewSessionService(repo ports.SessionRepository, carrier ports.CredentialCarrier, auth ports.AuthAPI, log zerolog.Logger) *SessionService {
	return &SessionService{
		repo:    repo,
		carrier: carrier,
		auth:    auth,
		log:     log,
		loading: true,
	}
}

// Hydrate restores the persisted session. Every failure path degrades to the
// logged-out state with the persisted entries cleared; nothing propagates to
// the caller. Consumers must treat Loading()==true as "decision deferred",
// never as "unauthenticated".
func (s *SessionService) Hydrate(ctx context.Context) {
	defer s.finishLoading()

	token, identityJSON, err := s.repo.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			s.log.Debug().Err(err).Msg("session load failed, treating as logged out")
		}
		// A partial pair also loads as not-found; clear so neither entry
		// (a lone stale token, say) outlives hydration.
		_ = s.repo.Clear(ctx)
		return
	}

	var identity domain.Identity
	// A literal "undefined" sneaks into storage when a frontend serialises a
	// missing user; treat it like any other parse failure.
	if string(identityJSON) == "undefined" || json.Unmarshal(identityJSON, &identity) != nil || !identity.Valid() || token == "" {
		s.log.Debug().Msg("malformed persisted session discarded")
		_ = s.repo.Clear(ctx)
		return
	}

	s.carrier.SetCredential(token)
	s.setIdentity(&identity)
}

// Login authenticates against the backend. On success the pair is stored in
// memory and durably, and the credential is attached to outbound calls,
// before any subscriber observes the transition.
func (s *SessionService) Login(ctx context.Context, username, password string) (ports.AuthResult, error) {
	payload, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return s.rejectOrFault(err, defaultLoginError)
	}
	if err := s.establish(ctx, payload); err != nil {
		return ports.AuthResult{}, err
	}
	return ports.AuthResult{OK: true}, nil
}

// Register creates an account and signs in with the same contract as Login.
// The username is derived from the display name, matching backend behaviour.
func (s *SessionService) Register(ctx context.Context, email, password, name string) (ports.AuthResult, error) {
	payload, err := s.auth.Register(ctx, name, email, password)
	if err != nil {
		return s.rejectOrFault(err, defaultRegisterError)
	}
	if err := s.establish(ctx, payload); err != nil {
		return ports.AuthResult{}, err
	}
	return ports.AuthResult{OK: true}, nil
}

// Logout clears the pair everywhere. Safe to call while already logged out.
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	s.carrier.ClearCredential()
	s.setIdentity(nil)
	return nil
}

func (s *SessionService) Current() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

func (s *SessionService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *SessionService) Subscribe(fn func(ports.SessionTransition)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// establish atomically installs a fresh (identity, credential) pair: durable
// storage first, then the outbound header, then memory.
func (s *SessionService) establish(ctx context.Context, payload *ports.AuthPayload) error {
	if payload == nil || payload.AccessToken == "" || !payload.User.Valid() {
		return domain.ErrMalformedSession
	}

	identityJSON, err := json.Marshal(payload.User)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, payload.AccessToken, identityJSON); err != nil {
		return err
	}

	s.carrier.SetCredential(payload.AccessToken)
	identity := payload.User
	s.setIdentity(&identity)
	return nil
}

// rejectOrFault maps a backend rejection to a result with the backend's own
// message, and lets transport faults propagate.
func (s *SessionService) rejectOrFault(err error, fallback string) (ports.AuthResult, error) {
	var be *domain.BackendError
	if errors.As(err, &be) && be.IsAuthRejection() {
		msg := be.Message
		if msg == "" {
			msg = fallback
		}
		return ports.AuthResult{OK: false, Message: msg}, nil
	}
	return ports.AuthResult{}, err
}

func (s *SessionService) finishLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

func (s *SessionService) setIdentity(identity *domain.Identity) {
	s.mu.Lock()
	previous := s.identity
	s.identity = identity
	subs := make([]func(ports.SessionTransition), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	if previous == identity {
		return
	}
	transition := ports.SessionTransition{Previous: previous, Current: identity}
	for _, fn := range subs {
		fn(transition)
	}
}
