package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
	"github.com/projecthub/projecthub-cli/internal/core/service"
)

func TestFileStore_SaveLoadClear(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "projecthub"))
	ctx := context.Background()

	if _, _, err := store.Load(ctx); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on empty store, got %v", err)
	}

	if err := store.Save(ctx, "tok-1", []byte(`{"username":"alice"}`)); err != nil {
		t.Fatalf("save: %v", err)
	}

	token, identityJSON, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if token != "tok-1" || string(identityJSON) != `{"username":"alice"}` {
		t.Fatalf("unexpected pair: %q %q", token, identityJSON)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, _, err := store.Load(ctx); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after clear, got %v", err)
	}

	// Clearing again must be a no-op.
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestFileStore_PartialPairIsNotASession(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "projecthub")
	store := NewFileStore(dir)
	ctx := context.Background()

	if err := store.Save(ctx, "tok-1", []byte(`{"username":"alice"}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, "user.json")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, _, err := store.Load(ctx); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("half a pair must read as no session, got %v", err)
	}
}

func TestFileStore_HydrateRemovesOrphanedTokenFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "projecthub")
	store := NewFileStore(dir)
	ctx := context.Background()

	if err := store.Save(ctx, "tok-stale", []byte(`{"username":"alice"}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, "user.json")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	svc := service.NewSessionService(store, &noopCarrier{}, nil, zerolog.Nop())
	svc.Hydrate(ctx)

	if svc.Current() != nil {
		t.Fatalf("expected logged out, got %+v", svc.Current())
	}
	if _, err := os.Stat(filepath.Join(dir, "token")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stale token file must not survive hydration, stat err: %v", err)
	}
}

type noopCarrier struct{}

func (noopCarrier) SetCredential(string) {}
func (noopCarrier) ClearCredential()     {}

func TestFileStore_TokenFilePermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "projecthub")
	store := NewFileStore(dir)

	if err := store.Save(context.Background(), "tok-1", []byte(`{}`)); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "token"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("token file must be 0600, got %o", perm)
	}
}
