package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
)

func TestClient_LoginAttachesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Fatalf("login must not carry a credential, got %q", got)
		}
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["username"] != "alice" || req["password"] != "pw" {
			t.Fatalf("unexpected body: %v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-1",
			"user":         map[string]any{"id": "1", "username": "alice", "role": "user"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	payload, err := client.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if payload.AccessToken != "tok-1" || payload.User.Username != "alice" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestClient_BearerHeaderOnAuthenticatedCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-xyz" {
			t.Fatalf("expected bearer header, got %q", got)
		}
		_ = json.NewEncoder(w).Encode([]domain.Project{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	client.SetCredential("tok-xyz")
	if _, err := client.ListProjects(context.Background()); err != nil {
		t.Fatalf("list projects: %v", err)
	}
}

func TestClient_ClearCredentialDropsHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Fatalf("cleared credential must not be sent, got %q", got)
		}
		_ = json.NewEncoder(w).Encode([]domain.Project{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	client.SetCredential("tok-xyz")
	client.ClearCredential()
	if _, err := client.ListProjects(context.Background()); err != nil {
		t.Fatalf("list projects: %v", err)
	}
}

func TestClient_BackendErrorCarriesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect username or password"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	_, err := client.Login(context.Background(), "alice", "bad")

	var be *domain.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if be.StatusCode != http.StatusUnauthorized || be.Message != "Incorrect username or password" {
		t.Fatalf("unexpected error: %+v", be)
	}
	if !be.IsAuthRejection() {
		t.Fatalf("401 must be an auth rejection")
	}
}

func TestClient_BackendErrorEnvelopeVariants(t *testing.T) {
	for _, body := range []string{`{"error":"forbidden"}`, `{"detail":"forbidden"}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(body))
		}))

		client := NewClient(srv.URL, zerolog.Nop())
		_, err := client.GetProject(context.Background(), "p1")
		srv.Close()

		var be *domain.BackendError
		if !errors.As(err, &be) || be.Message != "forbidden" {
			t.Fatalf("body %s: unexpected error %v", body, err)
		}
	}
}

func TestClient_MalformedAuthPayloadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Token present but no usable user object.
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	if _, err := client.Login(context.Background(), "alice", "pw"); !errors.Is(err, domain.ErrMalformedSession) {
		t.Fatalf("expected ErrMalformedSession, got %v", err)
	}
}

func TestClient_UpdateMembersDeduplicates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Owners  []string `json:"owners"`
			Members []string `json:"members"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Owners) != 1 || len(req.Members) != 2 {
			t.Fatalf("expected deduplicated sets, got %+v", req)
		}
		_ = json.NewEncoder(w).Encode(domain.Project{ID: "p1", Owners: req.Owners, Members: req.Members})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	_, err := client.UpdateMembers(context.Background(), "p1",
		[]string{"bob", "bob"}, []string{"alice", "carol", "alice"})
	if err != nil {
		t.Fatalf("update members: %v", err)
	}
}
