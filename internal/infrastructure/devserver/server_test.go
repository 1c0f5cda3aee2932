package devserver

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
	"github.com/projecthub/projecthub-cli/internal/core/service"
	"github.com/projecthub/projecthub-cli/internal/infrastructure/api"
	"github.com/projecthub/projecthub-cli/internal/infrastructure/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := OpenStore("")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	srv := httptest.NewServer(New(store, "test-secret", zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func registerUser(t *testing.T, client *api.Client, username, password string) {
	t.Helper()
	payload, err := client.Register(context.Background(), username, username+"@example.com", password)
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	client.SetCredential(payload.AccessToken)
}

func TestDevServer_MultipleInstancesInOneProcess(t *testing.T) {
	// Each instance carries its own metrics registry; a second New must not
	// trip duplicate collector registration.
	for i := 0; i < 2; i++ {
		srv := newTestServer(t)

		client := api.NewClient(srv.URL, zerolog.Nop())
		registerUser(t, client, "alice", "pass")
		if _, err := client.ListProjects(context.Background()); err != nil {
			t.Fatalf("instance %d: %v", i+1, err)
		}
	}
}

func TestDevServer_RegisterLoginHydrateRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	client := api.NewClient(srv.URL, zerolog.Nop())
	store := session.NewFileStore(filepath.Join(t.TempDir(), "projecthub"))
	svc := service.NewSessionService(store, client, client, zerolog.Nop())
	svc.Hydrate(ctx)

	result, err := svc.Register(ctx, "alice@example.com", "s3cret", "alice")
	if err != nil {
		t.Fatalf("register fault: %v", err)
	}
	if !result.OK {
		t.Fatalf("register rejected: %+v", result)
	}
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	result, err = svc.Login(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("login fault: %v", err)
	}
	if !result.OK {
		t.Fatalf("login rejected: %+v", result)
	}
	if svc.Current() == nil || svc.Current().Username != "alice" {
		t.Fatalf("unexpected identity: %+v", svc.Current())
	}

	// Fresh client and service over the same storage: the restored session
	// must authenticate real requests.
	client2 := api.NewClient(srv.URL, zerolog.Nop())
	svc2 := service.NewSessionService(store, client2, client2, zerolog.Nop())
	svc2.Hydrate(ctx)

	if svc2.Current() == nil || svc2.Current().Username != "alice" {
		t.Fatalf("hydration did not restore identity: %+v", svc2.Current())
	}
	if _, err := client2.ListProjects(ctx); err != nil {
		t.Fatalf("restored credential rejected: %v", err)
	}
}

func TestDevServer_LoginRejectedWithMessage(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	client := api.NewClient(srv.URL, zerolog.Nop())
	registerUser(t, client, "bob", "goodpass")
	client.ClearCredential()

	_, err := client.Login(ctx, "bob", "badpass")
	var be *domain.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if !be.IsAuthRejection() || be.Message == "" {
		t.Fatalf("unexpected rejection: %+v", be)
	}
}

func TestDevServer_UnauthenticatedRequestsRefused(t *testing.T) {
	srv := newTestServer(t)

	client := api.NewClient(srv.URL, zerolog.Nop())
	_, err := client.ListProjects(context.Background())

	var be *domain.BackendError
	if !errors.As(err, &be) || be.StatusCode != 401 {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestDevServer_ProjectLifecycleAndMembership(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	owner := api.NewClient(srv.URL, zerolog.Nop())
	ownerPayload, err := owner.Register(ctx, "bob", "bob@example.com", "pass1")
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}
	owner.SetCredential(ownerPayload.AccessToken)

	project, err := owner.CreateProject(ctx, "Website", "Marketing site rebuild")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if !project.HasOwner("bob") {
		t.Fatalf("creator must become owner: %+v", project)
	}
	if project.Status != domain.ProjectPlanning {
		t.Fatalf("new project must default to planning, got %s", project.Status)
	}

	project, err = owner.UpdateMembers(ctx, project.ID, []string{"bob"}, []string{"alice", "alice"})
	if err != nil {
		t.Fatalf("update members: %v", err)
	}
	if len(project.Members) != 1 || project.Members[0] != "alice" {
		t.Fatalf("members not deduplicated: %+v", project.Members)
	}

	project.Status = domain.ProjectActive
	project, err = owner.UpdateProject(ctx, project)
	if err != nil {
		t.Fatalf("update project: %v", err)
	}
	if project.Status != domain.ProjectActive {
		t.Fatalf("status not updated: %s", project.Status)
	}

	if err := owner.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if _, err := owner.GetProject(ctx, project.ID); err == nil {
		t.Fatalf("deleted project still readable")
	}
}

func TestDevServer_MembershipAsymmetry(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	owner := api.NewClient(srv.URL, zerolog.Nop())
	ownerPayload, err := owner.Register(ctx, "bob", "bob@example.com", "pass1")
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}
	owner.SetCredential(ownerPayload.AccessToken)

	member := api.NewClient(srv.URL, zerolog.Nop())
	memberPayload, err := member.Register(ctx, "alice", "alice@example.com", "pass2")
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	member.SetCredential(memberPayload.AccessToken)

	project, err := owner.CreateProject(ctx, "Website", "")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if _, err := owner.UpdateMembers(ctx, project.ID, []string{"bob"}, []string{"alice"}); err != nil {
		t.Fatalf("update members: %v", err)
	}

	// A member may create tasks in the project…
	task, err := member.CreateTask(ctx, &domain.Task{
		Title:     "Draft homepage copy",
		ProjectID: project.ID,
		Priority:  domain.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("member create task: %v", err)
	}
	if task.Status != domain.TaskPending {
		t.Fatalf("new task must default to pending, got %s", task.Status)
	}

	// …but may not mutate the project itself.
	project.Name = "Hijacked"
	_, err = member.UpdateProject(ctx, project)
	var be *domain.BackendError
	if !errors.As(err, &be) || be.StatusCode != 403 {
		t.Fatalf("member project edit must be forbidden, got %v", err)
	}

	// Nor edit a task they are not assigned to.
	task.Title = "Changed"
	if _, err := member.UpdateTask(ctx, task); err == nil {
		t.Fatalf("unassigned member task edit must be forbidden")
	}

	// Assigning the task to the member unlocks editing but not deletion.
	task.Assignee = "alice"
	if _, err := owner.UpdateTask(ctx, task); err != nil {
		t.Fatalf("owner assign task: %v", err)
	}
	task.Description = "In progress"
	if _, err := member.UpdateTask(ctx, task); err != nil {
		t.Fatalf("assignee task edit: %v", err)
	}
	if err := member.DeleteTask(ctx, task.ID); err == nil {
		t.Fatalf("assignee task delete must be forbidden")
	}
	if err := owner.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("owner task delete: %v", err)
	}
}

func TestDevServer_CommentsThread(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	client := api.NewClient(srv.URL, zerolog.Nop())
	payload, err := client.Register(ctx, "carol", "carol@example.com", "pass3")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	client.SetCredential(payload.AccessToken)

	project, err := client.CreateProject(ctx, "Ops", "")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	task, err := client.CreateTask(ctx, &domain.Task{Title: "Rotate keys", ProjectID: project.ID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := client.AddComment(ctx, project.ID, task.ID, "done in staging", ""); err != nil {
		t.Fatalf("add comment: %v", err)
	}
	comments, err := client.ListComments(ctx, project.ID, task.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 1 || comments[0].Author != "carol" {
		t.Fatalf("unexpected comments: %+v", comments)
	}

	// Listing under an unknown task is a 404, same as the task endpoints.
	_, err = client.ListComments(ctx, project.ID, "no-such-task")
	var be *domain.BackendError
	if !errors.As(err, &be) || be.StatusCode != 404 {
		t.Fatalf("expected 404 for unknown task, got %v", err)
	}
}
