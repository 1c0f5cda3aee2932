package domain

import "testing"

func TestEvaluateTaskPermissions_AdminShortCircuit(t *testing.T) {
	admin := &Identity{Username: "root", Role: RoleAdmin}
	project := &Project{Owners: []string{"bob"}, Members: []string{"carol"}}
	task := &Task{Assignee: "carol"}

	caps := EvaluateTaskPermissions(admin, project, task)
	if !caps.IsAdmin {
		t.Fatalf("expected IsAdmin")
	}
	if !caps.CanCreateTask || !caps.CanEditTask || !caps.CanDeleteTask {
		t.Fatalf("admin must hold all task capabilities: %+v", caps)
	}
	if caps.IsOwner || caps.IsMember || caps.IsAssignee {
		t.Fatalf("admin with no project ties should have raw flags false: %+v", caps)
	}
}

func TestEvaluateTaskPermissions_StrangerGetsNothing(t *testing.T) {
	stranger := &Identity{Username: "mallory", Role: RoleUser}
	project := &Project{Owners: []string{"bob"}, Members: []string{"alice"}}
	task := &Task{Assignee: "carol"}

	caps := EvaluateTaskPermissions(stranger, project, task)
	if caps != (TaskCapabilities{}) {
		t.Fatalf("expected all-false capabilities, got %+v", caps)
	}
}

func TestEvaluateTaskPermissions_MemberScenario(t *testing.T) {
	alice := &Identity{Username: "alice", Role: RoleUser}
	project := &Project{Owners: []string{"bob"}, Members: []string{"alice"}}
	task := &Task{Assignee: "carol"}

	caps := EvaluateTaskPermissions(alice, project, task)
	if !caps.IsMember || caps.IsOwner || caps.IsAssignee {
		t.Fatalf("unexpected raw flags: %+v", caps)
	}
	if !caps.CanCreateTask {
		t.Fatalf("member must be able to create tasks")
	}
	if caps.CanEditTask || caps.CanDeleteTask {
		t.Fatalf("member without assignment must not edit or delete: %+v", caps)
	}
}

func TestEvaluateTaskPermissions_CreateTruthTable(t *testing.T) {
	// canCreateTask == isAdmin || isOwner || isMember, over every combination.
	for _, admin := range []bool{false, true} {
		for _, owner := range []bool{false, true} {
			for _, member := range []bool{false, true} {
				identity := &Identity{Username: "u", Role: RoleUser}
				if admin {
					identity.Role = RoleAdmin
				}
				project := &Project{}
				if owner {
					project.Owners = []string{"u"}
				}
				if member {
					project.Members = []string{"u"}
				}

				caps := EvaluateTaskPermissions(identity, project, nil)
				want := admin || owner || member
				if caps.CanCreateTask != want {
					t.Fatalf("admin=%v owner=%v member=%v: CanCreateTask=%v, want %v",
						admin, owner, member, caps.CanCreateTask, want)
				}
			}
		}
	}
}

func TestEvaluateTaskPermissions_AssigneeCanEditNotDelete(t *testing.T) {
	carol := &Identity{Username: "carol", Role: RoleUser}
	project := &Project{Owners: []string{"bob"}}
	task := &Task{Assignee: "carol"}

	caps := EvaluateTaskPermissions(carol, project, task)
	if !caps.IsAssignee || !caps.CanEditTask {
		t.Fatalf("assignee must be able to edit: %+v", caps)
	}
	if caps.CanDeleteTask || caps.CanCreateTask {
		t.Fatalf("assignee alone must not create or delete: %+v", caps)
	}
}

func TestEvaluateTaskPermissions_NilInputs(t *testing.T) {
	if caps := EvaluateTaskPermissions(nil, nil, nil); caps != (TaskCapabilities{}) {
		t.Fatalf("nil identity must yield all-false, got %+v", caps)
	}

	alice := &Identity{Username: "alice", Role: RoleUser}
	if caps := EvaluateTaskPermissions(alice, nil, nil); caps != (TaskCapabilities{}) {
		t.Fatalf("unloaded resources must grant nothing, got %+v", caps)
	}

	admin := &Identity{Username: "root", Role: RoleAdmin}
	caps := EvaluateTaskPermissions(admin, nil, nil)
	if !caps.CanCreateTask || !caps.CanEditTask || !caps.CanDeleteTask {
		t.Fatalf("admin capabilities must not depend on loaded resources: %+v", caps)
	}
}

func TestEvaluateProjectPermissions_MembershipGrantsNothing(t *testing.T) {
	alice := &Identity{Username: "alice", Role: RoleUser}
	project := &Project{Owners: []string{"bob"}, Members: []string{"alice"}}

	caps := EvaluateProjectPermissions(alice, project)
	if caps.CanEditProject || caps.CanDeleteProject || caps.CanManageMembers {
		t.Fatalf("plain member must not mutate the project: %+v", caps)
	}

	taskCaps := EvaluateTaskPermissions(alice, project, nil)
	if !taskCaps.CanCreateTask {
		t.Fatalf("the same member must still be able to create tasks")
	}
}

func TestEvaluateProjectPermissions_OwnerAndAdmin(t *testing.T) {
	project := &Project{Owners: []string{"bob"}}

	bob := &Identity{Username: "bob", Role: RoleUser}
	caps := EvaluateProjectPermissions(bob, project)
	if !caps.IsOwner || !caps.CanEditProject || !caps.CanDeleteProject || !caps.CanManageMembers {
		t.Fatalf("owner must hold all project capabilities: %+v", caps)
	}

	admin := &Identity{Username: "root", Role: RoleAdmin}
	caps = EvaluateProjectPermissions(admin, project)
	if !caps.CanEditProject || !caps.CanDeleteProject || !caps.CanManageMembers {
		t.Fatalf("admin must hold all project capabilities: %+v", caps)
	}
}

func TestDedupeUsernames(t *testing.T) {
	got := DedupeUsernames([]string{"alice", "bob", "alice", "", "carol", "bob"})
	want := []string{"alice", "bob", "carol"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
