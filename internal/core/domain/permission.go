package domain

// TaskCapabilities is the derived capability set gating task actions for one
// (identity, project, task) triple. Evaluation is a pure derivation: it never
// mutates its inputs and must be recomputed whenever any of them changes.
type TaskCapabilities struct {
	IsAdmin    bool `json:"is_admin"`
	IsOwner    bool `json:"is_owner"`
	IsMember   bool `json:"is_member"`
	IsAssignee bool `json:"is_assignee"`

	CanCreateTask bool `json:"can_create_task"`
	CanEditTask   bool `json:"can_edit_task"`
	CanDeleteTask bool `json:"can_delete_task"`
}

// ProjectCapabilities gates project mutation. Plain membership deliberately
// grants nothing here: members can create tasks in a project they cannot
// edit. This asymmetry is product behaviour, not an oversight.
type ProjectCapabilities struct {
	IsAdmin bool `json:"is_admin"`
	IsOwner bool `json:"is_owner"`

	CanEditProject   bool `json:"can_edit_project"`
	CanDeleteProject bool `json:"can_delete_project"`
	CanManageMembers bool `json:"can_manage_members"`
}

// EvaluateTaskPermissions derives the task capability set. Any nil input
// yields the most restrictive answer for the flags it feeds; it never panics
// and never grants implicitly on missing data.
func EvaluateTaskPermissions(identity *Identity, project *Project, task *Task) TaskCapabilities {
	if !identity.Valid() {
		return TaskCapabilities{}
	}

	caps := TaskCapabilities{
		IsAdmin:    identity.Role == RoleAdmin,
		IsOwner:    project.HasOwner(identity.Username),
		IsMember:   project.HasMember(identity.Username),
		IsAssignee: task.AssignedTo(identity.Username),
	}

	caps.CanCreateTask = caps.IsAdmin || caps.IsOwner || caps.IsMember
	caps.CanEditTask = caps.IsAdmin || caps.IsOwner || caps.IsAssignee
	caps.CanDeleteTask = caps.IsAdmin || caps.IsOwner
	return caps
}

// EvaluateProjectPermissions derives the project capability set. Only admins
// and owners may mutate a project or its membership.
func EvaluateProjectPermissions(identity *Identity, project *Project) ProjectCapabilities {
	if !identity.Valid() {
		return ProjectCapabilities{}
	}

	caps := ProjectCapabilities{
		IsAdmin: identity.Role == RoleAdmin,
		IsOwner: project.HasOwner(identity.Username),
	}

	allowed := caps.IsAdmin || caps.IsOwner
	caps.CanEditProject = allowed
	caps.CanDeleteProject = allowed
	caps.CanManageMembers = allowed
	return caps
}
