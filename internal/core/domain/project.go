package domain

import "time"

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on_hold"
)

// ValidProjectStatus reports whether s is one of the known project statuses.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

// Project groups tasks and carries the ownership/membership sets that drive
// permission evaluation. Owners and Members are sets of usernames; the
// backend does not enforce uniqueness, so writes must pass through
// DedupeUsernames first.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	Owners      []string      `json:"owners"`
	Members     []string      `json:"members"`
	CreatedAt   time.Time     `json:"created_at,omitzero"`
	UpdatedAt   time.Time     `json:"updated_at,omitzero"`
}

// HasOwner reports whether username is in the project's owner set.
// Safe on a nil project: a resource that has not loaded grants nothing.
func (p *Project) HasOwner(username string) bool {
	if p == nil || username == "" {
		return false
	}
	for _, o := range p.Owners {
		if o == username {
			return true
		}
	}
	return false
}

// HasMember reports whether username is in the project's member set.
func (p *Project) HasMember(username string) bool {
	if p == nil || username == "" {
		return false
	}
	for _, m := range p.Members {
		if m == username {
			return true
		}
	}
	return false
}

// DedupeUsernames returns names with duplicates and empty entries removed,
// preserving first-seen order.
func DedupeUsernames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
