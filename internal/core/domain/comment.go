package domain

import "time"

// Comment is a single entry in a task's discussion thread.
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id,omitempty"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}
