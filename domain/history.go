package domain

import (
	"fmt"
	"time"
)

// History action labels. Status changes embed the target status.
const (
	ActionCreated   = "created"
	ActionCommented = "commented"
	ActionEdited    = "edited"
)

// ActionStatusChanged renders the action label for a status transition.
func ActionStatusChanged(to Status) string {
	return fmt.Sprintf("status changed to %s", to)
}

// HistoryEntry is one append-only audit record for a task. Entries are never
// updated or deleted individually; ordering is timestamp ascending with
// insertion order breaking ties.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"task_id"`
	TaskNumber  string    `json:"task_number"`
	ActorID     int64     `json:"actor_id"`
	ActorHandle string    `json:"actor_handle"`
	Action      string    `json:"action"`
	Comment     string    `json:"comment,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// AssigneeStats aggregates task outcomes for one assignee over a window.
type AssigneeStats struct {
	AssigneeID     int64  `json:"assignee_id"`
	AssigneeHandle string `json:"assignee_handle"`
	Total          int    `json:"total"`
	Completed      int    `json:"completed"`
	Overdue        int    `json:"overdue"`
	Failed         int    `json:"failed"`
	Open           int    `json:"open"`
}
