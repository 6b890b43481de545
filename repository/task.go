package repository

import (
	"context"
	"time"

	"github.com/teamtrack/backend/domain"
)

// TaskFilter narrows task listings. Zero values mean no filtering.
type TaskFilter struct {
	AssigneeID int64
	Status     domain.Status
	Limit      int
	Offset     int
}

// TaskUpdate carries the editable fields of a task. Status is deliberately
// absent: edits never move the state machine.
type TaskUpdate struct {
	Text        string
	Priority    domain.Priority
	Deadline    *time.Time
	Comment     string
	Recurring   bool
	RecurPeriod domain.RecurrencePeriod
}

// TaskRepository is the transactional task store. Every mutation and its
// companion history entry commit or roll back together; no partial write is
// observable to readers.
type TaskRepository interface {
	// Create inserts the task with a freshly generated per-day number and
	// the "created" history entry in one transaction. A number collision
	// under concurrent creation surfaces as domain.ErrNumberConflict.
	Create(ctx context.Context, task *domain.Task, actor domain.Actor) (*domain.Task, error)
	GetByNumber(ctx context.Context, number string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	// UpdateStatus moves the task to the new status and appends the
	// attributing history entry. When allowedFrom is non-empty and the
	// stored status is not among them, nothing is written and
	// domain.ErrStatusConflict is returned.
	UpdateStatus(ctx context.Context, number string, to domain.Status, actor domain.Actor, allowedFrom ...domain.Status) (*domain.Task, error)
	// UpdateFields rewrites editable fields and appends an "edited" entry.
	UpdateFields(ctx context.Context, number string, fields TaskUpdate, actor domain.Actor) (*domain.Task, error)
	// AddComment appends a "commented" history entry without touching the task row.
	AddComment(ctx context.Context, number, text string, actor domain.Actor) error
	// Delete removes the task; subtasks and history go with it.
	Delete(ctx context.Context, number string) error
	// ListDeadlineCandidates returns tasks still eligible for deadline
	// handling: status new or in_progress with a deadline set.
	ListDeadlineCandidates(ctx context.Context) ([]domain.Task, error)
	// Statistics aggregates per-assignee outcomes for tasks created within
	// the window.
	Statistics(ctx context.Context, start, end time.Time) ([]domain.AssigneeStats, error)
}

// SubtaskRepository manages checklist items. Toggling leaves no history.
type SubtaskRepository interface {
	Add(ctx context.Context, taskNumber, text string) (*domain.Subtask, error)
	ListByTask(ctx context.Context, taskNumber string) ([]domain.Subtask, error)
	Toggle(ctx context.Context, id int64) (*domain.Subtask, error)
}

// HistoryRepository reads the append-only audit log.
type HistoryRepository interface {
	ListByTask(ctx context.Context, taskNumber string) ([]domain.HistoryEntry, error)
}
