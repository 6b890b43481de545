package task

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/teamtrack/backend/domain"
	"github.com/teamtrack/backend/pkg/logger"
	"github.com/teamtrack/backend/repository"
)

// createRetries bounds the number of fresh sequence attempts after a
// task-number collision under concurrent creation.
const createRetries = 3

// CreateRequest is a validated-on-entry task creation command. The transport
// layer parses whatever surface syntax it speaks into this form.
type CreateRequest struct {
	AssigneeHandle string
	Priority       string
	Text           string
	Deadline       string
	Comment        string
	Recurring      bool
	RecurPeriod    string
	MessageRef     int64
	CreatedBy      int64
}

// EditRequest carries the editable task fields. Status is absent on purpose.
type EditRequest struct {
	Text        string
	Priority    string
	Deadline    string
	Comment     string
	Recurring   bool
	RecurPeriod string
}

// TaskView bundles a task with its subtasks for display.
type TaskView struct {
	Task     domain.Task      `json:"task"`
	Subtasks []domain.Subtask `json:"subtasks,omitempty"`
}

// UseCase is the task lifecycle engine: the only component that transitions
// a task's status. It keeps no task state between calls; every operation
// re-reads from the store.
type UseCase struct {
	tasks    repository.TaskRepository
	subtasks repository.SubtaskRepository
	history  repository.HistoryRepository
	users    repository.UserRepository
	logger   *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	subtasks repository.SubtaskRepository,
	history repository.HistoryRepository,
	users repository.UserRepository,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		subtasks: subtasks,
		history:  history,
		users:    users,
		logger:   logger,
	}
}

// Create validates the request, resolves the assignee and inserts the task
// with its "created" history entry. Number collisions are retried with a
// fresh sequence.
func (uc *UseCase) Create(ctx context.Context, req CreateRequest) (*domain.Task, error) {
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	deadline, err := domain.ParseDeadline(req.Deadline)
	if err != nil {
		return nil, err
	}
	recur, err := domain.ParseRecurrencePeriod(req.RecurPeriod)
	if err != nil {
		return nil, err
	}

	assignee, err := uc.users.GetByHandle(ctx, req.AssigneeHandle)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnknownAssignee
		}
		return nil, err
	}

	actor := domain.Actor{ID: req.CreatedBy}
	if actor.ID == 0 {
		actor = domain.Actor{ID: assignee.ID, Handle: assignee.Handle}
	}

	for attempt := 0; ; attempt++ {
		task := &domain.Task{
			AssigneeID:     assignee.ID,
			AssigneeHandle: assignee.Handle,
			Text:           req.Text,
			Priority:       priority,
			Deadline:       deadline,
			Comment:        req.Comment,
			Recurring:      req.Recurring,
			RecurPeriod:    recur,
			MessageRef:     req.MessageRef,
			CreatedBy:      actor.ID,
		}

		created, err := uc.tasks.Create(ctx, task, actor)
		if err == nil {
			logger.WithRequestID(ctx, uc.logger).Info("task created",
				zap.String("task_number", created.Number),
				zap.String("assignee", created.AssigneeHandle))
			return created, nil
		}
		if !errors.Is(err, domain.ErrNumberConflict) || attempt+1 >= createRetries {
			return nil, err
		}
		uc.logger.Warn("task number collision, retrying", zap.Int("attempt", attempt+1))
	}
}

// ChangeStatus applies an assignee-driven transition, enforcing the guard
// table and the subtask gate on moves into done.
func (uc *UseCase) ChangeStatus(ctx context.Context, number string, to domain.Status, actor domain.Actor) (*domain.Task, error) {
	if !to.Valid() {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "unknown status "+string(to), nil)
	}

	current, err := uc.tasks.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(current.Status, to) {
		return nil, domain.WrapError(domain.ErrCodeGuard,
			"cannot move task from "+string(current.Status)+" to "+string(to),
			domain.ErrInvalidTransition)
	}

	if to == domain.StatusDone {
		subtasks, err := uc.subtasks.ListByTask(ctx, number)
		if err != nil {
			return nil, err
		}
		if !domain.AllDone(subtasks) {
			return nil, domain.ErrSubtasksIncomplete
		}
	}

	// The from-status guard re-checks inside the store transaction; a task
	// moved concurrently since the read surfaces as a conflict.
	updated, err := uc.tasks.UpdateStatus(ctx, number, to, actor, current.Status)
	if err != nil {
		return nil, err
	}

	logger.WithRequestID(ctx, uc.logger).Info("task status changed",
		zap.String("task_number", number),
		zap.String("from", string(current.Status)),
		zap.String("to", string(to)))
	return updated, nil
}

// MarkOverdue is the automatic deadline path. A task already moved out of an
// eligible status yields domain.ErrStatusConflict, which callers treat as a
// silent skip.
func (uc *UseCase) MarkOverdue(ctx context.Context, number string) (*domain.Task, error) {
	return uc.tasks.UpdateStatus(ctx, number, domain.StatusOverdue, domain.SystemActor,
		domain.StatusNew, domain.StatusInProgress)
}

// AddComment records a comment in the history. Status is untouched.
func (uc *UseCase) AddComment(ctx context.Context, number, text string, actor domain.Actor) error {
	if text == "" {
		return domain.WrapError(domain.ErrCodeInvalid, "empty comment", nil)
	}
	return uc.tasks.AddComment(ctx, number, text, actor)
}

// Edit rewrites the task's editable fields and records an "edited" entry.
func (uc *UseCase) Edit(ctx context.Context, number string, req EditRequest, actor domain.Actor) (*domain.Task, error) {
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	deadline, err := domain.ParseDeadline(req.Deadline)
	if err != nil {
		return nil, err
	}
	recur, err := domain.ParseRecurrencePeriod(req.RecurPeriod)
	if err != nil {
		return nil, err
	}

	return uc.tasks.UpdateFields(ctx, number, repository.TaskUpdate{
		Text:        req.Text,
		Priority:    priority,
		Deadline:    deadline,
		Comment:     req.Comment,
		Recurring:   req.Recurring,
		RecurPeriod: recur,
	}, actor)
}

// AddSubtask attaches a checklist item to the task.
func (uc *UseCase) AddSubtask(ctx context.Context, number, text string) (*domain.Subtask, error) {
	if text == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "empty subtask text", nil)
	}
	return uc.subtasks.Add(ctx, number, text)
}

// ToggleSubtask flips a subtask's done flag. No history entry and no task
// transition: the gate is only consulted on an explicit done request.
func (uc *UseCase) ToggleSubtask(ctx context.Context, id int64) (*domain.Subtask, error) {
	return uc.subtasks.Toggle(ctx, id)
}

// Get returns the task with its subtasks.
func (uc *UseCase) Get(ctx context.Context, number string) (*TaskView, error) {
	task, err := uc.tasks.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	subtasks, err := uc.subtasks.ListByTask(ctx, number)
	if err != nil {
		return nil, err
	}
	return &TaskView{Task: *task, Subtasks: subtasks}, nil
}

// ListForUser returns one assignee's tasks with an optional status filter.
func (uc *UseCase) ListForUser(ctx context.Context, assigneeID int64, status domain.Status, limit, offset int) ([]domain.Task, error) {
	if status != "" && !status.Valid() {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "unknown status "+string(status), nil)
	}
	return uc.tasks.List(ctx, repository.TaskFilter{AssigneeID: assigneeID, Status: status, Limit: limit, Offset: offset})
}

// ListAll returns every task with an optional status filter.
func (uc *UseCase) ListAll(ctx context.Context, status domain.Status, limit, offset int) ([]domain.Task, error) {
	if status != "" && !status.Valid() {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "unknown status "+string(status), nil)
	}
	return uc.tasks.List(ctx, repository.TaskFilter{Status: status, Limit: limit, Offset: offset})
}

// History returns the task's audit log in insertion order.
func (uc *UseCase) History(ctx context.Context, number string) ([]domain.HistoryEntry, error) {
	if _, err := uc.tasks.GetByNumber(ctx, number); err != nil {
		return nil, err
	}
	return uc.history.ListByTask(ctx, number)
}

// Delete removes the task, cascading to subtasks and history.
func (uc *UseCase) Delete(ctx context.Context, number string) error {
	if err := uc.tasks.Delete(ctx, number); err != nil {
		return err
	}
	logger.WithRequestID(ctx, uc.logger).Info("task deleted", zap.String("task_number", number))
	return nil
}
