package task

import (
	"context"
	"time"

	"github.com/teamtrack/backend/domain"
	"github.com/teamtrack/backend/repository"
)

// mockStore implements the store interfaces in memory, mirroring the real
// store's contract: audited mutations append exactly one history entry.
type mockStore struct {
	tasks    map[string]*domain.Task
	subtasks map[string][]domain.Subtask
	history  map[string][]domain.HistoryEntry
	users    map[int64]*domain.User

	nextTaskID    int64
	nextSubtaskID int64
	now           time.Time

	// createConflicts fails that many Create calls with ErrNumberConflict
	// before letting one through.
	createConflicts int
}

func newMockStore() *mockStore {
	return &mockStore{
		tasks:    make(map[string]*domain.Task),
		subtasks: make(map[string][]domain.Subtask),
		history:  make(map[string][]domain.HistoryEntry),
		users:    make(map[int64]*domain.User),
		now:      time.Date(2026, 2, 16, 10, 0, 0, 0, time.UTC),
	}
}

func (m *mockStore) addUser(u domain.User) {
	m.users[u.ID] = &u
}

func (m *mockStore) tick() time.Time {
	m.now = m.now.Add(time.Second)
	return m.now
}

func (m *mockStore) appendHistory(task *domain.Task, actor domain.Actor, action, comment string, ts time.Time) {
	handle := actor.Handle
	if !actor.System && handle == "" {
		if u, ok := m.users[actor.ID]; ok {
			handle = u.Handle
		}
	}
	if handle == "" {
		handle = "unknown"
	}
	m.history[task.Number] = append(m.history[task.Number], domain.HistoryEntry{
		ID:          int64(len(m.history[task.Number]) + 1),
		TaskID:      task.ID,
		TaskNumber:  task.Number,
		ActorID:     actor.ID,
		ActorHandle: handle,
		Action:      action,
		Comment:     comment,
		Timestamp:   ts,
	})
}

func (m *mockStore) Create(ctx context.Context, task *domain.Task, actor domain.Actor) (*domain.Task, error) {
	if m.createConflicts > 0 {
		m.createConflicts--
		return nil, domain.ErrNumberConflict
	}

	ts := m.tick()
	m.nextTaskID++
	task.ID = m.nextTaskID
	task.Number = domain.TaskNumber(ts, len(m.tasks)+1)
	task.Status = domain.StatusNew
	task.CreatedAt = ts
	task.UpdatedAt = ts

	stored := *task
	m.tasks[task.Number] = &stored
	m.appendHistory(task, actor, domain.ActionCreated, "", ts)
	return task, nil
}

func (m *mockStore) GetByNumber(ctx context.Context, number string) (*domain.Task, error) {
	task, ok := m.tasks[number]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (m *mockStore) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range m.tasks {
		if filter.AssigneeID != 0 && task.AssigneeID != filter.AssigneeID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (m *mockStore) UpdateStatus(ctx context.Context, number string, to domain.Status, actor domain.Actor, allowedFrom ...domain.Status) (*domain.Task, error) {
	task, ok := m.tasks[number]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if len(allowedFrom) > 0 {
		matched := false
		for _, from := range allowedFrom {
			if task.Status == from {
				matched = true
				break
			}
		}
		if !matched {
			return nil, domain.ErrStatusConflict
		}
	}

	ts := m.tick()
	task.Status = to
	task.UpdatedAt = ts
	m.appendHistory(task, actor, domain.ActionStatusChanged(to), "", ts)
	copied := *task
	return &copied, nil
}

func (m *mockStore) UpdateFields(ctx context.Context, number string, fields repository.TaskUpdate, actor domain.Actor) (*domain.Task, error) {
	task, ok := m.tasks[number]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	ts := m.tick()
	task.Text = fields.Text
	task.Priority = fields.Priority
	task.Deadline = fields.Deadline
	task.Comment = fields.Comment
	task.Recurring = fields.Recurring
	task.RecurPeriod = fields.RecurPeriod
	task.UpdatedAt = ts
	m.appendHistory(task, actor, domain.ActionEdited, "", ts)
	copied := *task
	return &copied, nil
}

func (m *mockStore) AddComment(ctx context.Context, number, text string, actor domain.Actor) error {
	task, ok := m.tasks[number]
	if !ok {
		return domain.ErrTaskNotFound
	}
	m.appendHistory(task, actor, domain.ActionCommented, text, m.tick())
	return nil
}

func (m *mockStore) Delete(ctx context.Context, number string) error {
	if _, ok := m.tasks[number]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(m.tasks, number)
	delete(m.subtasks, number)
	delete(m.history, number)
	return nil
}

func (m *mockStore) ListDeadlineCandidates(ctx context.Context) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range m.tasks {
		if task.Status.EligibleForOverdue() && task.HasDeadline() {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (m *mockStore) Statistics(ctx context.Context, start, end time.Time) ([]domain.AssigneeStats, error) {
	byAssignee := make(map[int64]*domain.AssigneeStats)
	for _, task := range m.tasks {
		if task.CreatedAt.Before(start) || task.CreatedAt.After(end) {
			continue
		}
		s, ok := byAssignee[task.AssigneeID]
		if !ok {
			s = &domain.AssigneeStats{AssigneeID: task.AssigneeID, AssigneeHandle: task.AssigneeHandle}
			byAssignee[task.AssigneeID] = s
		}
		s.Total++
		switch task.Status {
		case domain.StatusDone:
			s.Completed++
		case domain.StatusOverdue:
			s.Overdue++
		case domain.StatusFailed:
			s.Failed++
		default:
			s.Open++
		}
	}
	var out []domain.AssigneeStats
	for _, s := range byAssignee {
		out = append(out, *s)
	}
	return out, nil
}

// Subtask store.

func (m *mockStore) Add(ctx context.Context, taskNumber, text string) (*domain.Subtask, error) {
	task, ok := m.tasks[taskNumber]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	m.nextSubtaskID++
	sub := domain.Subtask{
		ID:         m.nextSubtaskID,
		TaskID:     task.ID,
		TaskNumber: taskNumber,
		Text:       text,
	}
	m.subtasks[taskNumber] = append(m.subtasks[taskNumber], sub)
	return &sub, nil
}

func (m *mockStore) ListByTask(ctx context.Context, taskNumber string) ([]domain.Subtask, error) {
	return m.subtasks[taskNumber], nil
}

func (m *mockStore) Toggle(ctx context.Context, id int64) (*domain.Subtask, error) {
	for number, subs := range m.subtasks {
		for i := range subs {
			if subs[i].ID == id {
				m.subtasks[number][i].Done = !m.subtasks[number][i].Done
				copied := m.subtasks[number][i]
				return &copied, nil
			}
		}
	}
	return nil, domain.ErrSubtaskNotFound
}

// History store.

type mockHistory struct {
	store *mockStore
}

func (m *mockHistory) ListByTask(ctx context.Context, taskNumber string) ([]domain.HistoryEntry, error) {
	return m.store.history[taskNumber], nil
}

// User store.

type mockUsers struct {
	store *mockStore
}

func (m *mockUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := m.store.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUsers) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	handle = domain.NormalizeHandle(handle)
	for _, u := range m.store.users {
		if u.Handle == handle {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUsers) Upsert(ctx context.Context, user *domain.User) error {
	m.store.users[user.ID] = user
	return nil
}

func (m *mockUsers) GetCoordinator(ctx context.Context) (*domain.User, error) {
	for _, u := range m.store.users {
		if u.Role == domain.RoleCoordinator {
			return u, nil
		}
	}
	return nil, domain.ErrNoCoordinator
}

func newEngine(store *mockStore) *UseCase {
	return New(store, store, &mockHistory{store: store}, &mockUsers{store: store}, nil)
}
