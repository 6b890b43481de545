package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamtrack/backend/domain"
	"github.com/teamtrack/backend/repository"
)

const taskColumns = `
	id, task_number, assignee_id, assignee_handle, task_text, priority, deadline,
	comment, status, is_recurring, recurring_period, message_ref, created_by,
	created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool, now: time.Now}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task, actor domain.Actor) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := r.now()

	// The per-day sequence is derived from a count; the unique index on
	// task_number turns a concurrent duplicate into a retryable conflict
	// rather than silent corruption.
	var count int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE task_number LIKE $1 || '%'`,
		domain.TaskNumberDayPrefix(now),
	).Scan(&count); err != nil {
		return nil, err
	}
	task.Number = domain.TaskNumber(now, count+1)
	task.Status = domain.StatusNew

	const insertTask = `
	INSERT INTO tasks (
		task_number, assignee_id, assignee_handle, task_text, priority, deadline,
		comment, status, is_recurring, recurring_period, message_ref, created_by,
		created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
	RETURNING id, created_at, updated_at
	`
	if err := tx.QueryRow(ctx, insertTask,
		task.Number,
		task.AssigneeID,
		task.AssigneeHandle,
		task.Text,
		task.Priority,
		deadlineValue(task.Deadline),
		task.Comment,
		task.Status,
		task.Recurring,
		nullString(string(task.RecurPeriod)),
		task.MessageRef,
		task.CreatedBy,
		now,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrNumberConflict
		}
		return nil, err
	}

	if err := insertHistory(ctx, tx, task.ID, task.Number, actor, domain.ActionCreated, "", now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) GetByNumber(ctx context.Context, number string) (*domain.Task, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE task_number = $1`, number)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = 0 OR assignee_id = $1)
	  AND ($2 = '' OR status = $2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		filter.AssigneeID, string(filter.Status), clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (r *taskRepository) UpdateStatus(ctx context.Context, number string, to domain.Status, actor domain.Actor, allowedFrom ...domain.Status) (*domain.Task, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := r.now()

	from := make([]string, 0, len(allowedFrom))
	for _, s := range allowedFrom {
		from = append(from, string(s))
	}

	const update = `
	UPDATE tasks
	SET status = $2, updated_at = $3
	WHERE task_number = $1
	  AND (cardinality($4::text[]) = 0 OR status = ANY($4::text[]))
	RETURNING ` + taskColumns + `
	`
	task, err := scanTask(tx.QueryRow(ctx, update, number, to, now, from))
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			// Distinguish a missing task from one whose status moved
			// underneath us.
			var exists bool
			if checkErr := tx.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM tasks WHERE task_number = $1)`, number,
			).Scan(&exists); checkErr != nil {
				return nil, checkErr
			}
			if exists {
				return nil, domain.ErrStatusConflict
			}
		}
		return nil, err
	}

	if err := insertHistory(ctx, tx, task.ID, task.Number, actor, domain.ActionStatusChanged(to), "", now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) UpdateFields(ctx context.Context, number string, fields repository.TaskUpdate, actor domain.Actor) (*domain.Task, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := r.now()

	const update = `
	UPDATE tasks
	SET task_text = $2,
		priority = $3,
		deadline = $4,
		comment = $5,
		is_recurring = $6,
		recurring_period = $7,
		updated_at = $8
	WHERE task_number = $1
	RETURNING ` + taskColumns + `
	`
	task, err := scanTask(tx.QueryRow(ctx, update,
		number,
		fields.Text,
		fields.Priority,
		deadlineValue(fields.Deadline),
		fields.Comment,
		fields.Recurring,
		nullString(string(fields.RecurPeriod)),
		now,
	))
	if err != nil {
		return nil, err
	}

	if err := insertHistory(ctx, tx, task.ID, task.Number, actor, domain.ActionEdited, "", now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) AddComment(ctx context.Context, number, text string, actor domain.Actor) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var taskID int64
	if err := tx.QueryRow(ctx,
		`SELECT id FROM tasks WHERE task_number = $1`, number,
	).Scan(&taskID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	if err := insertHistory(ctx, tx, taskID, number, actor, domain.ActionCommented, text, r.now()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *taskRepository) Delete(ctx context.Context, number string) error {
	// History and subtasks follow through ON DELETE CASCADE.
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE task_number = $1`, number)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) ListDeadlineCandidates(ctx context.Context) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE status IN ($1, $2) AND deadline IS NOT NULL
	ORDER BY deadline
	`
	rows, err := r.pool.Query(ctx, query, domain.StatusNew, domain.StatusInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (r *taskRepository) Statistics(ctx context.Context, start, end time.Time) ([]domain.AssigneeStats, error) {
	const query = `
	SELECT
		assignee_id,
		assignee_handle,
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = $3) AS completed,
		COUNT(*) FILTER (WHERE status = $4) AS overdue,
		COUNT(*) FILTER (WHERE status = $5) AS failed,
		COUNT(*) FILTER (WHERE status IN ($6, $7)) AS open
	FROM tasks
	WHERE created_at BETWEEN $1 AND $2
	GROUP BY assignee_id, assignee_handle
	ORDER BY assignee_handle
	`
	rows, err := r.pool.Query(ctx, query, start, end,
		domain.StatusDone, domain.StatusOverdue, domain.StatusFailed,
		domain.StatusNew, domain.StatusInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.AssigneeStats
	for rows.Next() {
		var s domain.AssigneeStats
		if err := rows.Scan(&s.AssigneeID, &s.AssigneeHandle,
			&s.Total, &s.Completed, &s.Overdue, &s.Failed, &s.Open); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// insertHistory appends the audit entry inside the caller's transaction so a
// failed mutation never leaves a dangling record. The actor handle is
// resolved from the users table unless the actor is the system.
func insertHistory(ctx context.Context, tx pgx.Tx, taskID int64, number string, actor domain.Actor, action, comment string, ts time.Time) error {
	handle := actor.Handle
	if !actor.System && handle == "" {
		if err := tx.QueryRow(ctx,
			`SELECT handle FROM users WHERE id = $1`, actor.ID,
		).Scan(&handle); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
	}
	if handle == "" {
		handle = "unknown"
	}

	_, err := tx.Exec(ctx, `
	INSERT INTO task_history (task_id, task_number, actor_id, actor_handle, action, comment, ts)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		taskID, number, actor.ID, handle, action, nullString(comment), ts)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
