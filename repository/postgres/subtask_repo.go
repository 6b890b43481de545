package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamtrack/backend/domain"
	"github.com/teamtrack/backend/repository"
)

type subtaskRepository struct {
	pool *pgxpool.Pool
}

// NewSubtaskRepository returns a Postgres-backed subtask repository.
func NewSubtaskRepository(pool *pgxpool.Pool) repository.SubtaskRepository {
	return &subtaskRepository{pool: pool}
}

func (r *subtaskRepository) Add(ctx context.Context, taskNumber, text string) (*domain.Subtask, error) {
	const query = `
	INSERT INTO subtasks (task_id, task_number, text, is_done)
	SELECT id, task_number, $2, FALSE FROM tasks WHERE task_number = $1
	RETURNING id, task_id, task_number, text, is_done
	`
	sub, err := scanSubtask(r.pool.QueryRow(ctx, query, taskNumber, text))
	if errors.Is(err, domain.ErrSubtaskNotFound) {
		return nil, domain.ErrTaskNotFound
	}
	return sub, err
}

func (r *subtaskRepository) ListByTask(ctx context.Context, taskNumber string) ([]domain.Subtask, error) {
	const query = `
	SELECT id, task_id, task_number, text, is_done
	FROM subtasks
	WHERE task_number = $1
	ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, taskNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subtasks []domain.Subtask
	for rows.Next() {
		sub, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, *sub)
	}
	return subtasks, rows.Err()
}

func (r *subtaskRepository) Toggle(ctx context.Context, id int64) (*domain.Subtask, error) {
	const query = `
	UPDATE subtasks
	SET is_done = NOT is_done
	WHERE id = $1
	RETURNING id, task_id, task_number, text, is_done
	`
	return scanSubtask(r.pool.QueryRow(ctx, query, id))
}

func scanSubtask(row pgx.Row) (*domain.Subtask, error) {
	var sub domain.Subtask
	if err := row.Scan(&sub.ID, &sub.TaskID, &sub.TaskNumber, &sub.Text, &sub.Done); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubtaskNotFound
		}
		return nil, err
	}
	return &sub, nil
}
