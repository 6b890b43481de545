package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/teamtrack/backend/domain"
)

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		deadline    *time.Time
		recurPeriod *string
	)

	if err := row.Scan(
		&task.ID,
		&task.Number,
		&task.AssigneeID,
		&task.AssigneeHandle,
		&task.Text,
		&task.Priority,
		&deadline,
		&task.Comment,
		&task.Status,
		&task.Recurring,
		&recurPeriod,
		&task.MessageRef,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Deadline = deadline
	if recurPeriod != nil {
		task.RecurPeriod = domain.RecurrencePeriod(*recurPeriod)
	}

	return &task, nil
}

func collectTasks(rows pgx.Rows) ([]domain.Task, error) {
	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func deadlineValue(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
