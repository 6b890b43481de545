package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamtrack/backend/domain"
	"github.com/teamtrack/backend/repository"
)

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository returns a read-only view over the audit log.
func NewHistoryRepository(pool *pgxpool.Pool) repository.HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) ListByTask(ctx context.Context, taskNumber string) ([]domain.HistoryEntry, error) {
	// id breaks ties between entries sharing a timestamp, keeping the
	// insertion order stable.
	const query = `
	SELECT id, task_id, task_number, actor_id, actor_handle, action, COALESCE(comment, ''), ts
	FROM task_history
	WHERE task_number = $1
	ORDER BY ts ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, taskNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.ID, &e.TaskID, &e.TaskNumber,
			&e.ActorID, &e.ActorHandle, &e.Action, &e.Comment, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
