package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamtrack/backend/domain"
	"github.com/teamtrack/backend/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, handle, full_name, role FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *userRepository) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, handle, full_name, role FROM users WHERE handle = $1`,
		domain.NormalizeHandle(handle))
	return scanUser(row)
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	user.Handle = domain.NormalizeHandle(user.Handle)

	// Role is fixed at creation: the conflict branch refreshes the display
	// fields only.
	const query = `
	INSERT INTO users (id, handle, full_name, role)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE
	SET handle = EXCLUDED.handle,
		full_name = EXCLUDED.full_name
	RETURNING role
	`
	return r.pool.QueryRow(ctx, query,
		user.ID, user.Handle, user.FullName, user.Role,
	).Scan(&user.Role)
}

func (r *userRepository) GetCoordinator(ctx context.Context) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, handle, full_name, role FROM users WHERE role = $1 LIMIT 1`,
		domain.RoleCoordinator)
	user, err := scanUser(row)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrNoCoordinator
	}
	return user, err
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(&user.ID, &user.Handle, &user.FullName, &user.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
