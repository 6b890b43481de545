package repository

import (
	"context"

	"github.com/teamtrack/backend/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByHandle(ctx context.Context, handle string) (*domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
	// GetCoordinator resolves the single task-issuing identity, or
	// domain.ErrNoCoordinator when none is registered yet.
	GetCoordinator(ctx context.Context) (*domain.User, error)
}
