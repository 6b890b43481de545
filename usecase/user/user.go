package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/teamtrack/backend/domain"
	"github.com/teamtrack/backend/pkg/logger"
	"github.com/teamtrack/backend/repository"
)

// UseCase registers and looks up tracker identities. Roles come from the
// caller; the core applies no authorization policy of its own.
type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{users: users, logger: logger}
}

// Register creates the user on first contact or refreshes the display
// fields. The stored role never changes after creation.
func (uc *UseCase) Register(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u == nil || u.ID == 0 {
		return nil, domain.ErrInvalidPayload
	}
	if _, err := domain.ParseRole(string(u.Role)); err != nil {
		return nil, err
	}
	if err := uc.users.Upsert(ctx, u); err != nil {
		return nil, err
	}
	logger.WithRequestID(ctx, uc.logger).Info("user registered",
		zap.Int64("user_id", u.ID),
		zap.String("handle", u.Handle),
		zap.String("role", string(u.Role)))
	return u, nil
}

// Get returns a user by id.
func (uc *UseCase) Get(ctx context.Context, id int64) (*domain.User, error) {
	return uc.users.GetByID(ctx, id)
}

// GetByHandle returns a user by display handle, @ optional.
func (uc *UseCase) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	return uc.users.GetByHandle(ctx, handle)
}

// Coordinator resolves the task-issuing identity.
func (uc *UseCase) Coordinator(ctx context.Context) (*domain.User, error) {
	return uc.users.GetCoordinator(ctx)
}
