package redis

import (
	"context"
	"encoding/json"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/teamtrack/backend/domain"
	"github.com/teamtrack/backend/repository"
)

const coordinatorKey = "tracker:coordinator"

// cachedUserRepository decorates a user repository with a Redis-backed
// coordinator cache, invalidated on every upsert. Lookups always fall back
// to the inner store when the cache misses or misbehaves.
type cachedUserRepository struct {
	inner  repository.UserRepository
	client *redislib.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedUserRepository wraps inner with coordinator-lookup caching.
func NewCachedUserRepository(inner repository.UserRepository, client *redislib.Client, ttl time.Duration, logger *zap.Logger) repository.UserRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedUserRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *cachedUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *cachedUserRepository) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	return r.inner.GetByHandle(ctx, handle)
}

func (r *cachedUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	if err := r.inner.Upsert(ctx, user); err != nil {
		return err
	}
	// Any user write may change who the coordinator is.
	if err := r.client.Del(ctx, coordinatorKey).Err(); err != nil {
		r.logger.Warn("failed to invalidate coordinator cache", zap.Error(err))
	}
	return nil
}

func (r *cachedUserRepository) GetCoordinator(ctx context.Context) (*domain.User, error) {
	if raw, err := r.client.Get(ctx, coordinatorKey).Result(); err == nil {
		var user domain.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			return &user, nil
		}
	} else if err != redislib.Nil {
		r.logger.Warn("coordinator cache read failed", zap.Error(err))
	}

	user, err := r.inner.GetCoordinator(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		if err := r.client.Set(ctx, coordinatorKey, payload, r.ttl).Err(); err != nil {
			r.logger.Warn("coordinator cache write failed", zap.Error(err))
		}
	}
	return user, nil
}
