package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

// DigestFlag tracks whether today's digest has already been sent. The key is
// scoped to the local calendar day and expires at the next local midnight,
// which implements the reset-at-midnight rule without a sweeper.
type DigestFlag struct {
	client *redislib.Client
	prefix string
}

// NewDigestFlag returns a Redis-backed sent-today flag.
func NewDigestFlag(client *redislib.Client) *DigestFlag {
	return &DigestFlag{
		client: client,
		prefix: "tracker:digest:sent:",
	}
}

// SentToday reports whether the flag is set for day.
func (f *DigestFlag) SentToday(ctx context.Context, day time.Time) (bool, error) {
	n, err := f.client.Exists(ctx, f.key(day)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkSent sets the flag for day with expiry at the next local midnight.
func (f *DigestFlag) MarkSent(ctx context.Context, day time.Time) error {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()).AddDate(0, 0, 1)
	ttl := time.Until(midnight)
	if ttl <= 0 {
		ttl = time.Minute
	}
	return f.client.Set(ctx, f.key(day), "1", ttl).Err()
}

func (f *DigestFlag) key(day time.Time) string {
	return fmt.Sprintf("%s%s", f.prefix, day.Format("2006-01-02"))
}
