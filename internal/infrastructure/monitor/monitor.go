// Package monitor polls the tracker's backing services so the health
// endpoint can report per-dependency status.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/teamtrack/backend/internal/infrastructure/journal"
)

// Status captures the last observed state of each dependency.
type Status struct {
	PostgreSQL  bool `json:"postgresql"`
	Redis       bool `json:"redis"`
	Journal     bool `json:"journal"`
	JournalSize int  `json:"journal_size"`
}

// Monitor performs periodic dependency pings off the request path.
type Monitor struct {
	pg      *pgxpool.Pool
	redis   *redislib.Client
	journal *journal.Journal

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

func New(pg *pgxpool.Pool, redis *redislib.Client, j *journal.Journal, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		pg:       pg,
		redis:    redis,
		journal:  j,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

// Healthy reports whether the stores required for mutation are reachable.
func (m *Monitor) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.PostgreSQL && m.status.Redis
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.check()
	for {
		select {
		case <-ticker.C:
			m.check()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) check() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var next Status

	if m.pg != nil {
		next.PostgreSQL = m.pg.Ping(ctx) == nil
	}
	if m.redis != nil {
		next.Redis = m.redis.Ping(ctx).Err() == nil
	}
	if m.journal != nil {
		size, err := m.journal.Size()
		next.Journal = err == nil
		next.JournalSize = size
	}

	m.mu.Lock()
	prev := m.status
	m.status = next
	m.mu.Unlock()

	if prev.PostgreSQL != next.PostgreSQL || prev.Redis != next.Redis {
		m.logger.Warn("dependency status changed",
			zap.Bool("postgresql", next.PostgreSQL),
			zap.Bool("redis", next.Redis))
	}
}
