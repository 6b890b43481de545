// Package deadline implements the periodic scanner that reminds assignees of
// approaching deadlines and auto-transitions passed ones to overdue.
package deadline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/teamtrack/backend/domain"
	"github.com/teamtrack/backend/internal/notify"
)

// TaskSource lists tasks still eligible for deadline handling.
type TaskSource interface {
	ListDeadlineCandidates(ctx context.Context) ([]domain.Task, error)
}

// Engine is the lifecycle entry point for automatic overdue transitions.
type Engine interface {
	MarkOverdue(ctx context.Context, number string) (*domain.Task, error)
}

// CoordinatorSource resolves who receives overdue escalations.
type CoordinatorSource interface {
	GetCoordinator(ctx context.Context) (*domain.User, error)
}

// Config controls the scan cadence and the reminder window.
type Config struct {
	Interval  time.Duration
	Lookahead time.Duration
}

// Monitor wakes on a fixed period and walks every open task with a deadline.
// Reminders within the lookahead window are re-sent on every scan while the
// task stays eligible; there is no dedup.
type Monitor struct {
	tasks       TaskSource
	engine      Engine
	coordinator CoordinatorSource
	gateway     notify.Gateway
	logger      *zap.Logger
	cron        *cron.Cron
	cfg         Config
	now         func() time.Time
}

func NewMonitor(
	tasks TaskSource,
	engine Engine,
	coordinator CoordinatorSource,
	gateway notify.Gateway,
	logger *zap.Logger,
	cfg Config,
) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = 2 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Monitor{
		tasks:       tasks,
		engine:      engine,
		coordinator: coordinator,
		gateway:     gateway,
		logger:      logger,
		cfg:         cfg,
		cron:        cron.New(cron.WithSeconds()),
		now:         time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = m.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := m.Scan(ctx); err != nil {
			m.logger.Error("deadline scan failed", zap.Error(err))
		}
	})

	return m
}

// Start launches the cron scheduler.
func (m *Monitor) Start() {
	if m == nil || m.cron == nil {
		return
	}
	m.cron.Start()
	m.logger.Info("deadline monitor started",
		zap.Duration("interval", m.cfg.Interval),
		zap.Duration("lookahead", m.cfg.Lookahead))
}

// Stop gracefully stops the scheduler, letting an in-flight scan finish.
func (m *Monitor) Stop(ctx context.Context) {
	if m == nil || m.cron == nil {
		return
	}
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	m.logger.Info("deadline monitor stopped")
}

// Scan performs one wake-up pass. Each task's handling is isolated: a store
// or transport failure on one task never aborts the rest.
func (m *Monitor) Scan(ctx context.Context) error {
	candidates, err := m.tasks.ListDeadlineCandidates(ctx)
	if err != nil {
		return err
	}

	now := m.now()
	for i := range candidates {
		task := &candidates[i]
		if err := m.handleTask(ctx, task, now); err != nil {
			m.logger.Error("deadline handling failed",
				zap.String("task_number", task.Number),
				zap.Error(err))
		}
	}
	return nil
}

func (m *Monitor) handleTask(ctx context.Context, task *domain.Task, now time.Time) error {
	switch {
	case task.DeadlineWithin(now, m.cfg.Lookahead):
		return m.remind(ctx, task, now)
	case task.DeadlinePassed(now):
		return m.escalate(ctx, task)
	}
	return nil
}

func (m *Monitor) remind(ctx context.Context, task *domain.Task, now time.Time) error {
	remaining := task.Deadline.Sub(now)
	text := fmt.Sprintf(
		"Reminder: task %s is due in %dh %dm\n\n%s",
		task.Number,
		int(remaining.Hours()),
		int(remaining.Minutes())%60,
		truncate(task.Text, 100),
	)
	if err := m.gateway.Notify(ctx, task.AssigneeID, text); err != nil {
		return err
	}
	m.logger.Info("deadline reminder sent", zap.String("task_number", task.Number))
	return nil
}

func (m *Monitor) escalate(ctx context.Context, task *domain.Task) error {
	if _, err := m.engine.MarkOverdue(ctx, task.Number); err != nil {
		// A task moved by its assignee between read and write no longer
		// meets the guard; that is a normal skip, not a failure.
		if errors.Is(err, domain.ErrStatusConflict) {
			m.logger.Debug("overdue skip, task already transitioned",
				zap.String("task_number", task.Number))
			return nil
		}
		return err
	}

	m.logger.Warn("task overdue", zap.String("task_number", task.Number))

	text := fmt.Sprintf(
		"Task %s is overdue.\nDeadline was: %s\n\n%s",
		task.Number,
		task.FormatDeadline(),
		truncate(task.Text, 100),
	)
	if err := m.gateway.Notify(ctx, task.AssigneeID, text); err != nil {
		m.logger.Error("assignee overdue notification failed",
			zap.String("task_number", task.Number), zap.Error(err))
	}

	coordinator, err := m.coordinator.GetCoordinator(ctx)
	if err != nil {
		m.logger.Warn("coordinator lookup failed", zap.Error(err))
		return nil
	}
	escalation := fmt.Sprintf(
		"Task %s is overdue.\nAssignee: @%s\nDeadline was: %s\n\n%s",
		task.Number,
		task.AssigneeHandle,
		task.FormatDeadline(),
		truncate(task.Text, 100),
	)
	if err := m.gateway.Notify(ctx, coordinator.ID, escalation); err != nil {
		m.logger.Error("coordinator overdue notification failed",
			zap.String("task_number", task.Number), zap.Error(err))
	}
	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
