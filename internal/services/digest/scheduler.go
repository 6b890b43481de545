// Package digest implements the once-per-day summary sent to the coordinator.
package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/teamtrack/backend/domain"
	"github.com/teamtrack/backend/internal/notify"
)

// Reporter computes the digest text for a calendar day.
type Reporter interface {
	DailyDigest(ctx context.Context, day time.Time) (text string, empty bool, err error)
}

// CoordinatorSource resolves the digest recipient.
type CoordinatorSource interface {
	GetCoordinator(ctx context.Context) (*domain.User, error)
}

// SentFlag tracks whether the digest went out on a given day. The flag
// resets at local midnight.
type SentFlag interface {
	SentToday(ctx context.Context, day time.Time) (bool, error)
	MarkSent(ctx context.Context, day time.Time) error
}

// Config controls the wake-up cadence and the send window.
type Config struct {
	CheckInterval time.Duration
	SendAt        string // local time of day, "15:04"
}

// Scheduler wakes frequently but acts at most once per calendar day, when
// the local clock enters the configured send minute.
type Scheduler struct {
	reporter    Reporter
	coordinator CoordinatorSource
	flag        SentFlag
	gateway     notify.Gateway
	logger      *zap.Logger
	cron        *cron.Cron
	cfg         Config
	sendAt      time.Time
	now         func() time.Time
}

func NewScheduler(
	reporter Reporter,
	coordinator CoordinatorSource,
	flag SentFlag,
	gateway notify.Gateway,
	logger *zap.Logger,
	cfg Config,
) (*Scheduler, error) {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	sendAt, err := time.Parse("15:04", cfg.SendAt)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, fmt.Sprintf("bad digest send time %q", cfg.SendAt), err)
	}

	s := &Scheduler{
		reporter:    reporter,
		coordinator: coordinator,
		flag:        flag,
		gateway:     gateway,
		logger:      logger,
		cfg:         cfg,
		sendAt:      sendAt,
		now:         time.Now,
		cron:        cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.CheckInterval.Seconds()))
	_, _ = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.CheckInterval)
		defer cancel()
		if err := s.Tick(ctx); err != nil {
			s.logger.Error("digest tick failed", zap.Error(err))
		}
	})

	return s, nil
}

// Start launches the cron scheduler.
func (s *Scheduler) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("digest scheduler started", zap.String("send_at", s.cfg.SendAt))
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("digest scheduler stopped")
}

// Tick checks the send window and, at most once per calendar day, delivers
// the digest to the coordinator.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := s.now()
	if now.Hour() != s.sendAt.Hour() || now.Minute() != s.sendAt.Minute() {
		return nil
	}

	sent, err := s.flag.SentToday(ctx, now)
	if err != nil {
		return err
	}
	if sent {
		return nil
	}

	text, empty, err := s.reporter.DailyDigest(ctx, now)
	if err != nil {
		return err
	}

	coordinator, err := s.coordinator.GetCoordinator(ctx)
	if err != nil {
		return err
	}

	if err := s.gateway.Notify(ctx, coordinator.ID, text); err != nil {
		// The flag stays unset so the next tick inside the window retries.
		return err
	}

	if err := s.flag.MarkSent(ctx, now); err != nil {
		return err
	}
	s.logger.Info("daily digest sent", zap.Bool("empty", empty))
	return nil
}
