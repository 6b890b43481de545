package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teamtrack/backend/domain"
	"github.com/teamtrack/backend/repository"
)

// Period selects a reporting window anchored at a reference time.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// UseCase aggregates task outcomes per assignee over a time window and
// renders digest text for the coordinator.
type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{tasks: tasks, logger: logger}
}

// Statistics returns per-assignee aggregates for tasks created in [start, end].
func (uc *UseCase) Statistics(ctx context.Context, start, end time.Time) ([]domain.AssigneeStats, error) {
	if end.Before(start) {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "end before start", nil)
	}
	return uc.tasks.Statistics(ctx, start, end)
}

// PeriodWindow resolves a named period to its [start, end] bounds around ref.
func PeriodWindow(period Period, ref time.Time) (time.Time, time.Time, error) {
	dayStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	switch period {
	case PeriodDay, "":
		return dayStart, dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	case PeriodWeek:
		// Weeks start on Monday.
		offset := (int(ref.Weekday()) + 6) % 7
		start := dayStart.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7).Add(-time.Nanosecond), nil
	case PeriodMonth:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond), nil
	}
	return time.Time{}, time.Time{}, domain.WrapError(domain.ErrCodeInvalid, fmt.Sprintf("unknown period %q", period), nil)
}

// DailyDigest computes the current day's statistics and renders the digest
// text. The empty flag distinguishes a "no data" digest from a populated one.
func (uc *UseCase) DailyDigest(ctx context.Context, day time.Time) (text string, empty bool, err error) {
	start, end, err := PeriodWindow(PeriodDay, day)
	if err != nil {
		return "", false, err
	}
	stats, err := uc.tasks.Statistics(ctx, start, end)
	if err != nil {
		return "", false, err
	}
	if len(stats) == 0 {
		// An explicit no-data digest keeps a missing report distinguishable
		// from an outage.
		return fmt.Sprintf("Daily report for %s\n\nNo task data for today.", day.Format("02.01.2006")), true, nil
	}
	return formatDigest(stats, day), false, nil
}

func formatDigest(stats []domain.AssigneeStats, day time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily report for %s\n", day.Format("02.01.2006"))
	for _, s := range stats {
		fmt.Fprintf(&b, "\n@%s\n", s.AssigneeHandle)
		fmt.Fprintf(&b, "  total: %d\n", s.Total)
		fmt.Fprintf(&b, "  completed: %d\n", s.Completed)
		fmt.Fprintf(&b, "  overdue: %d\n", s.Overdue)
		fmt.Fprintf(&b, "  failed: %d\n", s.Failed)
		fmt.Fprintf(&b, "  open: %d\n", s.Open)
	}
	return b.String()
}
