package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/teamtrack/backend/domain"
	"github.com/teamtrack/backend/repository"
)

// statsStub implements only the Statistics slice of the task repository;
// everything else panics if touched.
type statsStub struct {
	repository.TaskRepository
	stats []domain.AssigneeStats
	err   error

	gotStart, gotEnd time.Time
}

func (s *statsStub) Statistics(ctx context.Context, start, end time.Time) ([]domain.AssigneeStats, error) {
	s.gotStart, s.gotEnd = start, end
	return s.stats, s.err
}

func TestPeriodWindow(t *testing.T) {
	// Friday.
	ref := time.Date(2026, 2, 20, 14, 30, 0, 0, time.UTC)

	t.Run("day spans midnight to midnight", func(t *testing.T) {
		start, end, err := PeriodWindow(PeriodDay, ref)
		if err != nil {
			t.Fatal(err)
		}
		wantStart := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
		if !start.Equal(wantStart) {
			t.Errorf("start = %v, want %v", start, wantStart)
		}
		if end.Day() != 20 || end.Hour() != 23 || end.Minute() != 59 {
			t.Errorf("end = %v, want the last instant of the day", end)
		}
	})

	t.Run("empty period defaults to day", func(t *testing.T) {
		start, _, err := PeriodWindow("", ref)
		if err != nil {
			t.Fatal(err)
		}
		if start.Day() != 20 {
			t.Errorf("start = %v, want the same day", start)
		}
	})

	t.Run("week starts on Monday", func(t *testing.T) {
		start, end, err := PeriodWindow(PeriodWeek, ref)
		if err != nil {
			t.Fatal(err)
		}
		if start.Weekday() != time.Monday || start.Day() != 16 {
			t.Errorf("start = %v, want Monday the 16th", start)
		}
		if end.Before(ref) {
			t.Errorf("end = %v precedes the reference time", end)
		}
	})

	t.Run("week anchored on a Monday starts that Monday", func(t *testing.T) {
		monday := time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC)
		start, _, err := PeriodWindow(PeriodWeek, monday)
		if err != nil {
			t.Fatal(err)
		}
		if start.Day() != 16 {
			t.Errorf("start = %v, want the anchor Monday itself", start)
		}
	})

	t.Run("month spans the calendar month", func(t *testing.T) {
		start, end, err := PeriodWindow(PeriodMonth, ref)
		if err != nil {
			t.Fatal(err)
		}
		if start.Day() != 1 || start.Month() != time.February {
			t.Errorf("start = %v, want February 1st", start)
		}
		if end.Month() != time.February || end.Day() != 28 {
			t.Errorf("end = %v, want the last instant of February", end)
		}
	})

	t.Run("unknown period is rejected", func(t *testing.T) {
		_, _, err := PeriodWindow("quarter", ref)
		if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
			t.Errorf("got %v, want an invalid-period error", err)
		}
	})
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()

	t.Run("inverted range is rejected before hitting the store", func(t *testing.T) {
		stub := &statsStub{}
		uc := New(stub, nil)
		end := time.Now()
		_, err := uc.Statistics(ctx, end.Add(time.Hour), end)
		if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
			t.Errorf("got %v, want an invalid-range error", err)
		}
	})
}

func TestDailyDigest(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 2, 20, 18, 0, 0, 0, time.UTC)

	t.Run("no data yields the explicit empty digest", func(t *testing.T) {
		stub := &statsStub{}
		text, empty, err := New(stub, nil).DailyDigest(ctx, day)
		if err != nil {
			t.Fatal(err)
		}
		if !empty {
			t.Error("empty flag not set for a day with no data")
		}
		want := "Daily report for 20.02.2026\n\nNo task data for today."
		if text != want {
			t.Errorf("text = %q, want %q", text, want)
		}
	})

	t.Run("populated digest lists every assignee", func(t *testing.T) {
		stub := &statsStub{stats: []domain.AssigneeStats{
			{AssigneeHandle: "alice", Total: 4, Completed: 2, Overdue: 1, Failed: 0, Open: 1},
			{AssigneeHandle: "bob", Total: 1, Completed: 1},
		}}
		text, empty, err := New(stub, nil).DailyDigest(ctx, day)
		if err != nil {
			t.Fatal(err)
		}
		if empty {
			t.Error("empty flag set despite data")
		}
		for _, want := range []string{"@alice", "@bob", "total: 4", "completed: 2", "overdue: 1"} {
			if !strings.Contains(text, want) {
				t.Errorf("digest missing %q:\n%s", want, text)
			}
		}
	})

	t.Run("digest queries the day window", func(t *testing.T) {
		stub := &statsStub{}
		if _, _, err := New(stub, nil).DailyDigest(ctx, day); err != nil {
			t.Fatal(err)
		}
		if stub.gotStart.Day() != 20 || stub.gotEnd.Day() != 20 {
			t.Errorf("queried [%v, %v], want bounds inside the day", stub.gotStart, stub.gotEnd)
		}
	})

	t.Run("store failure propagates", func(t *testing.T) {
		stub := &statsStub{err: errors.New("connection refused")}
		if _, _, err := New(stub, nil).DailyDigest(ctx, day); err == nil {
			t.Error("expected the store error to surface")
		}
	})
}
