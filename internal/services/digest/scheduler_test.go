package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/teamtrack/backend/domain"
)

type fakeReporter struct {
	text  string
	empty bool
	err   error
	calls int
}

func (f *fakeReporter) DailyDigest(ctx context.Context, day time.Time) (string, bool, error) {
	f.calls++
	return f.text, f.empty, f.err
}

type fakeCoordinator struct {
	user *domain.User
	err  error
}

func (f *fakeCoordinator) GetCoordinator(ctx context.Context) (*domain.User, error) {
	return f.user, f.err
}

type memFlag struct {
	sent map[string]bool
}

func newMemFlag() *memFlag { return &memFlag{sent: map[string]bool{}} }

func (f *memFlag) SentToday(ctx context.Context, day time.Time) (bool, error) {
	return f.sent[day.Format("2006-01-02")], nil
}

func (f *memFlag) MarkSent(ctx context.Context, day time.Time) error {
	f.sent[day.Format("2006-01-02")] = true
	return nil
}

type fakeGateway struct {
	sent []string
	err  error
}

func (f *fakeGateway) Notify(ctx context.Context, recipientID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func newTestScheduler(t *testing.T, reporter *fakeReporter, flag *memFlag, gw *fakeGateway) *Scheduler {
	t.Helper()
	s, err := NewScheduler(
		reporter,
		&fakeCoordinator{user: &domain.User{ID: 1, Handle: "boss", Role: domain.RoleCoordinator}},
		flag,
		gw,
		nil,
		Config{CheckInterval: time.Minute, SendAt: "18:00"},
	)
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}
	return s
}

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 2, day, hour, minute, 0, 0, time.Local)
}

func TestTick(t *testing.T) {
	ctx := context.Background()

	t.Run("sends exactly once within the same day window", func(t *testing.T) {
		reporter := &fakeReporter{text: "digest body"}
		gw := &fakeGateway{}
		s := newTestScheduler(t, reporter, newMemFlag(), gw)

		// Two wake-ups inside the same send minute.
		for _, clock := range []time.Time{at(20, 18, 0), at(20, 18, 0)} {
			s.now = func() time.Time { return clock }
			if err := s.Tick(ctx); err != nil {
				t.Fatalf("Tick failed: %v", err)
			}
		}

		if len(gw.sent) != 1 {
			t.Fatalf("sent %d digests, want 1", len(gw.sent))
		}
		if gw.sent[0] != "digest body" {
			t.Errorf("sent %q, want the reporter text", gw.sent[0])
		}
	})

	t.Run("flag resets across days", func(t *testing.T) {
		gw := &fakeGateway{}
		s := newTestScheduler(t, &fakeReporter{text: "digest"}, newMemFlag(), gw)

		for _, clock := range []time.Time{at(20, 18, 0), at(21, 18, 0)} {
			s.now = func() time.Time { return clock }
			if err := s.Tick(ctx); err != nil {
				t.Fatal(err)
			}
		}
		if len(gw.sent) != 2 {
			t.Errorf("sent %d digests across two days, want 2", len(gw.sent))
		}
	})

	t.Run("outside the send minute nothing happens", func(t *testing.T) {
		reporter := &fakeReporter{text: "digest"}
		gw := &fakeGateway{}
		s := newTestScheduler(t, reporter, newMemFlag(), gw)

		for _, clock := range []time.Time{at(20, 17, 59), at(20, 18, 1), at(20, 9, 30)} {
			s.now = func() time.Time { return clock }
			if err := s.Tick(ctx); err != nil {
				t.Fatal(err)
			}
		}
		if reporter.calls != 0 || len(gw.sent) != 0 {
			t.Errorf("reporter calls = %d, sent = %d, want zero activity", reporter.calls, len(gw.sent))
		}
	})

	t.Run("empty day still delivers the no-data text", func(t *testing.T) {
		reporter := &fakeReporter{text: "Daily report for 20.02.2026\n\nNo task data for today.", empty: true}
		gw := &fakeGateway{}
		s := newTestScheduler(t, reporter, newMemFlag(), gw)

		s.now = func() time.Time { return at(20, 18, 0) }
		if err := s.Tick(ctx); err != nil {
			t.Fatal(err)
		}
		if len(gw.sent) != 1 {
			t.Fatalf("sent %d, want the explicit no-data message", len(gw.sent))
		}
	})

	t.Run("delivery failure leaves the flag unset for a retry", func(t *testing.T) {
		flag := newMemFlag()
		gw := &fakeGateway{err: errors.New("telegram unreachable")}
		s := newTestScheduler(t, &fakeReporter{text: "digest"}, flag, gw)

		s.now = func() time.Time { return at(20, 18, 0) }
		if err := s.Tick(ctx); err == nil {
			t.Fatal("expected delivery error to propagate")
		}

		// Transport recovers; the next tick in the window succeeds.
		gw.err = nil
		if err := s.Tick(ctx); err != nil {
			t.Fatal(err)
		}
		if len(gw.sent) != 1 {
			t.Errorf("sent = %d, want the retried digest", len(gw.sent))
		}
	})

	t.Run("bad send time is rejected at construction", func(t *testing.T) {
		_, err := NewScheduler(&fakeReporter{}, &fakeCoordinator{}, newMemFlag(), &fakeGateway{}, nil,
			Config{SendAt: "25:99"})
		if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
			t.Errorf("got %v, want an invalid-config error", err)
		}
	})
}
