package domain

import (
	"testing"
	"time"
)

func TestParseDeadline(t *testing.T) {
	t.Run("sentinel and empty mean no deadline", func(t *testing.T) {
		for _, raw := range []string{"-", ""} {
			got, err := ParseDeadline(raw)
			if err != nil {
				t.Fatalf("ParseDeadline(%q) failed: %v", raw, err)
			}
			if got != nil {
				t.Errorf("ParseDeadline(%q) = %v, want nil", raw, got)
			}
		}
	})

	t.Run("valid wire format", func(t *testing.T) {
		got, err := ParseDeadline("20.02.2026 15:00")
		if err != nil {
			t.Fatalf("ParseDeadline failed: %v", err)
		}
		want := time.Date(2026, 2, 20, 15, 0, 0, 0, time.Local)
		if !got.Equal(want) {
			t.Errorf("ParseDeadline = %v, want %v", got, want)
		}
	})

	t.Run("malformed input is a validation error", func(t *testing.T) {
		for _, raw := range []string{"2026-02-20 15:00", "20.02.2026", "tomorrow"} {
			if _, err := ParseDeadline(raw); !IsDomainError(err, ErrCodeInvalid) {
				t.Errorf("ParseDeadline(%q) error = %v, want INVALID", raw, err)
			}
		}
	})
}

func TestTaskNumber(t *testing.T) {
	day := time.Date(2026, 2, 16, 10, 30, 0, 0, time.UTC)

	if got, want := TaskNumber(day, 1), "TASK-2026-02-16-001"; got != want {
		t.Errorf("TaskNumber = %q, want %q", got, want)
	}
	if got, want := TaskNumber(day, 42), "TASK-2026-02-16-042"; got != want {
		t.Errorf("TaskNumber = %q, want %q", got, want)
	}
	if got, want := TaskNumberDayPrefix(day), "TASK-2026-02-16-"; got != want {
		t.Errorf("TaskNumberDayPrefix = %q, want %q", got, want)
	}
}

func TestDeadlinePredicates(t *testing.T) {
	now := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

	at := func(d time.Duration) *Task {
		deadline := now.Add(d)
		return &Task{Deadline: &deadline}
	}

	t.Run("within lookahead window", func(t *testing.T) {
		if !at(time.Hour).DeadlineWithin(now, 2*time.Hour) {
			t.Error("deadline 1h ahead should be within a 2h window")
		}
		if at(3 * time.Hour).DeadlineWithin(now, 2*time.Hour) {
			t.Error("deadline 3h ahead should not be within a 2h window")
		}
		if at(-time.Minute).DeadlineWithin(now, 2*time.Hour) {
			t.Error("a passed deadline is not within the window")
		}
	})

	t.Run("passed", func(t *testing.T) {
		if !at(-time.Minute).DeadlinePassed(now) {
			t.Error("deadline 1m ago should be passed")
		}
		if at(time.Minute).DeadlinePassed(now) {
			t.Error("deadline 1m ahead should not be passed")
		}
	})

	t.Run("no deadline", func(t *testing.T) {
		task := &Task{}
		if task.HasDeadline() || task.DeadlinePassed(now) || task.DeadlineWithin(now, time.Hour) {
			t.Error("task without deadline should fail every predicate")
		}
		if got := task.FormatDeadline(); got != NoDeadline {
			t.Errorf("FormatDeadline = %q, want %q", got, NoDeadline)
		}
	})
}

func TestAllDone(t *testing.T) {
	if !AllDone(nil) {
		t.Error("AllDone(nil) = false, want vacuous true")
	}
	if !AllDone([]Subtask{{Done: true}, {Done: true}}) {
		t.Error("AllDone with all complete = false, want true")
	}
	if AllDone([]Subtask{{Done: true}, {Done: false}}) {
		t.Error("AllDone with one incomplete = true, want false")
	}
}

func TestNormalizeHandle(t *testing.T) {
	for raw, want := range map[string]string{
		"@alice":  "alice",
		"alice":   "alice",
		" @bob ":  "bob",
		"@":       "",
	} {
		if got := NormalizeHandle(raw); got != want {
			t.Errorf("NormalizeHandle(%q) = %q, want %q", raw, got, want)
		}
	}
}
