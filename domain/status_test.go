package domain

import "testing"

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"new", "in_progress", "done", "failed", "overdue"} {
		if _, err := ParseStatus(valid); err != nil {
			t.Errorf("ParseStatus(%q) failed: %v", valid, err)
		}
	}

	for _, invalid := range []string{"", "New", "pending", "in progress"} {
		if _, err := ParseStatus(invalid); err == nil {
			t.Errorf("ParseStatus(%q) expected error", invalid)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusNew:        false,
		StatusInProgress: false,
		StatusDone:       true,
		StatusFailed:     true,
		StatusOverdue:    false,
	}
	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusNew, StatusInProgress},
		{StatusInProgress, StatusDone},
		{StatusInProgress, StatusFailed},
		{StatusOverdue, StatusDone},
		{StatusOverdue, StatusFailed},
	}
	for _, tr := range allowed {
		if !CanTransition(tr.from, tr.to) {
			t.Errorf("CanTransition(%s, %s) = false, want true", tr.from, tr.to)
		}
	}

	t.Run("terminal states admit no transitions", func(t *testing.T) {
		for _, from := range []Status{StatusDone, StatusFailed} {
			for _, to := range Statuses {
				if CanTransition(from, to) {
					t.Errorf("CanTransition(%s, %s) = true, want false", from, to)
				}
			}
		}
	})

	denied := []struct{ from, to Status }{
		{StatusNew, StatusDone},
		{StatusNew, StatusFailed},
		{StatusNew, StatusOverdue},
		{StatusInProgress, StatusNew},
		{StatusInProgress, StatusOverdue},
		{StatusOverdue, StatusInProgress},
		{StatusNew, StatusNew},
	}
	for _, tr := range denied {
		if CanTransition(tr.from, tr.to) {
			t.Errorf("CanTransition(%s, %s) = true, want false", tr.from, tr.to)
		}
	}
}

func TestEligibleForOverdue(t *testing.T) {
	eligible := map[Status]bool{
		StatusNew:        true,
		StatusInProgress: true,
		StatusDone:       false,
		StatusFailed:     false,
		StatusOverdue:    false,
	}
	for status, want := range eligible {
		if got := status.EligibleForOverdue(); got != want {
			t.Errorf("%s.EligibleForOverdue() = %v, want %v", status, got, want)
		}
	}
}

func TestParsePriorityAndRole(t *testing.T) {
	if _, err := ParsePriority("high"); err != nil {
		t.Errorf("ParsePriority(high) failed: %v", err)
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Error("ParsePriority(urgent) expected error")
	}
	if _, err := ParseRole("coordinator"); err != nil {
		t.Errorf("ParseRole(coordinator) failed: %v", err)
	}
	if _, err := ParseRole("admin"); err == nil {
		t.Error("ParseRole(admin) expected error")
	}
	if _, err := ParseRecurrencePeriod(""); err != nil {
		t.Error("empty recurrence period should be accepted")
	}
	if _, err := ParseRecurrencePeriod("hourly"); err == nil {
		t.Error("ParseRecurrencePeriod(hourly) expected error")
	}
}
