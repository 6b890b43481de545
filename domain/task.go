package domain

import (
	"fmt"
	"time"
)

// DeadlineLayout is the wire format accepted for deadlines.
const DeadlineLayout = "02.01.2006 15:04"

// NoDeadline is the input sentinel for a task without a deadline.
const NoDeadline = "-"

// Task represents a tracked work item assigned to a team member.
type Task struct {
	ID             int64            `json:"id"`
	Number         string           `json:"task_number"`
	AssigneeID     int64            `json:"assignee_id"`
	AssigneeHandle string           `json:"assignee_handle"`
	Text           string           `json:"text"`
	Priority       Priority         `json:"priority"`
	Deadline       *time.Time       `json:"deadline,omitempty"`
	Comment        string           `json:"comment,omitempty"`
	Status         Status           `json:"status"`
	Recurring      bool             `json:"is_recurring,omitempty"`
	RecurPeriod    RecurrencePeriod `json:"recurring_period,omitempty"`
	MessageRef     int64            `json:"message_ref,omitempty"`
	CreatedBy      int64            `json:"created_by"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// HasDeadline reports whether the task carries a real deadline.
func (t *Task) HasDeadline() bool {
	return t != nil && t.Deadline != nil
}

// DeadlinePassed reports whether the task's deadline lies before now.
func (t *Task) DeadlinePassed(now time.Time) bool {
	return t.HasDeadline() && now.After(*t.Deadline)
}

// DeadlineWithin reports whether the deadline falls inside (now, now+window].
func (t *Task) DeadlineWithin(now time.Time, window time.Duration) bool {
	if !t.HasDeadline() {
		return false
	}
	diff := t.Deadline.Sub(now)
	return diff > 0 && diff <= window
}

// FormatDeadline renders the deadline in the wire layout, or the sentinel.
func (t *Task) FormatDeadline() string {
	if !t.HasDeadline() {
		return NoDeadline
	}
	return t.Deadline.Format(DeadlineLayout)
}

// ParseDeadline converts wire-format input into an optional timestamp.
// The sentinel "-" and the empty string mean no deadline.
func ParseDeadline(raw string) (*time.Time, error) {
	if raw == "" || raw == NoDeadline {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(DeadlineLayout, raw, time.Local)
	if err != nil {
		return nil, WrapError(ErrCodeInvalid, fmt.Sprintf("bad deadline format %q, want DD.MM.YYYY HH:MM", raw), err)
	}
	return &parsed, nil
}

// TaskNumber renders the date-prefixed per-day task number.
func TaskNumber(day time.Time, seq int) string {
	return fmt.Sprintf("TASK-%s-%03d", day.Format("2006-01-02"), seq)
}

// TaskNumberDayPrefix returns the shared prefix of all numbers minted on day.
func TaskNumberDayPrefix(day time.Time) string {
	return fmt.Sprintf("TASK-%s-", day.Format("2006-01-02"))
}

// Subtask is a checklist item belonging to a single task. The set of a
// task's subtasks gates the transition into done.
type Subtask struct {
	ID         int64  `json:"id"`
	TaskID     int64  `json:"task_id"`
	TaskNumber string `json:"task_number"`
	Text       string `json:"text"`
	Done       bool   `json:"is_done"`
}

// AllDone reports whether every subtask has its done flag set. Vacuously
// true for an empty list.
func AllDone(subtasks []Subtask) bool {
	for _, s := range subtasks {
		if !s.Done {
			return false
		}
	}
	return true
}
