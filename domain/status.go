package domain

import "fmt"

// Status is the closed set of task lifecycle states.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
	StatusOverdue    Status = "overdue"
)

// Statuses lists every valid status value.
var Statuses = []Status{StatusNew, StatusInProgress, StatusDone, StatusFailed, StatusOverdue}

// ParseStatus validates a raw status string at the boundary.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	for _, known := range Statuses {
		if s == known {
			return s, nil
		}
	}
	return "", WrapError(ErrCodeInvalid, fmt.Sprintf("unknown status %q", raw), nil)
}

// Valid reports whether the status is one of the defined values.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Terminal reports whether no human-driven transition leaves the status.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// EligibleForOverdue reports whether the deadline monitor may move a task
// with this status to overdue.
func (s Status) EligibleForOverdue() bool {
	return s == StatusNew || s == StatusInProgress
}

// humanTransitions is the assignee-driven transition table. The subtask gate
// on transitions into done is enforced separately by the lifecycle engine.
var humanTransitions = map[Status][]Status{
	StatusNew:        {StatusInProgress},
	StatusInProgress: {StatusDone, StatusFailed},
	StatusOverdue:    {StatusDone, StatusFailed},
}

// CanTransition reports whether an assignee-driven move from one status to
// another is allowed. Done and failed are terminal.
func CanTransition(from, to Status) bool {
	for _, allowed := range humanTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Priority is the closed set of task priorities.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority validates a raw priority string.
func ParsePriority(raw string) (Priority, error) {
	switch p := Priority(raw); p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p, nil
	}
	return "", WrapError(ErrCodeInvalid, fmt.Sprintf("unknown priority %q", raw), nil)
}

// Role distinguishes task-issuing authority from task-executing identity.
type Role string

const (
	RoleCoordinator Role = "coordinator"
	RoleMember      Role = "member"
)

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleCoordinator, RoleMember:
		return r, nil
	}
	return "", WrapError(ErrCodeInvalid, fmt.Sprintf("unknown role %q", raw), nil)
}

// RecurrencePeriod is the closed set of recurrence intervals.
type RecurrencePeriod string

const (
	RecurDaily   RecurrencePeriod = "daily"
	RecurWeekly  RecurrencePeriod = "weekly"
	RecurMonthly RecurrencePeriod = "monthly"
)

// ParseRecurrencePeriod validates a raw recurrence period. Empty means none.
func ParseRecurrencePeriod(raw string) (RecurrencePeriod, error) {
	switch p := RecurrencePeriod(raw); p {
	case "", RecurDaily, RecurWeekly, RecurMonthly:
		return p, nil
	}
	return "", WrapError(ErrCodeInvalid, fmt.Sprintf("unknown recurrence period %q", raw), nil)
}
