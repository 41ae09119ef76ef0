package models

import "time"

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Task is one entry of the per-user task list blob ("tasks" key).
// IDs are time-based and monotonically increasing within a user.
type Task struct {
	ID        int64      `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	Priority  string     `json:"priority"`
	Deadline  *time.Time `json:"deadline"`
}

// priorityWeight orders high > medium > low for display sorting.
func priorityWeight(p string) int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// TaskLess is the display order: incomplete before complete, then
// priority high→low, then earlier deadline first with deadline-less
// tasks last. Storage order is untouched; callers sort copies.
func TaskLess(a, b Task) bool {
	if a.Completed != b.Completed {
		return !a.Completed
	}
	if pw, qw := priorityWeight(a.Priority), priorityWeight(b.Priority); pw != qw {
		return pw > qw
	}
	switch {
	case a.Deadline != nil && b.Deadline != nil:
		return a.Deadline.Before(*b.Deadline)
	case a.Deadline != nil:
		return true
	case b.Deadline != nil:
		return false
	}
	return false
}
