// Package sprint contains the pure backlog and sprint-planning rules.
// This is part of the Functional Core - no I/O, only pure functions over a
// graph snapshot.
package sprint

import (
	"fmt"
	"time"
)

// Status of a sprint record.
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Sprint is an ordered batch of tasks with one checkmark per task.
type Sprint struct {
	ID        string
	Goal      string
	Status    Status
	Tasks     []string // execution order
	Checked   map[string]bool
	CreatedAt time.Time
	ClosedAt  time.Time
}

// FormatID builds a sprint ID (SPR-001).
func FormatID(n int) string {
	return fmt.Sprintf("SPR-%03d", n)
}

// Contains reports whether the sprint scopes taskID.
func (s *Sprint) Contains(taskID string) bool {
	if s == nil {
		return false
	}
	for _, t := range s.Tasks {
		if t == taskID {
			return true
		}
	}
	return false
}

// IsChecked reports whether taskID's checkmark is ticked.
func (s *Sprint) IsChecked(taskID string) bool {
	return s != nil && s.Checked[taskID]
}

// Remaining returns the unchecked tasks in execution order.
func (s *Sprint) Remaining() []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, t := range s.Tasks {
		if !s.Checked[t] {
			out = append(out, t)
		}
	}
	return out
}

// IsComplete reports whether every checkmark is ticked.
func (s *Sprint) IsComplete() bool {
	return len(s.Remaining()) == 0
}

// IsOpen reports whether the sprint is active and still has unchecked tasks.
func (s *Sprint) IsOpen() bool {
	return s != nil && s.Status == StatusActive && !s.IsComplete()
}

// Progress returns ticked and total counts.
func (s *Sprint) Progress() (done, total int) {
	if s == nil {
		return 0, 0
	}
	total = len(s.Tasks)
	return total - len(s.Remaining()), total
}
