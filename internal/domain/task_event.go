package domain

import "time"

// EventType represents the type of task event.
type EventType string

const (
	EventTypeUpdated  EventType = "updated"
	EventTypeReviewed EventType = "reviewed"
)

// TaskEvent represents an audit log entry for a task mutation.
type TaskEvent struct {
	ID        string
	TaskID    string
	Type      EventType
	OldStatus *TaskStatus
	NewStatus *TaskStatus
	Comment   string
	CreatedAt time.Time
}

// ChangesStatus returns true if the event moved the task to another status.
func (e *TaskEvent) ChangesStatus() bool {
	return e.OldStatus != nil && e.NewStatus != nil && *e.OldStatus != *e.NewStatus
}
