package domain

import "time"

// TaskStatus represents the progress of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusAccepted   TaskStatus = "ACCEPTED"
	TaskStatusTerminated TaskStatus = "TERMINATED"
	TaskStatusFailed     TaskStatus = "FAILED"
)

// TerminalStatuses lists the review outcomes a task can end in.
var TerminalStatuses = []TaskStatus{TaskStatusAccepted, TaskStatusTerminated, TaskStatusFailed}

// IsTerminal returns true if the task will not progress further.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusAccepted || s == TaskStatusTerminated || s == TaskStatusFailed
}

// IsReviewable returns true if a task in this status may receive a review outcome.
func (s TaskStatus) IsReviewable() bool {
	return s == TaskStatusDone || s == TaskStatusInProgress
}

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusDone,
		TaskStatusAccepted, TaskStatusTerminated, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Task represents a unit of field work assigned to workers of a team.
type Task struct {
	ID          string
	Title       string
	TeamID      *string
	Status      TaskStatus
	StartDate   *time.Time
	EndDate     *time.Time
	AssigneeIDs []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskPatch holds the optional fields of a partial task update.
// Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Status      *TaskStatus
	EndDate     *time.Time
	TeamID      *string
	AssigneeIDs *[]string
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Status == nil && p.EndDate == nil && p.TeamID == nil && p.AssigneeIDs == nil
}

// WithPatch returns a copy of the task with the patch applied in memory.
// An empty TeamID clears the team.
func (t Task) WithPatch(p TaskPatch) Task {
	out := t
	out.AssigneeIDs = append([]string(nil), t.AssigneeIDs...)
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.EndDate != nil {
		end := *p.EndDate
		out.EndDate = &end
	}
	if p.TeamID != nil {
		if *p.TeamID == "" {
			out.TeamID = nil
		} else {
			teamID := *p.TeamID
			out.TeamID = &teamID
		}
	}
	if p.AssigneeIDs != nil {
		out.AssigneeIDs = append([]string(nil), (*p.AssigneeIDs)...)
	}
	return out
}
