// Package recalc keeps the persisted efficiency score of workers, leaders and
// teams in line with their all-time task outcomes. Task mutations fire a Job
// naming the affected subjects; a Trigger runs it inline or hands it to a
// worker Pool through an in-memory queue or a Kafka topic.
package recalc

import (
	"time"

	"github.com/google/uuid"

	"github.com/mtlprog/farmops/internal/domain"
)

// Reason records which mutation produced a job.
type Reason string

const (
	ReasonUpdate  Reason = "update"
	ReasonDelete  Reason = "delete"
	ReasonReview  Reason = "review"
	ReasonRebuild Reason = "rebuild"
)

// Job asks for the scores of Subjects to be recomputed.
type Job struct {
	ID         string              `json:"id"`
	Reason     Reason              `json:"reason"`
	TaskID     string              `json:"task_id,omitempty"`
	Subjects   []domain.SubjectRef `json:"subjects"`
	EnqueuedAt time.Time           `json:"enqueued_at"`
}

// NewJob builds a job with a fresh ID. Duplicate and invalid subjects are dropped.
func NewJob(reason Reason, taskID string, subjects ...domain.SubjectRef) Job {
	seen := make(map[domain.SubjectRef]bool, len(subjects))
	unique := make([]domain.SubjectRef, 0, len(subjects))
	for _, s := range subjects {
		if s.ID == "" || !s.Kind.IsValid() || seen[s] {
			continue
		}
		seen[s] = true
		unique = append(unique, s)
	}

	return Job{
		ID:         uuid.NewString(),
		Reason:     reason,
		TaskID:     taskID,
		Subjects:   unique,
		EnqueuedAt: time.Now().UTC(),
	}
}

// TaskSubjects returns the subjects a task touches: its assignees as workers
// and its team. The team's leader is resolved when the job is processed.
func TaskSubjects(task *domain.Task) []domain.SubjectRef {
	if task == nil {
		return nil
	}
	refs := make([]domain.SubjectRef, 0, len(task.AssigneeIDs)+1)
	for _, id := range task.AssigneeIDs {
		refs = append(refs, domain.SubjectRef{Kind: domain.SubjectWorker, ID: id})
	}
	if task.TeamID != nil && *task.TeamID != "" {
		refs = append(refs, domain.SubjectRef{Kind: domain.SubjectTeam, ID: *task.TeamID})
	}
	return refs
}
