package service

import (
	"fmt"
	"strings"

	"github.com/mtlprog/farmops/internal/domain"
)

// Validator handles state validation for task mutations.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePatch checks a partial update against the current task.
func (v *Validator) ValidatePatch(task *domain.Task, patch domain.TaskPatch) error {
	if patch.IsEmpty() {
		return fmt.Errorf("%w: task %s", domain.ErrEmptyPatch, task.ID)
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return fmt.Errorf("%w: task %s", domain.ErrInvalidTitle, task.ID)
	}

	if patch.Status != nil && !patch.Status.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *patch.Status)
	}

	if patch.EndDate != nil && task.StartDate != nil && patch.EndDate.Before(*task.StartDate) {
		return fmt.Errorf("%w: end date of task %s precedes its start date", domain.ErrInvalidDate, task.ID)
	}

	return nil
}

// CanReview validates that a task may receive the given review outcome.
func (v *Validator) CanReview(task *domain.Task, status domain.TaskStatus) error {
	if !status.IsTerminal() {
		return fmt.Errorf("%w: got %q", domain.ErrInvalidReviewStatus, status)
	}

	if !task.Status.IsReviewable() {
		return fmt.Errorf("%w: task %s is in %s status, expected DONE or IN_PROGRESS", domain.ErrInvalidTransition, task.ID, task.Status)
	}

	return nil
}
