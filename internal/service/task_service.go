package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/farmops/internal/domain"
	"github.com/mtlprog/farmops/internal/recalc"
	"github.com/mtlprog/farmops/internal/repository"
)

// TaskService coordinates task mutations and fires efficiency recalculation
// for the subjects they affect.
type TaskService struct {
	pool      *pgxpool.Pool
	taskRepo  *repository.TaskRepository
	eventRepo *repository.TaskEventRepository
	trigger   recalc.Trigger
	validator *Validator
	now       func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	pool *pgxpool.Pool,
	taskRepo *repository.TaskRepository,
	eventRepo *repository.TaskEventRepository,
	trigger recalc.Trigger,
) *TaskService {
	return &TaskService{
		pool:      pool,
		taskRepo:  taskRepo,
		eventRepo: eventRepo,
		trigger:   trigger,
		validator: NewValidator(),
		now:       time.Now,
	}
}

// begin starts a transaction and returns a rollback func safe to defer.
func (s *TaskService) begin(ctx context.Context) (pgx.Tx, func(), error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	rollback := func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}
	return tx, rollback, nil
}

// createEventAndCommit persists a task event within the transaction, then commits.
func (s *TaskService) createEventAndCommit(ctx context.Context, tx pgx.Tx, event *domain.TaskEvent) error {
	if err := s.eventRepo.Create(ctx, tx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// fire hands a job to the trigger once the mutation is committed.
func (s *TaskService) fire(ctx context.Context, reason recalc.Reason, taskID string, subjects []domain.SubjectRef) {
	if s.trigger == nil {
		return
	}
	s.trigger.Fire(ctx, recalc.NewJob(reason, taskID, subjects...))
}

// UpdateTask applies a partial update. Subjects of the task before and after
// the update are recalculated.
func (s *TaskService) UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer rollback()

	before, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidatePatch(before, patch); err != nil {
		return nil, err
	}

	oldStatus := before.Status
	newStatus := oldStatus
	if patch.Status != nil {
		newStatus = *patch.Status
		if patch.EndDate == nil {
			patch.EndDate = ResolveEndDate(before.EndDate, newStatus, s.now())
		}
	}

	if err := s.taskRepo.ApplyPatch(ctx, tx, taskID, patch); err != nil {
		return nil, err
	}

	event := &domain.TaskEvent{
		TaskID:    taskID,
		Type:      domain.EventTypeUpdated,
		OldStatus: &oldStatus,
		NewStatus: &newStatus,
	}
	if err := s.createEventAndCommit(ctx, tx, event); err != nil {
		return nil, err
	}

	after := before.WithPatch(patch)
	after.UpdatedAt = event.CreatedAt

	slog.Info("task updated",
		"task_id", taskID,
		"old_status", oldStatus,
		"new_status", newStatus,
		"event_id", event.ID,
	)

	s.fire(ctx, recalc.ReasonUpdate, taskID,
		append(recalc.TaskSubjects(before), recalc.TaskSubjects(&after)...))

	return &after, nil
}

// DeleteTask removes a task. Its assignees and team are read before removal
// and recalculated afterwards.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer rollback()

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, tx, taskID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task deleted",
		"task_id", taskID,
		"assignees", len(task.AssigneeIDs),
	)

	s.fire(ctx, recalc.ReasonDelete, taskID, recalc.TaskSubjects(task))

	return nil
}

// ReviewTask sets a terminal outcome (ACCEPTED, TERMINATED or FAILED) on a task
// awaiting review and stamps its end date when missing.
func (s *TaskService) ReviewTask(
	ctx context.Context,
	taskID string,
	status domain.TaskStatus,
	comment string,
) (*domain.TaskEvent, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("%w: got %q", domain.ErrInvalidReviewStatus, status)
	}

	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer rollback()

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.CanReview(task, status); err != nil {
		return nil, err
	}

	oldStatus := task.Status
	endDate := ResolveEndDate(task.EndDate, status, s.now())

	if err := s.taskRepo.UpdateStatus(ctx, tx, taskID, oldStatus, status, endDate); err != nil {
		return nil, err
	}

	newStatus := status
	event := &domain.TaskEvent{
		TaskID:    taskID,
		Type:      domain.EventTypeReviewed,
		OldStatus: &oldStatus,
		NewStatus: &newStatus,
		Comment:   comment,
	}
	if err := s.createEventAndCommit(ctx, tx, event); err != nil {
		return nil, err
	}

	slog.Info("task reviewed",
		"task_id", taskID,
		"old_status", oldStatus,
		"new_status", newStatus,
		"event_id", event.ID,
	)

	s.fire(ctx, recalc.ReasonReview, taskID, recalc.TaskSubjects(task))

	return event, nil
}
