package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/farmops/internal/domain"
)

// foreignKeyViolation is the SQLSTATE raised when an assignee or team does not exist.
const foreignKeyViolation = "23503"

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "title", "team_id", "status", "start_date", "end_date", "created_at", "updated_at",
}

// TaskRepository handles database operations for tasks.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.TeamID,
		&task.Status,
		&task.StartDate,
		&task.EndDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &task, nil
}

// getByID loads a task and its assignees through q.
func getByID(ctx context.Context, q querier, taskID string, suffix string) (*domain.Task, error) {
	qb := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID})
	if suffix != "" {
		qb = qb.Suffix(suffix)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query for task %s: %w", taskID, err)
	}

	task, err := scanTask(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	task.AssigneeIDs, err = listAssignees(ctx, q, taskID)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func listAssignees(ctx context.Context, q querier, taskID string) ([]string, error) {
	query, args, err := psql.
		Select("user_id::text").
		From("task_assignees").
		Where(sq.Eq{"task_id": taskID}).
		OrderBy("user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build assignee query for task %s: %w", taskID, err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query task assignees: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect task assignees: %w", err)
	}
	return ids, nil
}

// GetByID retrieves a task by ID together with its assignees.
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	return getByID(ctx, r.pool, taskID, "")
}

// GetByIDForUpdate retrieves a task by ID with FOR UPDATE lock (within transaction).
func (r *TaskRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, taskID string) (*domain.Task, error) {
	return getByID(ctx, tx, taskID, "FOR UPDATE")
}

// ApplyPatch writes the non-nil fields of patch. An empty TeamID clears the team.
func (r *TaskRepository) ApplyPatch(ctx context.Context, tx pgx.Tx, taskID string, patch domain.TaskPatch) error {
	ub := psql.
		Update("tasks").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": taskID})

	if patch.Title != nil {
		ub = ub.Set("title", *patch.Title)
	}
	if patch.Status != nil {
		ub = ub.Set("status", *patch.Status)
	}
	if patch.EndDate != nil {
		ub = ub.Set("end_date", *patch.EndDate)
	}
	if patch.TeamID != nil {
		var teamID *string
		if *patch.TeamID != "" {
			teamID = patch.TeamID
		}
		ub = ub.Set("team_id", teamID)
	}

	query, args, err := ub.ToSql()
	if err != nil {
		return fmt.Errorf("build ApplyPatch query for task %s: %w", taskID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("%w: team of task %s", domain.ErrTeamNotFound, taskID)
		}
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}

	if patch.AssigneeIDs != nil {
		return r.ReplaceAssignees(ctx, tx, taskID, *patch.AssigneeIDs)
	}
	return nil
}

// ReplaceAssignees sets the assignee list of a task to exactly userIDs.
func (r *TaskRepository) ReplaceAssignees(ctx context.Context, tx pgx.Tx, taskID string, userIDs []string) error {
	query, args, err := psql.
		Delete("task_assignees").
		Where(sq.Eq{"task_id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build assignee delete for task %s: %w", taskID, err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete task assignees: %w", err)
	}

	if len(userIDs) == 0 {
		return nil
	}

	ib := psql.Insert("task_assignees").Columns("task_id", "user_id")
	for _, id := range userIDs {
		ib = ib.Values(taskID, id)
	}
	query, args, err = ib.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build assignee insert for task %s: %w", taskID, err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("%w: assignee of task %s", domain.ErrUserNotFound, taskID)
		}
		return fmt.Errorf("insert task assignees: %w", err)
	}
	return nil
}

// UpdateStatus moves a task from oldStatus to newStatus with optimistic locking.
// Returns ErrInvalidTransition if the task was modified concurrently.
func (r *TaskRepository) UpdateStatus(
	ctx context.Context,
	tx pgx.Tx,
	taskID string,
	oldStatus domain.TaskStatus,
	newStatus domain.TaskStatus,
	endDate *time.Time,
) error {
	query, args, err := psql.
		Update("tasks").
		Set("status", newStatus).
		Set("end_date", endDate).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":     taskID,
			"status": oldStatus,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build UpdateStatus query for task %s: %w", taskID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: task %s is no longer %s", domain.ErrInvalidTransition, taskID, oldStatus)
	}

	return nil
}

// Delete removes a task. Assignees, events and resource movements cascade.
func (r *TaskRepository) Delete(ctx context.Context, tx pgx.Tx, taskID string) error {
	query, args, err := psql.
		Delete("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for task %s: %w", taskID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// Create creates a new task and its assignees within a transaction.
// Returns the created task with ID, CreatedAt, and UpdatedAt populated.
func (r *TaskRepository) Create(ctx context.Context, tx pgx.Tx, task *domain.Task) (*domain.Task, error) {
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}

	query, args, err := psql.
		Insert("tasks").
		Columns("title", "team_id", "status", "start_date", "end_date").
		Values(task.Title, task.TeamID, task.Status, task.StartDate, task.EndDate).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for task: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if err := r.ReplaceAssignees(ctx, tx, task.ID, task.AssigneeIDs); err != nil {
		return nil, err
	}

	return task, nil
}
