package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/farmops/internal/domain"
)

// ReportRepository serves the read-only facts the report engine aggregates.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// outcomeColumns splits terminal outcomes into accepted, terminated and failed
// counts in a single grouped statement.
func outcomeColumns(qb sq.SelectBuilder) sq.SelectBuilder {
	return qb.
		Column(sq.Expr("COUNT(*) FILTER (WHERE t.status = ?)", domain.TaskStatusAccepted)).
		Column(sq.Expr("COUNT(*) FILTER (WHERE t.status = ?)", domain.TaskStatusTerminated)).
		Column(sq.Expr("COUNT(*) FILTER (WHERE t.status = ?)", domain.TaskStatusFailed))
}

// CountWorkerOutcomes counts terminal outcomes of tasks assigned to each worker.
func (r *ReportRepository) CountWorkerOutcomes(ctx context.Context, w domain.Window, workerIDs []string) (map[string]domain.OutcomeCounts, error) {
	if len(workerIDs) == 0 {
		return map[string]domain.OutcomeCounts{}, nil
	}

	qb := outcomeColumns(psql.Select("a.user_id")).
		From("task_assignees a").
		Join("tasks t ON t.id = a.task_id").
		Where(sq.Eq{"a.user_id": workerIDs}).
		Where(sq.Eq{"t.status": domain.TerminalStatuses}).
		GroupBy("a.user_id")

	return r.countOutcomes(ctx, withinWindow(qb, "t.end_date", w))
}

// CountLeaderOutcomes counts terminal outcomes of tasks of every team each leader leads.
func (r *ReportRepository) CountLeaderOutcomes(ctx context.Context, w domain.Window, leaderIDs []string) (map[string]domain.OutcomeCounts, error) {
	if len(leaderIDs) == 0 {
		return map[string]domain.OutcomeCounts{}, nil
	}

	qb := outcomeColumns(psql.Select("tm.leader_id")).
		From("tasks t").
		Join("teams tm ON tm.id = t.team_id").
		Where(sq.Eq{"tm.leader_id": leaderIDs}).
		Where(sq.Eq{"t.status": domain.TerminalStatuses}).
		GroupBy("tm.leader_id")

	return r.countOutcomes(ctx, withinWindow(qb, "t.end_date", w))
}

// CountTeamOutcomes counts terminal outcomes of tasks belonging to each team.
func (r *ReportRepository) CountTeamOutcomes(ctx context.Context, w domain.Window, teamIDs []string) (map[string]domain.OutcomeCounts, error) {
	if len(teamIDs) == 0 {
		return map[string]domain.OutcomeCounts{}, nil
	}

	qb := outcomeColumns(psql.Select("t.team_id")).
		From("tasks t").
		Where(sq.Eq{"t.team_id": teamIDs}).
		Where(sq.Eq{"t.status": domain.TerminalStatuses}).
		GroupBy("t.team_id")

	return r.countOutcomes(ctx, withinWindow(qb, "t.end_date", w))
}

func (r *ReportRepository) countOutcomes(ctx context.Context, qb sq.SelectBuilder) (map[string]domain.OutcomeCounts, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build outcome count query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query outcome counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]domain.OutcomeCounts)
	for rows.Next() {
		var (
			id string
			c  domain.OutcomeCounts
		)
		if err := rows.Scan(&id, &c.Accepted, &c.Terminated, &c.Failed); err != nil {
			return nil, fmt.Errorf("scan outcome counts: %w", err)
		}
		counts[id] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return counts, nil
}

// ListResourceMovements returns movements inside w that belong to tasks in the
// given status, optionally restricted to resources whose name contains resourceFilter.
func (r *ReportRepository) ListResourceMovements(
	ctx context.Context,
	w domain.Window,
	status domain.TaskStatus,
	resourceFilter string,
) ([]domain.ResourceMovement, error) {
	qb := psql.
		Select(
			"rm.task_id", "rm.resource_id", "r.name", "r.type",
			"rm.direction", "rm.quantity", "rm.occurred_at",
		).
		From("resource_movements rm").
		Join("tasks t ON t.id = rm.task_id").
		Join("resources r ON r.id = rm.resource_id").
		Where(sq.Eq{"t.status": status}).
		OrderBy("rm.occurred_at", "rm.id")

	qb = withinWindow(qb, "rm.occurred_at", w)
	if resourceFilter != "" {
		qb = qb.Where(sq.ILike{"r.name": containsPattern(resourceFilter)})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListResourceMovements query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query resource movements: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ResourceMovement, error) {
		var m domain.ResourceMovement
		err := row.Scan(
			&m.TaskID,
			&m.ResourceID,
			&m.ResourceName,
			&m.ResourceType,
			&m.Direction,
			&m.Quantity,
			&m.OccurredAt,
		)
		if err != nil {
			return m, fmt.Errorf("scan resource movement: %w", err)
		}
		if !m.Direction.IsValid() {
			return m, fmt.Errorf("scan resource movement: unknown direction %q", m.Direction)
		}
		return m, nil
	})
}
