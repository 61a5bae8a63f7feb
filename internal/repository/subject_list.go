package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/mtlprog/farmops/internal/domain"
)

// userFullName mirrors domain.User.FullName closely enough for substring filtering.
const userFullName = "(u.first_name || ' ' || u.last_name)"

var userColumns = []string{
	"u.id", "u.first_name", "u.last_name", "u.role", "u.status", "u.hired_at", "u.efficiency",
}

// ListWorkers returns users with role WORKER and the number of teams each belongs to.
func (r *ReportRepository) ListWorkers(ctx context.Context, nameFilter string) ([]domain.WorkerProfile, error) {
	qb := psql.
		Select(userColumns...).
		Column("(SELECT COUNT(*) FROM team_members m WHERE m.user_id = u.id) AS team_count").
		From("users u").
		Where(sq.Eq{"u.role": domain.UserRoleWorker}).
		OrderBy("u.id")
	if nameFilter != "" {
		qb = qb.Where(sq.ILike{userFullName: containsPattern(nameFilter)})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListWorkers query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query workers: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.WorkerProfile, error) {
		var p domain.WorkerProfile
		u := &p.User
		err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Role, &u.Status, &u.HiredAt, &u.Efficiency, &p.TeamCount)
		if err != nil {
			return p, fmt.Errorf("scan worker: %w", err)
		}
		return p, nil
	})
}

// ListLeaders returns every user leading at least one team, with the number of
// teams led and the distinct members across those teams.
func (r *ReportRepository) ListLeaders(ctx context.Context, nameFilter string) ([]domain.LeaderProfile, error) {
	qb := psql.
		Select(userColumns...).
		Column("COUNT(DISTINCT tm.id) AS teams_count").
		Column("COUNT(DISTINCT m.user_id) AS employees_count").
		From("users u").
		Join("teams tm ON tm.leader_id = u.id").
		LeftJoin("team_members m ON m.team_id = tm.id").
		GroupBy("u.id").
		OrderBy("u.id")
	if nameFilter != "" {
		qb = qb.Where(sq.ILike{userFullName: containsPattern(nameFilter)})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListLeaders query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leaders: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LeaderProfile, error) {
		var p domain.LeaderProfile
		u := &p.User
		err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Role, &u.Status, &u.HiredAt, &u.Efficiency,
			&p.TeamsCount, &p.EmployeesCount)
		if err != nil {
			return p, fmt.Errorf("scan leader: %w", err)
		}
		return p, nil
	})
}

// ListTeams returns teams with their leader name and member count.
func (r *ReportRepository) ListTeams(ctx context.Context, nameFilter string) ([]domain.TeamProfile, error) {
	qb := psql.
		Select("tm.id", "tm.name", "tm.leader_id", "tm.created_at", "tm.efficiency").
		Column("COALESCE(l.first_name || ' ' || l.last_name, '') AS leader_name").
		Column("(SELECT COUNT(*) FROM team_members m WHERE m.team_id = tm.id) AS members_count").
		From("teams tm").
		LeftJoin("users l ON l.id = tm.leader_id").
		OrderBy("tm.id")
	if nameFilter != "" {
		qb = qb.Where(sq.ILike{"tm.name": containsPattern(nameFilter)})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListTeams query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TeamProfile, error) {
		var p domain.TeamProfile
		t := &p.Team
		err := row.Scan(&t.ID, &t.Name, &t.LeaderID, &t.CreatedAt, &t.Efficiency, &p.LeaderName, &p.MembersCount)
		if err != nil {
			return p, fmt.Errorf("scan team: %w", err)
		}
		return p, nil
	})
}
