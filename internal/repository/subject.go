package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/farmops/internal/domain"
)

// SubjectRepository handles lookups and persisted efficiency scores of users and teams.
type SubjectRepository struct {
	pool *pgxpool.Pool
}

// NewSubjectRepository creates a new SubjectRepository.
func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

// GetUser retrieves a user by ID.
func (r *SubjectRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query, args, err := psql.
		Select(userColumns...).
		From("users u").
		Where(sq.Eq{"u.id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetUser query: %w", err)
	}

	var u domain.User
	err = r.pool.QueryRow(ctx, query, args...).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Role, &u.Status, &u.HiredAt, &u.Efficiency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// GetTeam retrieves a team by ID.
func (r *SubjectRepository) GetTeam(ctx context.Context, teamID string) (*domain.Team, error) {
	query, args, err := psql.
		Select("id", "name", "leader_id", "created_at", "efficiency").
		From("teams").
		Where(sq.Eq{"id": teamID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetTeam query: %w", err)
	}

	var t domain.Team
	err = r.pool.QueryRow(ctx, query, args...).
		Scan(&t.ID, &t.Name, &t.LeaderID, &t.CreatedAt, &t.Efficiency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTeamNotFound, teamID)
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return &t, nil
}

// ListSubjects returns every subject that carries a persisted score: all workers,
// every user leading a team, and all teams.
func (r *SubjectRepository) ListSubjects(ctx context.Context) ([]domain.SubjectRef, error) {
	query := `
		SELECT 'WORKER', id::text FROM users WHERE role = $1
		UNION
		SELECT 'LEADER', leader_id::text FROM teams WHERE leader_id IS NOT NULL
		UNION
		SELECT 'TEAM', id::text FROM teams
		ORDER BY 1, 2
	`

	rows, err := r.pool.Query(ctx, query, domain.UserRoleWorker)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SubjectRef, error) {
		var ref domain.SubjectRef
		if err := row.Scan(&ref.Kind, &ref.ID); err != nil {
			return ref, fmt.Errorf("scan subject: %w", err)
		}
		return ref, nil
	})
}

// UpdateUserEfficiency overwrites the persisted score of a user.
func (r *SubjectRepository) UpdateUserEfficiency(ctx context.Context, userID string, score float64) error {
	return r.updateEfficiency(ctx, "users", userID, score, domain.ErrUserNotFound)
}

// UpdateTeamEfficiency overwrites the persisted score of a team.
func (r *SubjectRepository) UpdateTeamEfficiency(ctx context.Context, teamID string, score float64) error {
	return r.updateEfficiency(ctx, "teams", teamID, score, domain.ErrTeamNotFound)
}

func (r *SubjectRepository) updateEfficiency(ctx context.Context, table, id string, score float64, notFound error) error {
	query, args, err := psql.
		Update(table).
		Set("efficiency", score).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build efficiency update for %s %s: %w", table, id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s efficiency: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}
