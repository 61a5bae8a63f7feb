package repository

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/mtlprog/farmops/internal/domain"
)

// psql is the shared Squirrel statement builder configured for PostgreSQL dollar placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a plain substring into an ILIKE pattern, escaping wildcards.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// withinWindow restricts column to w. The all-time window adds no predicate.
func withinWindow(qb sq.SelectBuilder, column string, w domain.Window) sq.SelectBuilder {
	if w.IsAllTime() {
		return qb
	}
	return qb.Where(sq.And{
		sq.GtOrEq{column: w.From},
		sq.LtOrEq{column: w.To},
	})
}
