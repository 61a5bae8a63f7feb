package recalc

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/mtlprog/farmops/internal/domain"
	"github.com/mtlprog/farmops/internal/metrics"
)

// Outcome labels recorded per subject.
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// Result summarizes one processed job.
type Result struct {
	Updated  int
	NotFound int
	Failed   int
}

// Processor runs jobs subject by subject. A failing subject never stops the others.
type Processor struct {
	recalc *Recalculator
}

// NewProcessor creates a new Processor.
func NewProcessor(recalc *Recalculator) *Processor {
	return &Processor{recalc: recalc}
}

// Process recomputes every subject of job. Missing subjects are logged and
// skipped; the returned error combines the remaining failures.
func (p *Processor) Process(ctx context.Context, job Job) (Result, error) {
	var (
		result Result
		errs   error
	)

	for _, ref := range p.expand(ctx, job.Subjects) {
		if err := ctx.Err(); err != nil {
			return result, multierr.Append(errs, err)
		}

		kind, score, err := p.recalc.Recalculate(ctx, ref)
		switch {
		case err == nil:
			result.Updated++
			metrics.RecordRecalculation(string(kind), outcomeOK)
			slog.Debug("efficiency recalculated",
				"job_id", job.ID,
				"subject_kind", kind,
				"subject_id", ref.ID,
				"efficiency", score,
			)
		case domain.IsNotFound(err):
			result.NotFound++
			metrics.RecordRecalculation(string(ref.Kind), outcomeNotFound)
			slog.Warn("efficiency recalculation skipped, subject not found",
				"job_id", job.ID,
				"subject_kind", ref.Kind,
				"subject_id", ref.ID,
			)
		default:
			result.Failed++
			metrics.RecordRecalculation(string(ref.Kind), outcomeError)
			slog.Error("efficiency recalculation failed",
				"job_id", job.ID,
				"subject_kind", ref.Kind,
				"subject_id", ref.ID,
				"error", err,
			)
			errs = multierr.Append(errs, fmt.Errorf("%s %s: %w", ref.Kind, ref.ID, err))
		}
	}

	slog.Info("recalculation job processed",
		"job_id", job.ID,
		"reason", job.Reason,
		"task_id", job.TaskID,
		"updated", result.Updated,
		"not_found", result.NotFound,
		"failed", result.Failed,
	)

	return result, errs
}

// expand adds the leader of every team in refs. Users are recalculated once
// even when named both as worker and leader.
func (p *Processor) expand(ctx context.Context, refs []domain.SubjectRef) []domain.SubjectRef {
	out := make([]domain.SubjectRef, 0, len(refs)+1)
	seenUsers := make(map[string]bool)
	seenTeams := make(map[string]bool)

	addUser := func(ref domain.SubjectRef) {
		if seenUsers[ref.ID] {
			return
		}
		seenUsers[ref.ID] = true
		out = append(out, ref)
	}

	for _, ref := range refs {
		if ref.Kind != domain.SubjectTeam {
			addUser(ref)
			continue
		}
		if seenTeams[ref.ID] {
			continue
		}
		seenTeams[ref.ID] = true
		out = append(out, ref)

		team, err := p.recalc.scores.GetTeam(ctx, ref.ID)
		if err != nil {
			// The team itself is reported when it is recalculated.
			continue
		}
		if team.LeaderID != nil {
			addUser(domain.SubjectRef{Kind: domain.SubjectLeader, ID: *team.LeaderID})
		}
	}
	return out
}
