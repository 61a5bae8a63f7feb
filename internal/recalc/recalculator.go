package recalc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mtlprog/farmops/internal/domain"
)

// Retry defaults for transient store errors.
const (
	DefaultMaxRetries = 3
	DefaultRetryBase  = 100 * time.Millisecond
)

// OutcomeCounter counts terminal task outcomes per subject.
type OutcomeCounter interface {
	CountWorkerOutcomes(ctx context.Context, w domain.Window, workerIDs []string) (map[string]domain.OutcomeCounts, error)
	CountLeaderOutcomes(ctx context.Context, w domain.Window, leaderIDs []string) (map[string]domain.OutcomeCounts, error)
	CountTeamOutcomes(ctx context.Context, w domain.Window, teamIDs []string) (map[string]domain.OutcomeCounts, error)
}

// ScoreStore loads subjects and persists their scores.
type ScoreStore interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetTeam(ctx context.Context, teamID string) (*domain.Team, error)
	UpdateUserEfficiency(ctx context.Context, userID string, score float64) error
	UpdateTeamEfficiency(ctx context.Context, teamID string, score float64) error
}

// Recalculator recomputes the all-time efficiency of one subject and stores it.
type Recalculator struct {
	counts     OutcomeCounter
	scores     ScoreStore
	maxRetries uint64
	retryBase  time.Duration
}

// RecalculatorOption configures a Recalculator.
type RecalculatorOption func(*Recalculator)

// WithRetry sets how often and how fast transient failures are retried.
func WithRetry(maxRetries int, base time.Duration) RecalculatorOption {
	return func(r *Recalculator) {
		if maxRetries >= 0 {
			r.maxRetries = uint64(maxRetries)
		}
		if base > 0 {
			r.retryBase = base
		}
	}
}

// NewRecalculator creates a new Recalculator.
func NewRecalculator(counts OutcomeCounter, scores ScoreStore, opts ...RecalculatorOption) *Recalculator {
	r := &Recalculator{
		counts:     counts,
		scores:     scores,
		maxRetries: DefaultMaxRetries,
		retryBase:  DefaultRetryBase,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recalculate recomputes and persists the score of ref. It returns the subject
// kind the score was computed as. For users the stored role decides: a LEADER
// is scored on leader counts and anyone else on worker counts, whichever ref
// kind named them and whether or not they lead a team.
//
// Missing subjects and cancelled contexts are not retried.
func (r *Recalculator) Recalculate(ctx context.Context, ref domain.SubjectRef) (domain.SubjectKind, float64, error) {
	var (
		kind  domain.SubjectKind
		score float64
	)

	backoff := retry.WithMaxRetries(r.maxRetries, retry.NewExponential(r.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		kind, score, err = r.recalculateOnce(ctx, ref)
		if err == nil || domain.IsNotFound(err) || errors.Is(err, domain.ErrUnknownSubject) || ctx.Err() != nil {
			return err
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		return ref.Kind, 0, err
	}
	return kind, score, nil
}

func (r *Recalculator) recalculateOnce(ctx context.Context, ref domain.SubjectRef) (domain.SubjectKind, float64, error) {
	switch ref.Kind {
	case domain.SubjectTeam:
		counts, err := r.counts.CountTeamOutcomes(ctx, domain.AllTime, []string{ref.ID})
		if err != nil {
			return ref.Kind, 0, fmt.Errorf("count team outcomes: %w", err)
		}
		score := counts[ref.ID].EfficiencyRate()
		if err := r.scores.UpdateTeamEfficiency(ctx, ref.ID, score); err != nil {
			return ref.Kind, 0, err
		}
		return domain.SubjectTeam, score, nil

	case domain.SubjectWorker, domain.SubjectLeader:
		user, err := r.scores.GetUser(ctx, ref.ID)
		if err != nil {
			return ref.Kind, 0, err
		}

		kind := domain.SubjectWorker
		count := r.counts.CountWorkerOutcomes
		if user.Role == domain.UserRoleLeader {
			kind = domain.SubjectLeader
			count = r.counts.CountLeaderOutcomes
		}

		counts, err := count(ctx, domain.AllTime, []string{ref.ID})
		if err != nil {
			return kind, 0, fmt.Errorf("count %s outcomes: %w", kind, err)
		}
		score := counts[ref.ID].EfficiencyRate()
		if err := r.scores.UpdateUserEfficiency(ctx, ref.ID, score); err != nil {
			return kind, 0, err
		}
		return kind, score, nil

	default:
		return ref.Kind, 0, fmt.Errorf("%w: %q", domain.ErrUnknownSubject, ref.Kind)
	}
}
