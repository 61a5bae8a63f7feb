package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mtlprog/farmops/internal/domain"
	"github.com/mtlprog/farmops/internal/metrics"
)

// Report kinds, used for logging and metrics labels.
const (
	KindWorkers       = "workers"
	KindLeaders       = "leaders"
	KindTeams         = "teams"
	KindResourceUsage = "resource_usage"
)

// FactStore is the read side the engine aggregates over.
// An empty nameFilter means no filtering; otherwise it is a case-insensitive substring.
type FactStore interface {
	ListWorkers(ctx context.Context, nameFilter string) ([]domain.WorkerProfile, error)
	ListLeaders(ctx context.Context, nameFilter string) ([]domain.LeaderProfile, error)
	ListTeams(ctx context.Context, nameFilter string) ([]domain.TeamProfile, error)

	CountWorkerOutcomes(ctx context.Context, w domain.Window, workerIDs []string) (map[string]domain.OutcomeCounts, error)
	CountLeaderOutcomes(ctx context.Context, w domain.Window, leaderIDs []string) (map[string]domain.OutcomeCounts, error)
	CountTeamOutcomes(ctx context.Context, w domain.Window, teamIDs []string) (map[string]domain.OutcomeCounts, error)

	ListResourceMovements(ctx context.Context, w domain.Window, status domain.TaskStatus, resourceFilter string) ([]domain.ResourceMovement, error)
}

// Service produces paginated efficiency and resource-usage reports.
// Every report is computed from scratch; nothing is cached or persisted.
type Service struct {
	store FactStore
}

// NewService creates a new report Service.
func NewService(store FactStore) *Service {
	return &Service{store: store}
}

// ReportWorkers returns the efficiency of workers whose name matches filter.
func (s *Service) ReportWorkers(ctx context.Context, w domain.Window, filter string, req PageRequest) (Page[EfficiencySummary], error) {
	return observe(ctx, KindWorkers, req, func() ([]EfficiencySummary, error) {
		workers, err := s.store.ListWorkers(ctx, NormalizeFilter(filter))
		if err != nil {
			return nil, fmt.Errorf("list workers: %w", err)
		}
		ids := make([]string, len(workers))
		for i, wp := range workers {
			ids[i] = wp.User.ID
		}
		counts, err := s.countOutcomes(ctx, w, ids, s.store.CountWorkerOutcomes)
		if err != nil {
			return nil, fmt.Errorf("count worker outcomes: %w", err)
		}
		return WorkerSummaries(workers, counts), nil
	})
}

// ReportLeaders returns the efficiency of team leaders whose name matches filter.
func (s *Service) ReportLeaders(ctx context.Context, w domain.Window, filter string, req PageRequest) (Page[EfficiencySummary], error) {
	return observe(ctx, KindLeaders, req, func() ([]EfficiencySummary, error) {
		leaders, err := s.store.ListLeaders(ctx, NormalizeFilter(filter))
		if err != nil {
			return nil, fmt.Errorf("list leaders: %w", err)
		}
		ids := make([]string, len(leaders))
		for i, lp := range leaders {
			ids[i] = lp.User.ID
		}
		counts, err := s.countOutcomes(ctx, w, ids, s.store.CountLeaderOutcomes)
		if err != nil {
			return nil, fmt.Errorf("count leader outcomes: %w", err)
		}
		return LeaderSummaries(leaders, counts), nil
	})
}

// ReportTeams returns the efficiency of teams whose name matches filter.
func (s *Service) ReportTeams(ctx context.Context, w domain.Window, filter string, req PageRequest) (Page[EfficiencySummary], error) {
	return observe(ctx, KindTeams, req, func() ([]EfficiencySummary, error) {
		teams, err := s.store.ListTeams(ctx, NormalizeFilter(filter))
		if err != nil {
			return nil, fmt.Errorf("list teams: %w", err)
		}
		ids := make([]string, len(teams))
		for i, tp := range teams {
			ids[i] = tp.Team.ID
		}
		counts, err := s.countOutcomes(ctx, w, ids, s.store.CountTeamOutcomes)
		if err != nil {
			return nil, fmt.Errorf("count team outcomes: %w", err)
		}
		return TeamSummaries(teams, counts), nil
	})
}

// ReportResourceUsage returns net usage per resource for accepted tasks in w,
// compared with the previous window of equal length.
func (s *Service) ReportResourceUsage(ctx context.Context, w domain.Window, resourceFilter string, req PageRequest) (Page[ResourceUsageSummary], error) {
	return observe(ctx, KindResourceUsage, req, func() ([]ResourceUsageSummary, error) {
		filter := NormalizeFilter(resourceFilter)

		current, err := s.movements(ctx, w, filter)
		if err != nil {
			return nil, fmt.Errorf("list current movements: %w", err)
		}
		if len(current) == 0 {
			return []ResourceUsageSummary{}, nil
		}

		prevWindow := PreviousWindow(w)
		previous, err := s.movements(ctx, prevWindow, filter)
		if err != nil {
			return nil, fmt.Errorf("list previous movements: %w", err)
		}

		slog.Debug("resource usage windows",
			"from", w.From,
			"to", w.To,
			"prev_from", prevWindow.From,
			"prev_to", prevWindow.To,
			"current_facts", len(current),
			"previous_facts", len(previous),
		)

		return AggregateResourceUsage(current, previous), nil
	})
}

// countOutcomes skips the store round trip for an empty subject set or window.
func (s *Service) countOutcomes(
	ctx context.Context,
	w domain.Window,
	ids []string,
	count func(context.Context, domain.Window, []string) (map[string]domain.OutcomeCounts, error),
) (map[string]domain.OutcomeCounts, error) {
	if len(ids) == 0 || w.IsEmpty() {
		return map[string]domain.OutcomeCounts{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return count(ctx, w, ids)
}

func (s *Service) movements(ctx context.Context, w domain.Window, filter string) ([]domain.ResourceMovement, error) {
	if w.IsEmpty() {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListResourceMovements(ctx, w, ResourceUsageStatus, filter)
}

// observe runs one aggregation, pages its result and records metrics.
// A failed aggregation fails the whole report; no partial page is returned.
func observe[T any](ctx context.Context, kind string, req PageRequest, aggregate func() ([]T, error)) (Page[T], error) {
	start := time.Now()

	rows, err := aggregate()
	metrics.ObserveReport(kind, len(rows), time.Since(start), err)
	if err != nil {
		slog.ErrorContext(ctx, "report generation failed",
			"report", kind,
			"error", err,
		)
		return Page[T]{}, fmt.Errorf("%s report: %w", kind, err)
	}

	return Paginate(rows, req), nil
}
