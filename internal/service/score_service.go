package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mtlprog/farmops/internal/domain"
	"github.com/mtlprog/farmops/internal/recalc"
)

// SubjectLister lists every subject carrying a persisted score.
type SubjectLister interface {
	ListSubjects(ctx context.Context) ([]domain.SubjectRef, error)
}

// ScoreService rebuilds persisted efficiency scores outside the mutation path.
type ScoreService struct {
	subjects  SubjectLister
	processor recalc.JobHandler
}

// NewScoreService creates a new ScoreService.
func NewScoreService(subjects SubjectLister, processor recalc.JobHandler) *ScoreService {
	return &ScoreService{subjects: subjects, processor: processor}
}

// RecalculateAll recomputes the score of every worker, leader and team.
// Failures are isolated per subject and returned combined.
func (s *ScoreService) RecalculateAll(ctx context.Context) (recalc.Result, error) {
	refs, err := s.subjects.ListSubjects(ctx)
	if err != nil {
		return recalc.Result{}, fmt.Errorf("list subjects: %w", err)
	}

	if len(refs) == 0 {
		slog.Info("no subjects to recalculate")
		return recalc.Result{}, nil
	}

	job := recalc.NewJob(recalc.ReasonRebuild, "", refs...)
	result, err := s.processor.Process(ctx, job)
	if err != nil {
		return result, fmt.Errorf("recalculated %d/%d subjects, %d failures: %w",
			result.Updated, len(job.Subjects), result.Failed, err)
	}

	return result, nil
}
