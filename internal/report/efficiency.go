package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/mtlprog/farmops/internal/domain"
)

// EfficiencySummary is the windowed efficiency of one worker, leader or team.
// Only the role-specific counts matching Kind are meaningful.
type EfficiencySummary struct {
	Kind            domain.SubjectKind
	SubjectID       string
	Name            string
	Status          string
	HiredAt         *time.Time
	AcceptedCount   int
	TerminatedCount int
	FailedCount     int
	TasksCount      int
	EfficiencyRate  float64

	// Workers
	TeamCount int

	// Leaders
	TeamsCount     int
	EmployeesCount int

	// Teams
	MembersCount int
	LeaderName   string
}

func newEfficiencySummary(kind domain.SubjectKind, id string, counts domain.OutcomeCounts) EfficiencySummary {
	return EfficiencySummary{
		Kind:            kind,
		SubjectID:       id,
		AcceptedCount:   counts.Accepted,
		TerminatedCount: counts.Terminated,
		FailedCount:     counts.Failed,
		TasksCount:      counts.TasksCount(),
		EfficiencyRate:  counts.EfficiencyRate(),
	}
}

// WorkerSummaries joins worker profiles with their outcome counts.
// Workers without counts get zero figures.
func WorkerSummaries(workers []domain.WorkerProfile, counts map[string]domain.OutcomeCounts) []EfficiencySummary {
	out := make([]EfficiencySummary, 0, len(workers))
	for _, w := range workers {
		s := newEfficiencySummary(domain.SubjectWorker, w.User.ID, counts[w.User.ID])
		s.Name = w.User.FullName()
		s.Status = w.User.Status
		s.HiredAt = w.User.HiredAt
		s.TeamCount = w.TeamCount
		out = append(out, s)
	}
	sortBySubjectID(out)
	return out
}

// LeaderSummaries joins leader profiles with the outcomes of the teams they lead.
func LeaderSummaries(leaders []domain.LeaderProfile, counts map[string]domain.OutcomeCounts) []EfficiencySummary {
	out := make([]EfficiencySummary, 0, len(leaders))
	seen := make(map[string]bool, len(leaders))
	for _, l := range leaders {
		if seen[l.User.ID] {
			continue
		}
		seen[l.User.ID] = true

		s := newEfficiencySummary(domain.SubjectLeader, l.User.ID, counts[l.User.ID])
		s.Name = l.User.FullName()
		s.Status = l.User.Status
		s.HiredAt = l.User.HiredAt
		s.TeamsCount = l.TeamsCount
		s.EmployeesCount = l.EmployeesCount
		out = append(out, s)
	}
	sortBySubjectID(out)
	return out
}

// TeamSummaries joins team profiles with their outcome counts.
func TeamSummaries(teams []domain.TeamProfile, counts map[string]domain.OutcomeCounts) []EfficiencySummary {
	out := make([]EfficiencySummary, 0, len(teams))
	for _, t := range teams {
		s := newEfficiencySummary(domain.SubjectTeam, t.Team.ID, counts[t.Team.ID])
		s.Name = t.Team.Name
		s.MembersCount = t.MembersCount
		s.LeaderName = t.LeaderName
		out = append(out, s)
	}
	sortBySubjectID(out)
	return out
}

// sortBySubjectID imposes the total order required before paging.
func sortBySubjectID(items []EfficiencySummary) {
	slices.SortStableFunc(items, func(a, b EfficiencySummary) int {
		return cmp.Compare(a.SubjectID, b.SubjectID)
	})
}
