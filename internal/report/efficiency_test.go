package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/farmops/internal/domain"
	"github.com/mtlprog/farmops/internal/report"
)

func TestOutcomeCounts_EfficiencyRate(t *testing.T) {
	cases := []struct {
		name   string
		counts domain.OutcomeCounts
		want   float64
	}{
		{"nothing finished", domain.OutcomeCounts{}, 0},
		{"only failures", domain.OutcomeCounts{Failed: 3}, 0},
		{"all accepted", domain.OutcomeCounts{Accepted: 4}, 1},
		{"terminated counts as completed", domain.OutcomeCounts{Terminated: 1, Failed: 1}, 0.5},
		{"mixed", domain.OutcomeCounts{Accepted: 2, Terminated: 1, Failed: 1}, 0.75},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rate := tc.counts.EfficiencyRate()

			assert.InDelta(t, tc.want, rate, 1e-9)
			assert.GreaterOrEqual(t, rate, 0.0)
			assert.LessOrEqual(t, rate, 1.0)
		})
	}
}

func TestWorkerSummaries_SortedWithZeroDefaults(t *testing.T) {
	workers := []domain.WorkerProfile{
		{User: domain.User{ID: "u-b", FirstName: "Bea", LastName: "Stone", Status: "ACTIVE"}, TeamCount: 2},
		{User: domain.User{ID: "u-a", FirstName: "Al", LastName: "Moss", Status: "ACTIVE"}, TeamCount: 1},
	}
	counts := map[string]domain.OutcomeCounts{
		"u-b": {Accepted: 3, Terminated: 1, Failed: 4},
	}

	out := report.WorkerSummaries(workers, counts)

	require.Len(t, out, 2)
	assert.Equal(t, "u-a", out[0].SubjectID)
	assert.Equal(t, "Al Moss", out[0].Name)
	assert.Equal(t, 0, out[0].TasksCount)
	assert.Zero(t, out[0].EfficiencyRate)
	assert.Equal(t, 1, out[0].TeamCount)

	assert.Equal(t, "u-b", out[1].SubjectID)
	assert.Equal(t, 3, out[1].AcceptedCount)
	assert.Equal(t, 1, out[1].TerminatedCount)
	assert.Equal(t, 4, out[1].FailedCount)
	assert.Equal(t, 4, out[1].TasksCount)
	assert.InDelta(t, 0.5, out[1].EfficiencyRate, 1e-9)
	assert.Equal(t, domain.SubjectWorker, out[1].Kind)
}

func TestLeaderSummaries_DeduplicatesLeaders(t *testing.T) {
	leader := domain.User{ID: "l-1", FirstName: "Lee", LastName: "Park"}
	leaders := []domain.LeaderProfile{
		{User: leader, TeamsCount: 2, EmployeesCount: 5},
		{User: leader, TeamsCount: 2, EmployeesCount: 5},
		{User: domain.User{ID: "l-0", FirstName: "Ann"}, TeamsCount: 1, EmployeesCount: 3},
	}

	out := report.LeaderSummaries(leaders, map[string]domain.OutcomeCounts{"l-1": {Accepted: 1}})

	require.Len(t, out, 2)
	assert.Equal(t, "l-0", out[0].SubjectID)
	assert.Equal(t, "Ann", out[0].Name)
	assert.Equal(t, "l-1", out[1].SubjectID)
	assert.Equal(t, 2, out[1].TeamsCount)
	assert.Equal(t, 5, out[1].EmployeesCount)
	assert.InDelta(t, 1.0, out[1].EfficiencyRate, 1e-9)
}

func TestTeamSummaries_CarryMembership(t *testing.T) {
	teams := []domain.TeamProfile{
		{Team: domain.Team{ID: "t-1", Name: "North Field"}, LeaderName: "Lee Park", MembersCount: 4},
	}

	out := report.TeamSummaries(teams, map[string]domain.OutcomeCounts{"t-1": {Failed: 2}})

	require.Len(t, out, 1)
	assert.Equal(t, "North Field", out[0].Name)
	assert.Equal(t, "Lee Park", out[0].LeaderName)
	assert.Equal(t, 4, out[0].MembersCount)
	assert.Equal(t, 2, out[0].FailedCount)
	assert.Zero(t, out[0].EfficiencyRate)
}

func TestNormalizeFilter(t *testing.T) {
	assert.Equal(t, "", report.NormalizeFilter("all"))
	assert.Equal(t, "", report.NormalizeFilter(" ALL "))
	assert.Equal(t, "", report.NormalizeFilter("   "))
	assert.Equal(t, "ResA", report.NormalizeFilter(" ResA"))
}
