package recalc_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/mtlprog/farmops/internal/domain"
	"github.com/mtlprog/farmops/internal/recalc"
)

// fakeStore implements OutcomeCounter and ScoreStore in memory.
type fakeStore struct {
	mu sync.Mutex

	users  map[string]domain.User
	teams  map[string]domain.Team
	counts map[string]domain.OutcomeCounts

	// failures[id] transient errors are returned before the store recovers.
	failures map[string]int
	calls    map[string]int

	userScores map[string]float64
	teamScores map[string]float64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[string]domain.User),
		teams:      make(map[string]domain.Team),
		counts:     make(map[string]domain.OutcomeCounts),
		failures:   make(map[string]int),
		calls:      make(map[string]int),
		userScores: make(map[string]float64),
		teamScores: make(map[string]float64),
	}
}

var errTransient = errors.New("connection reset by peer")

func (f *fakeStore) count(ids []string) (map[string]domain.OutcomeCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]domain.OutcomeCounts)
	for _, id := range ids {
		f.calls[id]++
		if f.failures[id] > 0 {
			f.failures[id]--
			return nil, errTransient
		}
		out[id] = f.counts[id]
	}
	return out, nil
}

func (f *fakeStore) CountWorkerOutcomes(_ context.Context, _ domain.Window, ids []string) (map[string]domain.OutcomeCounts, error) {
	return f.count(ids)
}

func (f *fakeStore) CountLeaderOutcomes(_ context.Context, _ domain.Window, ids []string) (map[string]domain.OutcomeCounts, error) {
	f.mu.Lock()
	for _, id := range ids {
		f.counts["leader:"+id] = f.counts[id]
	}
	f.mu.Unlock()
	return f.count(ids)
}

func (f *fakeStore) CountTeamOutcomes(_ context.Context, _ domain.Window, ids []string) (map[string]domain.OutcomeCounts, error) {
	return f.count(ids)
}

func (f *fakeStore) GetUser(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeStore) GetTeam(_ context.Context, id string) (*domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	return &t, nil
}

func (f *fakeStore) UpdateUserEfficiency(_ context.Context, id string, score float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	f.userScores[id] = score
	return nil
}

func (f *fakeStore) UpdateTeamEfficiency(_ context.Context, id string, score float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.teams[id]; !ok {
		return domain.ErrTeamNotFound
	}
	f.teamScores[id] = score
	return nil
}

func (f *fakeStore) userScore(id string) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.userScores[id]
	return s, ok
}

func (f *fakeStore) usedLeaderCounts(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.counts["leader:"+id]
	return ok
}

func worker(id string) domain.SubjectRef {
	return domain.SubjectRef{Kind: domain.SubjectWorker, ID: id}
}

func team(id string) domain.SubjectRef {
	return domain.SubjectRef{Kind: domain.SubjectTeam, ID: id}
}

func seededStore() *fakeStore {
	store := newFakeStore()
	leaderID := "lead-1"
	store.users["w-1"] = domain.User{ID: "w-1", Role: domain.UserRoleWorker}
	store.users["w-2"] = domain.User{ID: "w-2", Role: domain.UserRoleWorker}
	store.users[leaderID] = domain.User{ID: leaderID, Role: domain.UserRoleLeader}
	store.teams["team-1"] = domain.Team{ID: "team-1", LeaderID: &leaderID}

	store.counts["w-1"] = domain.OutcomeCounts{Accepted: 3, Failed: 1}
	store.counts["w-2"] = domain.OutcomeCounts{Terminated: 1, Failed: 1}
	store.counts[leaderID] = domain.OutcomeCounts{Accepted: 1}
	store.counts["team-1"] = domain.OutcomeCounts{Accepted: 1, Failed: 3}
	return store
}

func fastRecalculator(store *fakeStore) *recalc.Recalculator {
	return recalc.NewRecalculator(store, store, recalc.WithRetry(3, time.Millisecond))
}

func TestRecalculator(t *testing.T) {
	convey.Convey("Given a recalculator over a seeded store", t, func() {
		store := seededStore()
		r := fastRecalculator(store)
		ctx := context.Background()

		convey.Convey("When a worker is recalculated", func() {
			kind, score, err := r.Recalculate(ctx, worker("w-1"))

			convey.Convey("Then the all-time rate is persisted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(kind, convey.ShouldEqual, domain.SubjectWorker)
				convey.So(score, convey.ShouldEqual, 0.75)
				stored, ok := store.userScore("w-1")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(stored, convey.ShouldEqual, 0.75)
			})
		})

		convey.Convey("When a leader is named as a worker", func() {
			kind, _, err := r.Recalculate(ctx, worker("lead-1"))

			convey.Convey("Then the user's role selects leader counts", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(kind, convey.ShouldEqual, domain.SubjectLeader)
				convey.So(store.usedLeaderCounts("lead-1"), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a worker is named as a leader", func() {
			kind, score, err := r.Recalculate(ctx, domain.SubjectRef{Kind: domain.SubjectLeader, ID: "w-2"})

			convey.Convey("Then the user's role keeps worker counts", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(kind, convey.ShouldEqual, domain.SubjectWorker)
				convey.So(score, convey.ShouldEqual, 0.5)
				convey.So(store.usedLeaderCounts("w-2"), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a team is recalculated", func() {
			_, score, err := r.Recalculate(ctx, team("team-1"))

			convey.So(err, convey.ShouldBeNil)
			convey.So(score, convey.ShouldEqual, 0.25)
			convey.So(store.teamScores["team-1"], convey.ShouldEqual, 0.25)
		})

		convey.Convey("When the subject no longer exists", func() {
			_, _, err := r.Recalculate(ctx, worker("gone"))

			convey.Convey("Then it fails with not found and is not retried", func() {
				convey.So(domain.IsNotFound(err), convey.ShouldBeTrue)
				convey.So(store.calls["gone"], convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the store fails transiently", func() {
			store.failures["w-2"] = 2
			_, score, err := r.Recalculate(ctx, worker("w-2"))

			convey.Convey("Then the recalculation is retried until it succeeds", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(score, convey.ShouldEqual, 0.5)
				convey.So(store.calls["w-2"], convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the store keeps failing", func() {
			store.failures["w-2"] = 100
			_, _, err := r.Recalculate(ctx, worker("w-2"))

			convey.Convey("Then the error surfaces after the retry budget", func() {
				convey.So(errors.Is(err, errTransient), convey.ShouldBeTrue)
				convey.So(store.calls["w-2"], convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the subject kind is unknown", func() {
			_, _, err := r.Recalculate(ctx, domain.SubjectRef{Kind: "PLOT", ID: "p-1"})

			convey.So(errors.Is(err, domain.ErrUnknownSubject), convey.ShouldBeTrue)
		})
	})
}

func TestProcessor(t *testing.T) {
	convey.Convey("Given a processor", t, func() {
		store := seededStore()
		processor := recalc.NewProcessor(fastRecalculator(store))
		ctx := context.Background()

		convey.Convey("When a job mixes healthy, missing and failing subjects", func() {
			store.failures["w-2"] = 100
			job := recalc.NewJob(recalc.ReasonUpdate, "task-1",
				worker("w-1"), worker("gone"), worker("w-2"), team("team-1"))

			result, err := processor.Process(ctx, job)

			convey.Convey("Then every subject is attempted independently", func() {
				convey.So(result.Updated, convey.ShouldEqual, 3) // w-1, team-1, lead-1
				convey.So(result.NotFound, convey.ShouldEqual, 1)
				convey.So(result.Failed, convey.ShouldEqual, 1)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, errTransient), convey.ShouldBeTrue)
			})

			convey.Convey("And the team's leader is recalculated too", func() {
				_, ok := store.userScore("lead-1")
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a user is named twice", func() {
			job := recalc.NewJob(recalc.ReasonReview, "task-2",
				worker("lead-1"), team("team-1"))

			result, err := processor.Process(ctx, job)

			convey.Convey("Then it is recalculated once", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(result.Updated, convey.ShouldEqual, 2)
			})
		})
	})
}

func TestNewJob(t *testing.T) {
	convey.Convey("Given subjects with duplicates and blanks", t, func() {
		job := recalc.NewJob(recalc.ReasonDelete, "task-1",
			worker("w-1"), worker("w-1"), worker(""), team("team-1"),
			domain.SubjectRef{Kind: "PLOT", ID: "p"})

		convey.So(job.ID, convey.ShouldNotBeEmpty)
		convey.So(job.Subjects, convey.ShouldResemble, []domain.SubjectRef{worker("w-1"), team("team-1")})
	})

	convey.Convey("Given a task with assignees and a team", t, func() {
		teamID := "team-1"
		refs := recalc.TaskSubjects(&domain.Task{AssigneeIDs: []string{"w-1", "w-2"}, TeamID: &teamID})

		convey.So(refs, convey.ShouldResemble, []domain.SubjectRef{worker("w-1"), worker("w-2"), team("team-1")})
	})
}

func TestDecodeJob(t *testing.T) {
	convey.Convey("Given malformed payloads", t, func() {
		_, err := recalc.DecodeJob([]byte("not json"))
		convey.So(err, convey.ShouldNotBeNil)

		_, err = recalc.DecodeJob([]byte(`{"reason":"update"}`))
		convey.So(err, convey.ShouldNotBeNil)
	})

	convey.Convey("Given a published job", t, func() {
		job, err := recalc.DecodeJob([]byte(`{"id":"j-1","reason":"review","subjects":[{"kind":"TEAM","id":"team-1"}]}`))

		convey.So(err, convey.ShouldBeNil)
		convey.So(job.Reason, convey.ShouldEqual, recalc.ReasonReview)
		convey.So(job.Subjects, convey.ShouldResemble, []domain.SubjectRef{team("team-1")})
	})
}
