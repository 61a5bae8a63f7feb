package recalc_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/mtlprog/farmops/internal/recalc"
)

// recordingHandler remembers processed jobs and the state of their context.
type recordingHandler struct {
	mu        sync.Mutex
	jobs      []recalc.Job
	cancelled []bool
}

func (h *recordingHandler) Process(ctx context.Context, job recalc.Job) (recalc.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.jobs = append(h.jobs, job)
	h.cancelled = append(h.cancelled, ctx.Err() != nil)
	return recalc.Result{Updated: len(job.Subjects)}, nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.jobs)
}

type failingPublisher struct {
	err   error
	calls int
}

func (p *failingPublisher) Publish(_ context.Context, _ recalc.Job) error {
	p.calls++
	return p.err
}

func sampleJob() recalc.Job {
	return recalc.NewJob(recalc.ReasonUpdate, "task-1", worker("w-1"), team("team-1"))
}

func TestInMemoryQueue(t *testing.T) {
	convey.Convey("Given a queue with capacity 2", t, func() {
		q := recalc.NewInMemoryQueue(recalc.WithCapacity(2))
		ctx := context.Background()

		convey.Convey("When it is filled", func() {
			convey.So(q.Enqueue(ctx, sampleJob()), convey.ShouldBeTrue)
			convey.So(q.Enqueue(ctx, sampleJob()), convey.ShouldBeTrue)

			convey.Convey("Then further jobs are rejected without blocking", func() {
				convey.So(q.Enqueue(ctx, sampleJob()), convey.ShouldBeFalse)
				convey.So(q.Len(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When it is closed", func() {
			convey.So(q.Enqueue(ctx, sampleJob()), convey.ShouldBeTrue)
			convey.So(q.Close(), convey.ShouldBeNil)

			convey.Convey("Then queued jobs drain and new ones are rejected", func() {
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(q.Enqueue(ctx, sampleJob()), convey.ShouldBeFalse)

				var drained int
				for range q.Dequeue(ctx) {
					drained++
				}
				convey.So(drained, convey.ShouldEqual, 1)
				convey.So(q.Close(), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over an in-memory queue", t, func() {
		q := recalc.NewInMemoryQueue(recalc.WithCapacity(16))
		handler := &recordingHandler{}
		pool := recalc.NewPool(3, q, handler)
		pool.Start(context.Background())

		convey.Convey("When jobs are queued and the pool shuts down", func() {
			for range 5 {
				convey.So(q.Enqueue(context.Background(), sampleJob()), convey.ShouldBeTrue)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			err := pool.Shutdown(shutdownCtx)

			convey.Convey("Then every queued job is processed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(handler.count(), convey.ShouldEqual, 5)
			})
		})
	})
}

func TestTriggers(t *testing.T) {
	convey.Convey("Given an inline trigger", t, func() {
		handler := &recordingHandler{}
		inline := recalc.NewInlineTrigger(handler)

		convey.Convey("When fired with a cancelled request context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			inline.Fire(ctx, sampleJob())

			convey.Convey("Then the job still runs on a detached context", func() {
				convey.So(handler.count(), convey.ShouldEqual, 1)
				convey.So(handler.cancelled[0], convey.ShouldBeFalse)
			})
		})

		convey.Convey("When fired with no subjects", func() {
			inline.Fire(context.Background(), recalc.NewJob(recalc.ReasonUpdate, "task-1"))

			convey.So(handler.count(), convey.ShouldEqual, 0)
		})

		convey.Convey("And a queue trigger over a full queue", func() {
			q := recalc.NewInMemoryQueue(recalc.WithCapacity(1))
			trigger := recalc.NewQueueTrigger(q, inline)

			trigger.Fire(context.Background(), sampleJob())
			trigger.Fire(context.Background(), sampleJob())

			convey.Convey("Then the overflow job runs inline", func() {
				convey.So(q.Len(), convey.ShouldEqual, 1)
				convey.So(handler.count(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("And a Kafka trigger whose publish fails", func() {
			publisher := &failingPublisher{err: errors.New("broker unavailable")}
			trigger := recalc.NewKafkaTrigger(publisher, inline, 0)

			trigger.Fire(context.Background(), sampleJob())

			convey.Convey("Then the job runs inline", func() {
				convey.So(publisher.calls, convey.ShouldEqual, 1)
				convey.So(handler.count(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("And a Kafka trigger whose publish succeeds", func() {
			publisher := &failingPublisher{}
			trigger := recalc.NewKafkaTrigger(publisher, inline, time.Second)

			trigger.Fire(context.Background(), sampleJob())

			convey.So(publisher.calls, convey.ShouldEqual, 1)
			convey.So(handler.count(), convey.ShouldEqual, 0)
		})
	})
}
