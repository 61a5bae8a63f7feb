package recalc

import (
	"context"
	"log/slog"
	"time"

	"github.com/mtlprog/farmops/internal/metrics"
)

// Dispatch paths recorded per job.
const (
	pathInline    = "inline"
	pathQueued    = "queued"
	pathPublished = "published"
	pathFallback  = "fallback"
)

// DefaultPublishTimeout bounds a Kafka publish before the job falls back to inline processing.
const DefaultPublishTimeout = 2 * time.Second

// Trigger fires a recalculation job. Fire never fails: recalculation is a
// best-effort side effect of the mutation that produced the job.
type Trigger interface {
	Fire(ctx context.Context, job Job)
}

// Publisher hands a job to an external transport.
type Publisher interface {
	Publish(ctx context.Context, job Job) error
}

// Enqueuer accepts a job without blocking.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) bool
}

// InlineTrigger processes jobs on the caller's goroutine.
type InlineTrigger struct {
	handler JobHandler
}

// NewInlineTrigger creates a new InlineTrigger.
func NewInlineTrigger(handler JobHandler) *InlineTrigger {
	return &InlineTrigger{handler: handler}
}

// Fire processes job synchronously. Cancellation of ctx does not abort it.
func (t *InlineTrigger) Fire(ctx context.Context, job Job) {
	metrics.RecordRecalcJob(pathInline)
	t.run(ctx, job)
}

func (t *InlineTrigger) run(ctx context.Context, job Job) {
	if len(job.Subjects) == 0 {
		return
	}
	if _, err := t.handler.Process(context.WithoutCancel(ctx), job); err != nil {
		slog.Error("recalculation job finished with errors",
			"job_id", job.ID,
			"error", err,
		)
	}
}

// QueueTrigger hands jobs to an in-memory queue served by a Pool.
// A full or closed queue falls back to inline processing.
type QueueTrigger struct {
	queue    Enqueuer
	fallback *InlineTrigger
}

// NewQueueTrigger creates a new QueueTrigger.
func NewQueueTrigger(queue Enqueuer, fallback *InlineTrigger) *QueueTrigger {
	return &QueueTrigger{queue: queue, fallback: fallback}
}

// Fire enqueues job, or processes it inline when the queue rejects it.
func (t *QueueTrigger) Fire(ctx context.Context, job Job) {
	if len(job.Subjects) == 0 {
		return
	}
	if t.queue.Enqueue(context.WithoutCancel(ctx), job) {
		metrics.RecordRecalcJob(pathQueued)
		return
	}

	slog.Warn("recalculation queue rejected job, processing inline", "job_id", job.ID)
	metrics.RecordRecalcJob(pathFallback)
	t.fallback.run(ctx, job)
}

// KafkaTrigger publishes jobs to a topic consumed by a Pool.
// A failed publish falls back to inline processing.
type KafkaTrigger struct {
	publisher Publisher
	fallback  *InlineTrigger
	timeout   time.Duration
}

// NewKafkaTrigger creates a new KafkaTrigger.
func NewKafkaTrigger(publisher Publisher, fallback *InlineTrigger, timeout time.Duration) *KafkaTrigger {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &KafkaTrigger{publisher: publisher, fallback: fallback, timeout: timeout}
}

// Fire publishes job, or processes it inline when publishing fails.
func (t *KafkaTrigger) Fire(ctx context.Context, job Job) {
	if len(job.Subjects) == 0 {
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
	defer cancel()

	err := t.publisher.Publish(publishCtx, job)
	if err == nil {
		metrics.RecordRecalcJob(pathPublished)
		return
	}

	slog.Warn("recalculation job publish failed, processing inline",
		"job_id", job.ID,
		"error", err,
	)
	metrics.RecordRecalcJob(pathFallback)
	t.fallback.run(ctx, job)
}
