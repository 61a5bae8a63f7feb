package recalc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
)

// Source delivers jobs to a Pool. The channel closes when the source is exhausted.
type Source interface {
	Dequeue(ctx context.Context) <-chan Job
}

// JobHandler processes a single job.
type JobHandler interface {
	Process(ctx context.Context, job Job) (Result, error)
}

// Pool runs a fixed number of workers over one Source.
type Pool struct {
	size    int
	source  Source
	handler JobHandler

	wg   sync.WaitGroup
	stop context.CancelFunc
}

// NewPool creates a worker pool. A non-positive size uses runtime.NumCPU().
func NewPool(size int, source Source, handler JobHandler) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	return &Pool{size: size, source: source, handler: handler}
}

// Start launches the workers. Jobs are processed with a context derived from
// ctx, never from the request that fired them.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.stop = context.WithCancel(ctx)
	jobs := p.source.Dequeue(ctx)

	for i := range p.size {
		p.wg.Add(1)
		go p.run(ctx, i, jobs)
	}

	slog.Info("recalculation workers started", "workers", p.size)
}

func (p *Pool) run(ctx context.Context, id int, jobs <-chan Job) {
	defer p.wg.Done()

	for job := range jobs {
		if _, err := p.handler.Process(ctx, job); err != nil {
			slog.Error("recalculation job finished with errors",
				"worker", id,
				"job_id", job.ID,
				"error", err,
			)
		}
	}
}

// Shutdown closes the source, lets workers drain it and waits for them.
// When ctx expires first, in-flight jobs are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.source.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			slog.Error("error closing recalculation source", "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if p.stop != nil {
			p.stop()
		}
		slog.Info("recalculation workers stopped")
		return nil
	case <-ctx.Done():
		if p.stop != nil {
			p.stop()
		}
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
