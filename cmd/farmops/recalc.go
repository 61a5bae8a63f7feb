package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/multierr"

	"github.com/mtlprog/farmops/internal/config"
	"github.com/mtlprog/farmops/internal/recalc"
	"github.com/mtlprog/farmops/internal/repository"
)

func newProcessor(cfg config.RecalcConfig, pool *pgxpool.Pool) *recalc.Processor {
	recalculator := recalc.NewRecalculator(
		repository.NewReportRepository(pool),
		repository.NewSubjectRepository(pool),
		recalc.WithRetry(cfg.MaxRetries, cfg.RetryBase),
	)
	return recalc.NewProcessor(recalculator)
}

// newTrigger wires the recalculation trigger for cfg.Mode. The returned stop
// func drains background workers and releases transport resources.
func newTrigger(ctx context.Context, cfg config.RecalcConfig, pool *pgxpool.Pool) (recalc.Trigger, func(context.Context) error, error) {
	processor := newProcessor(cfg, pool)
	inline := recalc.NewInlineTrigger(processor)

	switch cfg.Mode {
	case config.RecalcModeInline:
		return inline, func(context.Context) error { return nil }, nil

	case config.RecalcModeQueue:
		queue := recalc.NewInMemoryQueue(recalc.WithCapacity(cfg.QueueSize))
		workers := recalc.NewPool(cfg.Workers, queue, processor)
		workers.Start(ctx)
		return recalc.NewQueueTrigger(queue, inline), workers.Shutdown, nil

	case config.RecalcModeKafka:
		publisher := recalc.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		consumer := recalc.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup)
		workers := recalc.NewPool(cfg.Workers, consumer, processor)
		workers.Start(ctx)

		stop := func(ctx context.Context) error {
			return multierr.Combine(workers.Shutdown(ctx), publisher.Close())
		}
		return recalc.NewKafkaTrigger(publisher, inline, cfg.PublishTimeout), stop, nil

	default:
		return nil, nil, fmt.Errorf("%w: recalc mode %q", config.ErrInvalidConfig, cfg.Mode)
	}
}
