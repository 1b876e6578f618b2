// Package ingester pulls chain metrics from a node and reconciles them into the metrics store.
package ingester

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainstats-backend/internal/clock"
	"github.com/goodnatureofminers/chainstats-backend/internal/model"
)

// Config tunes a Pipeline.
type Config struct {
	Network model.Network
	// BackfillDays is the number of day windows aggregated per run, 1..MaxBackfillDays.
	BackfillDays int
	// FetchWorkers bounds concurrent block fetches within a day window.
	FetchWorkers int
}

// Pipeline runs block-height refresh, transaction aggregation, moving average and fee sweep.
type Pipeline struct {
	source       Source
	store        Store
	metrics      Metrics
	logger       *zap.Logger
	now          func() time.Time
	sleep        func(context.Context, time.Duration) error
	backfillDays int
	fetchWorkers int
}

// NewPipeline builds a Pipeline with the given dependencies.
func NewPipeline(source Source, store Store, metrics Metrics, cfg Config, logger *zap.Logger) (*Pipeline, error) {
	if source == nil {
		return nil, errors.New("ingester source is required")
	}
	if store == nil {
		return nil, errors.New("ingester store is required")
	}
	if metrics == nil {
		return nil, errors.New("ingester metrics is required")
	}

	days := cfg.BackfillDays
	if days == 0 {
		days = defaultBackfillDays
	}
	if days < 1 || days > MaxBackfillDays {
		return nil, fmt.Errorf("backfill days must be within 1..%d, got %d", MaxBackfillDays, cfg.BackfillDays)
	}
	workers := cfg.FetchWorkers
	if workers < 1 {
		workers = defaultFetchWorkers
	}

	return &Pipeline{
		source:       source,
		store:        store,
		metrics:      metrics,
		logger:       logger.With(zap.String("network", string(cfg.Network))),
		now:          clock.UTC,
		sleep:        clock.SleepWithContext,
		backfillDays: days,
		fetchWorkers: workers,
	}, nil
}

// Run executes every step once. A failing step is logged and recorded in the report and the
// remaining steps still run. The returned error is non-nil only when ctx is done.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{Started: p.now()}

	p.runStep(ctx, &report, StepBlockHeight, func(ctx context.Context) error {
		return p.refreshBlockHeight(ctx, &report)
	})
	if err := ctx.Err(); err != nil {
		return p.finish(report), err
	}

	p.runStep(ctx, &report, StepTxAggregation, func(ctx context.Context) error {
		return p.aggregateTransactions(ctx, &report)
	})
	if err := ctx.Err(); err != nil {
		return p.finish(report), err
	}

	p.runStep(ctx, &report, StepMovingAverage, func(ctx context.Context) error {
		return p.updateMovingAverage(ctx, &report)
	})
	if err := ctx.Err(); err != nil {
		return p.finish(report), err
	}

	p.runStep(ctx, &report, StepFeeSweep, func(ctx context.Context) error {
		return p.sweepFees(ctx, &report)
	})
	if err := ctx.Err(); err != nil {
		return p.finish(report), err
	}

	report = p.finish(report)
	p.logger.Info("ingestion run finished",
		zap.Bool("healthy", report.Healthy()),
		zap.Uint64("height", report.Height),
		zap.Int("days_written", len(report.DaysWritten)),
		zap.Int("blocks_skipped", report.BlocksSkipped),
		zap.Int("fees_written", report.FeesWritten()),
		zap.Duration("duration", report.Finished.Sub(report.Started)),
	)
	return report, nil
}

// Loop waits interval between runs until ctx is done, calling onReport after each completed run.
// It does not run immediately; callers perform the first Run themselves.
func (p *Pipeline) Loop(ctx context.Context, interval time.Duration, onReport func(Report)) error {
	if interval <= 0 {
		return fmt.Errorf("ingestion interval must be positive, got %s", interval)
	}
	for {
		if err := p.sleep(ctx, interval); err != nil {
			return err
		}
		report, err := p.Run(ctx)
		if err != nil {
			return err
		}
		if onReport != nil {
			onReport(report)
		}
	}
}

func (p *Pipeline) runStep(ctx context.Context, report *Report, step string, fn func(context.Context) error) {
	started := time.Now()
	err := fn(ctx)
	p.metrics.ObserveStep(step, err, started)
	report.Steps = append(report.Steps, StepResult{Step: step, Err: err, Duration: time.Since(started)})
	if err != nil && ctx.Err() == nil {
		p.logger.Error("ingestion step failed", zap.String("step", step), zap.Error(err))
	}
}

func (p *Pipeline) finish(report Report) Report {
	report.Finished = p.now()
	p.metrics.ObserveRun(report.Healthy(), report.Finished)
	return report
}
