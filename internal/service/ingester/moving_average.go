package ingester

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainstats-backend/internal/model"
	"github.com/goodnatureofminers/chainstats-backend/pkg/safe"
)

// updateMovingAverage averages the most recent daily counts and stores the result under today's
// UTC date. Nothing is written while no daily counts exist.
func (p *Pipeline) updateMovingAverage(ctx context.Context, report *Report) error {
	counts, err := p.store.RecentDailyTxCounts(ctx, MovingAverageWindow)
	if err != nil {
		return fmt.Errorf("read daily tx counts: %w", err)
	}
	if len(counts) == 0 {
		p.logger.Info("no daily tx counts yet; moving average skipped")
		return nil
	}

	avg, err := movingAverage(counts)
	if err != nil {
		return err
	}
	avg.Date = model.Day(p.now())

	if err := p.store.UpsertMovingAverage(ctx, avg); err != nil {
		return fmt.Errorf("store moving average: %w", err)
	}
	report.MovingAverage = &avg
	p.logger.Debug("moving average stored", zap.Float64("value", avg.Value), zap.Uint8("samples", avg.SampleCount))
	return nil
}

// movingAverage returns the arithmetic mean of counts over the number of rows given.
func movingAverage(counts []model.DailyTxCount) (model.MovingAverage, error) {
	samples, err := safe.Uint8(len(counts))
	if err != nil {
		return model.MovingAverage{}, fmt.Errorf("moving average samples: %w", err)
	}
	var sum float64
	for _, c := range counts {
		sum += float64(c.TxCount)
	}
	return model.MovingAverage{
		Value:       sum / float64(len(counts)),
		SampleCount: samples,
	}, nil
}
