package ingester

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainstats-backend/internal/chain"
	"github.com/goodnatureofminers/chainstats-backend/internal/model"
)

// sweepFees estimates and stores the fee rate for every confirmation target. Per-target failures
// are logged and recorded in the report; the sweep itself only fails when ctx is done.
func (p *Pipeline) sweepFees(ctx context.Context, report *Report) error {
	for _, target := range feeTargets {
		if err := ctx.Err(); err != nil {
			return err
		}
		result := FeeResult{Target: target}
		logger := p.logger.With(zap.Uint16("target", target))

		rate, err := p.source.EstimateFee(ctx, target)
		if err != nil {
			result.Err = err
			p.metrics.ObserveFeeTarget(target, err)
			report.Fees = append(report.Fees, result)
			if errors.Is(err, chain.ErrFeeUnavailable) {
				logger.Info("fee estimate unavailable", zap.Error(err))
			} else {
				logger.Warn("fee estimate failed", zap.Error(err))
			}
			continue
		}
		result.FeeRate = rate

		fee := model.FeeEstimate{BlockTarget: target, FeeRate: rate, EstimatedAt: p.now()}
		if err := p.store.UpsertFeeEstimate(ctx, fee); err != nil {
			result.Err = fmt.Errorf("store fee estimate: %w", err)
			logger.Error("store fee estimate failed", zap.Float64("fee_rate", rate), zap.Error(err))
		}
		p.metrics.ObserveFeeTarget(target, result.Err)
		report.Fees = append(report.Fees, result)
	}
	return nil
}
