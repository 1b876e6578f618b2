package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainstats-backend/internal/model"
	"github.com/goodnatureofminers/chainstats-backend/pkg/safe"
)

type feeEstimateRow struct {
	BlockTarget int32     `db:"block_target"`
	FeeRate     float64   `db:"fee_rate"`
	EstimatedAt time.Time `db:"estimated_at"`
}

// UpsertFeeEstimate replaces the estimate stored for the confirmation target.
func (r *Repository) UpsertFeeEstimate(ctx context.Context, fee model.FeeEstimate) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert_fee_estimate", err, start)
	}()

	const query = `
INSERT INTO fee_estimations (block_target, fee_rate, estimated_at, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (block_target) DO UPDATE SET
	fee_rate = EXCLUDED.fee_rate,
	estimated_at = EXCLUDED.estimated_at,
	updated_at = EXCLUDED.updated_at`

	if _, err = r.db.ExecContext(ctx, query, int32(fee.BlockTarget), fee.FeeRate, fee.EstimatedAt.UTC()); err != nil {
		return fmt.Errorf("upsert fee estimate for target %d: %w", fee.BlockTarget, err)
	}
	return nil
}

// FeeEstimates returns every stored estimate ordered by confirmation target.
func (r *Repository) FeeEstimates(ctx context.Context) (fees []model.FeeEstimate, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("fee_estimates", err, start)
	}()

	const query = `
SELECT block_target, fee_rate, estimated_at
FROM fee_estimations
ORDER BY block_target`

	var rows []feeEstimateRow
	if err = r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query fee estimates: %w", err)
	}

	fees = make([]model.FeeEstimate, 0, len(rows))
	for _, row := range rows {
		target, convErr := safe.Uint16(row.BlockTarget)
		if convErr != nil {
			return nil, fmt.Errorf("decode fee estimate target: %w", convErr)
		}
		fees = append(fees, model.FeeEstimate{
			BlockTarget: target,
			FeeRate:     row.FeeRate,
			EstimatedAt: row.EstimatedAt.UTC(),
		})
	}
	return fees, nil
}
