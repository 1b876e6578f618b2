package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainstats-backend/internal/model"
)

// UpsertFeeEstimate replaces the estimate stored for the confirmation target.
func (r *Repository) UpsertFeeEstimate(ctx context.Context, fee model.FeeEstimate) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert_fee_estimate", err, start)
	}()

	const query = `
INSERT INTO fee_estimations (block_target, fee_rate, estimated_at)
VALUES (?, ?, toDateTime64(?, 3, 'UTC'))`

	if err = r.conn.Exec(ctx, query, fee.BlockTarget, fee.FeeRate, formatDateTime(fee.EstimatedAt)); err != nil {
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
FROM fee_estimations FINAL
ORDER BY block_target`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query fee estimates: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	fees = make([]model.FeeEstimate, 0)
	for rows.Next() {
		var f model.FeeEstimate
		if err = rows.Scan(&f.BlockTarget, &f.FeeRate, &f.EstimatedAt); err != nil {
			return nil, fmt.Errorf("scan fee estimate: %w", err)
		}
		f.EstimatedAt = f.EstimatedAt.UTC()
		fees = append(fees, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fee estimates: %w", err)
	}
	return fees, nil
}
