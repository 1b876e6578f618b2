package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainstats-backend/internal/model"
)

// blockInfoID is the key of the singleton block_info row.
const blockInfoID uint8 = 1

// UpsertBlockHeight replaces the stored block height.
func (r *Repository) UpsertBlockHeight(ctx context.Context, height model.BlockHeight) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert_block_height", err, start)
	}()

	const query = `
INSERT INTO block_info (id, block_height, updated_at)
VALUES (?, ?, toDateTime64(?, 3, 'UTC'))`

	if err = r.conn.Exec(ctx, query, blockInfoID, height.Height, formatDateTime(height.UpdatedAt)); err != nil {
		return fmt.Errorf("upsert block height: %w", err)
	}
	return nil
}

// LatestBlockHeight returns the stored block height. found is false when nothing was stored yet.
func (r *Repository) LatestBlockHeight(ctx context.Context) (height uint64, found bool, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("latest_block_height", err, start)
	}()

	const query = `
SELECT block_height
FROM block_info FINAL
WHERE id = ?`

	rows, err := r.conn.Query(ctx, query, blockInfoID)
	if err != nil {
		return 0, false, fmt.Errorf("query block height: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return 0, false, fmt.Errorf("iterate block height: %w", err)
		}
		return 0, false, nil
	}
	if err = rows.Scan(&height); err != nil {
		return 0, false, fmt.Errorf("scan block height: %w", err)
	}
	if err = rows.Err(); err != nil {
		return 0, false, fmt.Errorf("iterate block height: %w", err)
	}
	return height, true, nil
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format(datetimeLayout)
}
