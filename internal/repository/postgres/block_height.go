package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainstats-backend/internal/model"
	"github.com/goodnatureofminers/chainstats-backend/pkg/safe"
)

const blockInfoID = 1

// UpsertBlockHeight replaces the stored block height.
func (r *Repository) UpsertBlockHeight(ctx context.Context, height model.BlockHeight) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert_block_height", err, start)
	}()

	value, err := safe.Int64(height.Height)
	if err != nil {
		return fmt.Errorf("upsert block height: %w", err)
	}

	const query = `
INSERT INTO block_info (id, block_height, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET
	block_height = EXCLUDED.block_height,
	updated_at = EXCLUDED.updated_at`

	if _, err = r.db.ExecContext(ctx, query, blockInfoID, value, height.UpdatedAt.UTC()); err != nil {
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

	const query = `SELECT block_height FROM block_info WHERE id = $1`

	var value int64
	if err = r.db.GetContext(ctx, &value, query, blockInfoID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("query block height: %w", err)
	}
	if height, err = safe.Uint64(value); err != nil {
		return 0, false, fmt.Errorf("decode block height: %w", err)
	}
	return height, true, nil
}
