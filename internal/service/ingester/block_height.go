package ingester

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/chainstats-backend/internal/model"
)

// refreshBlockHeight stores the node tip. The fetched tip is kept in the report even when the
// write fails so the aggregation step can reuse it.
func (p *Pipeline) refreshBlockHeight(ctx context.Context, report *Report) error {
	height, err := p.source.BlockHeight(ctx)
	if err != nil {
		return fmt.Errorf("fetch block height: %w", err)
	}
	report.Height = height
	report.HeightKnown = true

	if err := p.store.UpsertBlockHeight(ctx, model.BlockHeight{Height: height, UpdatedAt: p.now()}); err != nil {
		return fmt.Errorf("store block height %d: %w", height, err)
	}
	return nil
}
