// Package memory keeps chain metrics in process memory. It backs --store=memory and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goodnatureofminers/chainstats-backend/internal/model"
)

// Metrics records repository operation outcomes.
type Metrics interface {
	Observe(operation string, err error, started time.Time)
}

// Repository is a map-backed metrics store. Every write replaces the row for its key.
type Repository struct {
	mu      sync.RWMutex
	metrics Metrics

	height   *model.BlockHeight
	daily    map[time.Time]model.DailyTxCount
	averages map[time.Time]model.MovingAverage
	fees     map[uint16]model.FeeEstimate
}

// NewRepository creates an empty store.
func NewRepository(metrics Metrics) *Repository {
	return &Repository{
		metrics:  metrics,
		daily:    make(map[time.Time]model.DailyTxCount),
		averages: make(map[time.Time]model.MovingAverage),
		fees:     make(map[uint16]model.FeeEstimate),
	}
}

// Ping always succeeds unless ctx is done.
func (r *Repository) Ping(ctx context.Context) error {
	defer r.observe("ping", time.Now())
	return ctx.Err()
}

// Close is a no-op.
func (r *Repository) Close() error {
	return nil
}

// UpsertBlockHeight replaces the stored block height.
func (r *Repository) UpsertBlockHeight(_ context.Context, height model.BlockHeight) error {
	defer r.observe("upsert_block_height", time.Now())

	r.mu.Lock()
	defer r.mu.Unlock()
	h := height
	r.height = &h
	return nil
}

// LatestBlockHeight returns the stored block height. found is false when nothing was stored yet.
func (r *Repository) LatestBlockHeight(_ context.Context) (uint64, bool, error) {
	defer r.observe("latest_block_height", time.Now())

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.height == nil {
		return 0, false, nil
	}
	return r.height.Height, true, nil
}

// UpsertDailyTxCount replaces the transaction count stored for the row date.
func (r *Repository) UpsertDailyTxCount(_ context.Context, count model.DailyTxCount) error {
	defer r.observe("upsert_daily_tx_count", time.Now())

	count.Date = model.Day(count.Date)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.daily[count.Date] = count
	return nil
}

// RecentDailyTxCounts returns up to limit rows ordered by date descending.
func (r *Repository) RecentDailyTxCounts(_ context.Context, limit int) ([]model.DailyTxCount, error) {
	defer r.observe("recent_daily_tx_counts", time.Now())

	r.mu.RLock()
	counts := make([]model.DailyTxCount, 0, len(r.daily))
	for _, c := range r.daily {
		counts = append(counts, c)
	}
	r.mu.RUnlock()

	sort.Slice(counts, func(i, j int) bool { return counts[i].Date.After(counts[j].Date) })
	return head(counts, limit), nil
}

// UpsertMovingAverage replaces the moving average stored for the row date.
func (r *Repository) UpsertMovingAverage(_ context.Context, avg model.MovingAverage) error {
	defer r.observe("upsert_moving_average", time.Now())

	avg.Date = model.Day(avg.Date)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.averages[avg.Date] = avg
	return nil
}

// RecentMovingAverages returns up to limit rows ordered by date descending.
func (r *Repository) RecentMovingAverages(_ context.Context, limit int) ([]model.MovingAverage, error) {
	defer r.observe("recent_moving_averages", time.Now())

	r.mu.RLock()
	avgs := make([]model.MovingAverage, 0, len(r.averages))
	for _, a := range r.averages {
		avgs = append(avgs, a)
	}
	r.mu.RUnlock()

	sort.Slice(avgs, func(i, j int) bool { return avgs[i].Date.After(avgs[j].Date) })
	return head(avgs, limit), nil
}

// UpsertFeeEstimate replaces the estimate stored for the confirmation target.
func (r *Repository) UpsertFeeEstimate(_ context.Context, fee model.FeeEstimate) error {
	defer r.observe("upsert_fee_estimate", time.Now())

	fee.EstimatedAt = fee.EstimatedAt.UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fees[fee.BlockTarget] = fee
	return nil
}

// FeeEstimates returns every stored estimate ordered by confirmation target.
func (r *Repository) FeeEstimates(_ context.Context) ([]model.FeeEstimate, error) {
	defer r.observe("fee_estimates", time.Now())

	r.mu.RLock()
	fees := make([]model.FeeEstimate, 0, len(r.fees))
	for _, f := range r.fees {
		fees = append(fees, f)
	}
	r.mu.RUnlock()

	sort.Slice(fees, func(i, j int) bool { return fees[i].BlockTarget < fees[j].BlockTarget })
	return fees, nil
}

func (r *Repository) observe(operation string, started time.Time) {
	if r.metrics != nil {
		r.metrics.Observe(operation, nil, started)
	}
}

func head[T any](items []T, limit int) []T {
	if limit <= 0 {
		return items[:0]
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
