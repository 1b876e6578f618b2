package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainstats-backend/internal/model"
	"github.com/goodnatureofminers/chainstats-backend/pkg/safe"
)

type movingAverageRow struct {
	Date        time.Time `db:"date"`
	Value       float64   `db:"value"`
	SampleCount int16     `db:"sample_count"`
}

// UpsertMovingAverage replaces the moving average stored for the row date.
func (r *Repository) UpsertMovingAverage(ctx context.Context, avg model.MovingAverage) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert_moving_average", err, start)
	}()

	const query = `
INSERT INTO tx_moving_averages (date, value, sample_count, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (date) DO UPDATE SET
	value = EXCLUDED.value,
	sample_count = EXCLUDED.sample_count,
	updated_at = EXCLUDED.updated_at`

	if _, err = r.db.ExecContext(ctx, query, model.Day(avg.Date), avg.Value, int16(avg.SampleCount)); err != nil {
		return fmt.Errorf("upsert moving average %s: %w", avg.Date.Format(time.DateOnly), err)
	}
	return nil
}

// RecentMovingAverages returns up to limit rows ordered by date descending.
func (r *Repository) RecentMovingAverages(ctx context.Context, limit int) (avgs []model.MovingAverage, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("recent_moving_averages", err, start)
	}()

	if limit <= 0 {
		return []model.MovingAverage{}, nil
	}

	const query = `
SELECT date, value, sample_count
FROM tx_moving_averages
ORDER BY date DESC
LIMIT $1`

	var rows []movingAverageRow
	if err = r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("query moving averages: %w", err)
	}

	avgs = make([]model.MovingAverage, 0, len(rows))
	for _, row := range rows {
		samples, convErr := safe.Uint8(row.SampleCount)
		if convErr != nil {
			return nil, fmt.Errorf("decode moving average sample count: %w", convErr)
		}
		avgs = append(avgs, model.MovingAverage{
			Date:        calendarDay(row.Date),
			Value:       row.Value,
			SampleCount: samples,
		})
	}
	return avgs, nil
}
