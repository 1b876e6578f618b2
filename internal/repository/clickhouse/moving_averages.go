package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainstats-backend/internal/model"
)

// UpsertMovingAverage replaces the moving average stored for the row date.
func (r *Repository) UpsertMovingAverage(ctx context.Context, avg model.MovingAverage) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert_moving_average", err, start)
	}()

	const query = `
INSERT INTO tx_moving_averages (date, value, sample_count)
VALUES (toDate(?), ?, ?)`

	if err = r.conn.Exec(ctx, query, avg.Date.UTC().Format(dateLayout), avg.Value, avg.SampleCount); err != nil {
		return fmt.Errorf("upsert moving average %s: %w", avg.Date.Format(dateLayout), err)
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
FROM tx_moving_averages FINAL
ORDER BY date DESC
LIMIT ?`

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query moving averages: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	avgs = make([]model.MovingAverage, 0, limit)
	for rows.Next() {
		var a model.MovingAverage
		if err = rows.Scan(&a.Date, &a.Value, &a.SampleCount); err != nil {
			return nil, fmt.Errorf("scan moving average: %w", err)
		}
		a.Date = calendarDay(a.Date)
		avgs = append(avgs, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moving averages: %w", err)
	}
	return avgs, nil
}
