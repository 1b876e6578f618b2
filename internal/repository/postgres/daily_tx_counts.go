package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainstats-backend/internal/model"
	"github.com/goodnatureofminers/chainstats-backend/pkg/safe"
)

type dailyTxCountRow struct {
	Date    time.Time `db:"date"`
	TxCount int64     `db:"tx_count"`
}

// UpsertDailyTxCount replaces the transaction count stored for the row date.
func (r *Repository) UpsertDailyTxCount(ctx context.Context, count model.DailyTxCount) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert_daily_tx_count", err, start)
	}()

	txCount, err := safe.Int64(count.TxCount)
	if err != nil {
		return fmt.Errorf("upsert daily tx count: %w", err)
	}

	const query = `
INSERT INTO daily_tx_counts (date, tx_count, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (date) DO UPDATE SET
	tx_count = EXCLUDED.tx_count,
	updated_at = EXCLUDED.updated_at`

	if _, err = r.db.ExecContext(ctx, query, model.Day(count.Date), txCount); err != nil {
		return fmt.Errorf("upsert daily tx count %s: %w", count.Date.Format(time.DateOnly), err)
	}
	return nil
}

// RecentDailyTxCounts returns up to limit rows ordered by date descending.
func (r *Repository) RecentDailyTxCounts(ctx context.Context, limit int) (counts []model.DailyTxCount, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("recent_daily_tx_counts", err, start)
	}()

	if limit <= 0 {
		return []model.DailyTxCount{}, nil
	}

	const query = `
SELECT date, tx_count
FROM daily_tx_counts
ORDER BY date DESC
LIMIT $1`

	var rows []dailyTxCountRow
	if err = r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("query daily tx counts: %w", err)
	}

	counts = make([]model.DailyTxCount, 0, len(rows))
	for _, row := range rows {
		txCount, convErr := safe.Uint64(row.TxCount)
		if convErr != nil {
			return nil, fmt.Errorf("decode daily tx count: %w", convErr)
		}
		counts = append(counts, model.DailyTxCount{Date: calendarDay(row.Date), TxCount: txCount})
	}
	return counts, nil
}

// calendarDay keeps the calendar date of a DATE column value as UTC midnight.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
