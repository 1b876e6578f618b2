package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/chainstats-backend/internal/model"
)

// UpsertDailyTxCount replaces the transaction count stored for the row date.
func (r *Repository) UpsertDailyTxCount(ctx context.Context, count model.DailyTxCount) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("upsert_daily_tx_count", err, start)
	}()

	const query = `
INSERT INTO daily_tx_counts (date, tx_count)
VALUES (toDate(?), ?)`

	if err = r.conn.Exec(ctx, query, count.Date.UTC().Format(dateLayout), count.TxCount); err != nil {
		return fmt.Errorf("upsert daily tx count %s: %w", count.Date.Format(dateLayout), err)
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
FROM daily_tx_counts FINAL
ORDER BY date DESC
LIMIT ?`

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query daily tx counts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	counts = make([]model.DailyTxCount, 0, limit)
	for rows.Next() {
		var c model.DailyTxCount
		if err = rows.Scan(&c.Date, &c.TxCount); err != nil {
			return nil, fmt.Errorf("scan daily tx count: %w", err)
		}
		c.Date = calendarDay(c.Date)
		counts = append(counts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily tx counts: %w", err)
	}
	return counts, nil
}
