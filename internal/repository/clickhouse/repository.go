// Package clickhouse stores chain metrics in ReplacingMergeTree tables.
//
// Every table is versioned by updated_at, so a second insert for the same natural key
// replaces the first one. Reads use FINAL to collapse versions that were not merged yet.
package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02 15:04:05.000"
)

// Repository implements the metrics store on ClickHouse.
type Repository struct {
	conn    Conn
	metrics Metrics
}

// NewRepository opens a ClickHouse connection for dsn.
func NewRepository(dsn string, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("clickhouse dsn is required")
	}

	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}

	return &Repository{conn: conn, metrics: metrics}, nil
}

// Ping checks that the server is reachable.
func (r *Repository) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("ping", err, start)
	}()

	if err = r.conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping clickhouse: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	return r.conn.Close()
}

// calendarDay keeps the calendar date of a Date column value as UTC midnight,
// whatever location the driver attached to it.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
