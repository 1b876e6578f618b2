// Package postgres stores chain metrics in PostgreSQL using INSERT .. ON CONFLICT upserts.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// Repository implements the metrics store on PostgreSQL.
type Repository struct {
	db      DB
	metrics Metrics
}

// NewRepository opens a connection pool for dsn. The pool connects lazily; call Ping to verify it.
func NewRepository(dsn string, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Repository{db: db, metrics: metrics}, nil
}

// Ping checks that the server is reachable.
func (r *Repository) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("ping", err, start)
	}()

	if err = r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}
