package postgres

import (
	"context"
	"database/sql"
	"time"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Metrics records repository operation outcomes.
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
	// DB is the subset of *sqlx.DB used by the repository.
	DB interface {
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
		GetContext(ctx context.Context, dest any, query string, args ...any) error
		SelectContext(ctx context.Context, dest any, query string, args ...any) error
		PingContext(ctx context.Context) error
		Close() error
	}
)
