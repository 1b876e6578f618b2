package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE
//go:generate mockgen -destination=rows_mock_test.go -package=$GOPACKAGE -mock_names=Rows=MockRows github.com/ClickHouse/clickhouse-go/v2/lib/driver Rows

type (
	// Metrics records repository operation outcomes.
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
	// Conn is the subset of clickhouse.Conn used by the repository.
	Conn interface {
		Exec(ctx context.Context, query string, args ...any) error
		Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
		Ping(ctx context.Context) error
		Close() error
	}
)
