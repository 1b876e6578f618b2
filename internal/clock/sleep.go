// Package clock provides the time helpers used by the ingestion schedule.
package clock

import (
	"context"
	"time"
)

// SleepWithContext waits for the duration or returns early if the context is canceled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// UTC returns the current wall clock time in UTC.
func UTC() time.Time {
	return time.Now().UTC()
}
