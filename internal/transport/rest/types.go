package rest

import (
	"context"
	"time"

	"github.com/goodnatureofminers/chainstats-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Store reads the metrics published by the API.
	Store interface {
		LatestBlockHeight(ctx context.Context) (uint64, bool, error)
		RecentDailyTxCounts(ctx context.Context, limit int) ([]model.DailyTxCount, error)
		RecentMovingAverages(ctx context.Context, limit int) ([]model.MovingAverage, error)
		FeeEstimates(ctx context.Context) ([]model.FeeEstimate, error)
	}
	// Metrics records served requests.
	Metrics interface {
		Observe(route string, code int, started time.Time)
	}
)
