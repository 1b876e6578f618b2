package ingester

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/goodnatureofminers/chainstats-backend/internal/chain"
	"github.com/goodnatureofminers/chainstats-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Source provides chain state. chain.Source satisfies it.
	Source interface {
		BlockHeight(ctx context.Context) (uint64, error)
		BlockHash(ctx context.Context, height uint64) (*chainhash.Hash, error)
		Block(ctx context.Context, hash *chainhash.Hash) (chain.Block, error)
		BlockHeader(ctx context.Context, hash *chainhash.Hash) (chain.BlockHeader, error)
		EstimateFee(ctx context.Context, target uint16) (float64, error)
	}
	// Store persists pipeline output with upsert semantics.
	Store interface {
		UpsertBlockHeight(ctx context.Context, height model.BlockHeight) error
		UpsertDailyTxCount(ctx context.Context, count model.DailyTxCount) error
		RecentDailyTxCounts(ctx context.Context, limit int) ([]model.DailyTxCount, error)
		UpsertMovingAverage(ctx context.Context, avg model.MovingAverage) error
		UpsertFeeEstimate(ctx context.Context, fee model.FeeEstimate) error
	}
	// Metrics records pipeline outcomes.
	Metrics interface {
		ObserveStep(step string, err error, started time.Time)
		ObserveRun(healthy bool, finished time.Time)
		ObserveBlocks(fetched, skipped int)
		ObserveDayWritten()
		ObserveFeeTarget(target uint16, err error)
	}
)
