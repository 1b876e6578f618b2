// Package chain defines the node data contract consumed by the ingestion pipeline.
package chain

import (
	"context"
	"errors"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

var (
	// ErrRPCUnavailable reports an unreachable, erroring or timed out node.
	ErrRPCUnavailable = errors.New("node rpc unavailable")
	// ErrNotFound reports a height or hash the node does not know.
	ErrNotFound = errors.New("not found")
	// ErrFeeUnavailable reports that the node has no estimate for a confirmation target.
	ErrFeeUnavailable = errors.New("fee estimate unavailable")
)

// Source provides the chain state required by the ingestion pipeline.
type Source interface {
	BlockHeight(ctx context.Context) (uint64, error)
	BlockHash(ctx context.Context, height uint64) (*chainhash.Hash, error)
	Block(ctx context.Context, hash *chainhash.Hash) (Block, error)
	BlockHeader(ctx context.Context, hash *chainhash.Hash) (BlockHeader, error)
	// EstimateFee returns the fee rate in sat/vByte for confirmation within target blocks.
	EstimateFee(ctx context.Context, target uint16) (float64, error)
}

// Block carries the block fields the pipeline aggregates.
type Block struct {
	Hash             string
	TransactionCount uint64
}

// BlockHeader carries the header fields the pipeline needs.
type BlockHeader struct {
	Hash      string
	Timestamp time.Time
}
