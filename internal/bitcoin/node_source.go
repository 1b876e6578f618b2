package bitcoin

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"go.uber.org/ratelimit"

	"github.com/goodnatureofminers/chainstats-backend/internal/chain"
	"github.com/goodnatureofminers/chainstats-backend/pkg/safe"
)

var _ chain.Source = (*NodeSource)(nil)

// NodeSource implements chain.Source for a bitcoind node.
type NodeSource struct {
	rpc     RPCClient
	limiter ratelimit.Limiter
	timeout time.Duration
	feeMode btcjson.EstimateSmartFeeMode
}

// NewNodeSource creates a NodeSource. A zero timeout disables the per-call deadline and
// a non-positive rps disables throttling.
func NewNodeSource(rpc RPCClient, timeout time.Duration, rps int) *NodeSource {
	limiter := ratelimit.NewUnlimited()
	if rps > 0 {
		limiter = ratelimit.New(rps)
	}
	return &NodeSource{
		rpc:     rpc,
		limiter: limiter,
		timeout: timeout,
		feeMode: btcjson.EstimateModeConservative,
	}
}

// BlockHeight returns the latest block height from the node.
func (s *NodeSource) BlockHeight(ctx context.Context) (uint64, error) {
	count, err := call(ctx, s, s.rpc.GetBlockCount)
	if err != nil {
		return 0, err
	}
	height, err := safe.Uint64(count)
	if err != nil {
		return 0, fmt.Errorf("%w: block count overflow: %w", chain.ErrRPCUnavailable, err)
	}
	return height, nil
}

// BlockHash returns the hash of the block at height.
func (s *NodeSource) BlockHash(ctx context.Context, height uint64) (*chainhash.Hash, error) {
	rpcHeight, err := safe.Int64(height)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", chain.ErrNotFound, err)
	}
	hash, err := call(ctx, s, func() (*chainhash.Hash, error) {
		return s.rpc.GetBlockHash(rpcHeight)
	})
	if err != nil {
		return nil, fmt.Errorf("get block hash at height %d: %w", height, err)
	}
	return hash, nil
}

// Block returns the transaction count of the block identified by hash.
func (s *NodeSource) Block(ctx context.Context, hash *chainhash.Hash) (chain.Block, error) {
	res, err := call(ctx, s, func() (*btcjson.GetBlockVerboseResult, error) {
		return s.rpc.GetBlockVerbose(hash)
	})
	if err != nil {
		return chain.Block{}, fmt.Errorf("get block %s: %w", hash, err)
	}
	return chain.Block{
		Hash:             res.Hash,
		TransactionCount: uint64(len(res.Tx)),
	}, nil
}

// BlockHeader returns the timestamp of the block identified by hash.
func (s *NodeSource) BlockHeader(ctx context.Context, hash *chainhash.Hash) (chain.BlockHeader, error) {
	res, err := call(ctx, s, func() (*btcjson.GetBlockHeaderVerboseResult, error) {
		return s.rpc.GetBlockHeaderVerbose(hash)
	})
	if err != nil {
		return chain.BlockHeader{}, fmt.Errorf("get block header %s: %w", hash, err)
	}
	return chain.BlockHeader{
		Hash:      res.Hash,
		Timestamp: HeaderTime(res.Time),
	}, nil
}

// EstimateFee returns the fee rate in sat/vByte for confirmation within target blocks.
// Every failure is reported as chain.ErrFeeUnavailable.
func (s *NodeSource) EstimateFee(ctx context.Context, target uint16) (float64, error) {
	mode := s.feeMode
	res, err := call(ctx, s, func() (*btcjson.EstimateSmartFeeResult, error) {
		return s.rpc.EstimateSmartFee(int64(target), &mode)
	})
	if err != nil {
		if ctx.Err() != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w: target %d: %w", chain.ErrFeeUnavailable, target, err)
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("%w: target %d: %v", chain.ErrFeeUnavailable, target, res.Errors)
	}
	if res.FeeRate == nil {
		return 0, fmt.Errorf("%w: target %d: no feerate", chain.ErrFeeUnavailable, target)
	}
	rate, err := FeeRateToSatPerVByte(*res.FeeRate)
	if err != nil {
		return 0, fmt.Errorf("%w: target %d: %w", chain.ErrFeeUnavailable, target, err)
	}
	return rate, nil
}

// call throttles fn, bounds it by the per-call timeout and classifies its error.
// A call that outlives the timeout keeps running in the background until the node answers.
// ctx is checked before and after throttling; with a zero timeout fn itself ignores ctx.
func call[T any](ctx context.Context, s *NodeSource, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.limiter.Take()
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	if s.timeout <= 0 {
		v, err := fn()
		if err != nil {
			return zero, classifyRPCError(err)
		}
		return v, nil
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v: v, err: err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-timer.C:
		return zero, fmt.Errorf("%w: call timed out after %s", chain.ErrRPCUnavailable, s.timeout)
	case r := <-done:
		if r.err != nil {
			return zero, classifyRPCError(r.err)
		}
		return r.v, nil
	}
}
