package ingester

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/goodnatureofminers/chainstats-backend/internal/chain"
)

// fakeChain is an in-memory Source. Block h holds h%5+1 transactions and is mined
// ten minutes after block h-1, starting at genesisTime.
type fakeChain struct {
	mu      sync.Mutex
	tip     uint64
	tipErr  error
	failing map[uint64]bool
	fees    map[uint16]float64

	heightCalls int
	blockCalls  int
}

var genesisTime = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func newFakeChain(tip uint64) *fakeChain {
	return &fakeChain{
		tip:     tip,
		failing: make(map[uint64]bool),
		fees:    map[uint16]float64{1: 30, 3: 20, 6: 12.5, 12: 8, 24: 4},
	}
}

func fakeTxCount(height uint64) uint64 { return height%5 + 1 }

func fakeBlockTime(height uint64) time.Time {
	return genesisTime.Add(time.Duration(height) * 10 * time.Minute)
}

func fakeHash(height uint64) *chainhash.Hash {
	var h chainhash.Hash
	binary.LittleEndian.PutUint64(h[:8], height)
	h[31] = 0xff
	return &h
}

func heightOf(hash *chainhash.Hash) uint64 {
	return binary.LittleEndian.Uint64(hash[:8])
}

func (f *fakeChain) BlockHeight(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heightCalls++
	if f.tipErr != nil {
		return 0, f.tipErr
	}
	return f.tip, nil
}

func (f *fakeChain) BlockHash(_ context.Context, height uint64) (*chainhash.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if height > f.tip {
		return nil, fmt.Errorf("%w: height %d", chain.ErrNotFound, height)
	}
	if f.failing[height] {
		return nil, fmt.Errorf("%w: height %d", chain.ErrRPCUnavailable, height)
	}
	return fakeHash(height), nil
}

func (f *fakeChain) Block(_ context.Context, hash *chainhash.Hash) (chain.Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blockCalls++
	height := heightOf(hash)
	return chain.Block{Hash: hash.String(), TransactionCount: fakeTxCount(height)}, nil
}

func (f *fakeChain) BlockHeader(_ context.Context, hash *chainhash.Hash) (chain.BlockHeader, error) {
	height := heightOf(hash)
	return chain.BlockHeader{Hash: hash.String(), Timestamp: fakeBlockTime(height)}, nil
}

func (f *fakeChain) EstimateFee(_ context.Context, target uint16) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rate, ok := f.fees[target]
	if !ok {
		return 0, fmt.Errorf("%w: target %d", chain.ErrFeeUnavailable, target)
	}
	return rate, nil
}

func (f *fakeChain) fail(heights ...uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range heights {
		f.failing[h] = true
	}
}

// expectedTxSum is the transaction count of blocks [from, to] minus the skipped ones.
func expectedTxSum(from, to uint64, skip map[uint64]bool) uint64 {
	var sum uint64
	for h := from; h <= to; h++ {
		if !skip[h] {
			sum += fakeTxCount(h)
		}
	}
	return sum
}

type nopMetrics struct{}

func (nopMetrics) ObserveStep(string, error, time.Time) {}
func (nopMetrics) ObserveRun(bool, time.Time)           {}
func (nopMetrics) ObserveBlocks(int, int)               {}
func (nopMetrics) ObserveDayWritten()                   {}
func (nopMetrics) ObserveFeeTarget(uint16, error)       {}
