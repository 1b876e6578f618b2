// Package bitcoin implements the chain.Source contract on top of a bitcoind RPC endpoint.
package bitcoin

import (
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"

	"github.com/goodnatureofminers/chainstats-backend/internal/chain"
)

// vbytesPerKvB is the number of virtual bytes in the kvB unit used by estimatesmartfee.
const vbytesPerKvB = 1000

// FeeRateToSatPerVByte converts an estimatesmartfee rate expressed in BTC/kvB into sat/vByte.
func FeeRateToSatPerVByte(btcPerKvB float64) (float64, error) {
	satPerKvB, err := btcutil.NewAmount(btcPerKvB)
	if err != nil {
		return 0, err
	}
	if satPerKvB <= 0 {
		return 0, fmt.Errorf("non-positive fee rate: %v BTC/kvB", btcPerKvB)
	}
	return float64(satPerKvB) / vbytesPerKvB, nil
}

// HeaderTime converts a header timestamp into UTC time.
func HeaderTime(unix int64) time.Time {
	return time.Unix(unix, 0).UTC()
}

// classifyRPCError maps a node error onto the chain error taxonomy.
func classifyRPCError(err error) error {
	var rpcErr *btcjson.RPCError
	if errors.As(err, &rpcErr) {
		switch rpcErr.Code {
		case btcjson.ErrRPCBlockNotFound, btcjson.ErrRPCInvalidParameter:
			return fmt.Errorf("%w: %w", chain.ErrNotFound, err)
		}
	}
	return fmt.Errorf("%w: %w", chain.ErrRPCUnavailable, err)
}
