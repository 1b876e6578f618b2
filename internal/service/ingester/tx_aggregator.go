package ingester

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/chainstats-backend/internal/model"
	"github.com/goodnatureofminers/chainstats-backend/pkg/workerpool"
)

// ErrNoBlocks reports an aggregation in which no block of any window could be fetched.
var ErrNoBlocks = errors.New("no blocks fetched")

// dayWindow is an inclusive block height range approximating one day.
type dayWindow struct {
	day  int
	from uint64
	to   uint64
}

// dayWindows splits the chain below tip into days windows of BlocksPerDay blocks.
// Window d covers [tip-(d+1)*BlocksPerDay, tip-d*BlocksPerDay] clamped at zero; windows
// entirely below genesis are dropped.
func dayWindows(tip uint64, days int) []dayWindow {
	windows := make([]dayWindow, 0, days)
	for d := 0; d < days; d++ {
		offset := uint64(d) * BlocksPerDay
		if offset > tip {
			break
		}
		to := tip - offset
		from := uint64(0)
		if to > BlocksPerDay {
			from = to - BlocksPerDay
		}
		windows = append(windows, dayWindow{day: d, from: from, to: to})
	}
	return windows
}

func (w dayWindow) heights() []uint64 {
	heights := make([]uint64, 0, w.to-w.from+1)
	for h := w.from; ; h++ {
		heights = append(heights, h)
		if h == w.to {
			break
		}
	}
	return heights
}

type blockResult struct {
	height    uint64
	txCount   uint64
	timestamp time.Time
	err       error
}

// aggregateTransactions upserts one DailyTxCount per day window. Blocks that cannot be fetched
// are skipped; a window without any fetched block writes nothing.
func (p *Pipeline) aggregateTransactions(ctx context.Context, report *Report) error {
	if !report.HeightKnown {
		height, err := p.source.BlockHeight(ctx)
		if err != nil {
			return fmt.Errorf("fetch block height: %w", err)
		}
		report.Height = height
		report.HeightKnown = true
	}

	var (
		writeErrs []error
		attempted int
	)
	for _, w := range dayWindows(report.Height, p.backfillDays) {
		count, fetched, skipped, err := p.aggregateWindow(ctx, w)
		report.BlocksFetched += fetched
		report.BlocksSkipped += skipped
		p.metrics.ObserveBlocks(fetched, skipped)
		if err != nil {
			return err
		}

		logger := p.logger.With(zap.Int("day", w.day), zap.Uint64("from", w.from), zap.Uint64("to", w.to))
		if skipped > 0 {
			logger.Warn("skipped blocks in day window", zap.Int("skipped", skipped), zap.Int("fetched", fetched))
		}
		if fetched == 0 {
			continue
		}

		attempted++
		if err := p.store.UpsertDailyTxCount(ctx, count); err != nil {
			logger.Error("store daily tx count failed", zap.Time("date", count.Date), zap.Error(err))
			writeErrs = append(writeErrs, fmt.Errorf("store daily tx count %s: %w", count.Date.Format(time.DateOnly), err))
			continue
		}
		p.metrics.ObserveDayWritten()
		report.DaysWritten = append(report.DaysWritten, count)
		logger.Debug("daily tx count stored", zap.Time("date", count.Date), zap.Uint64("tx_count", count.TxCount))
	}

	if attempted == 0 && report.BlocksSkipped > 0 {
		return fmt.Errorf("aggregate transactions below height %d: %w", report.Height, ErrNoBlocks)
	}
	return errors.Join(writeErrs...)
}

// aggregateWindow fetches every block of w and sums their transaction counts. The row date is
// the UTC day of the lowest fetched block. The error is non-nil only when ctx is done.
func (p *Pipeline) aggregateWindow(ctx context.Context, w dayWindow) (count model.DailyTxCount, fetched, skipped int, err error) {
	results, err := workerpool.Map(ctx, p.fetchWorkers, w.heights(), p.fetchBlock)
	if err != nil {
		return model.DailyTxCount{}, 0, 0, err
	}
	if err := ctx.Err(); err != nil {
		return model.DailyTxCount{}, 0, 0, err
	}

	for _, r := range results {
		if r.err != nil {
			skipped++
			p.logger.Debug("skip block", zap.Uint64("height", r.height), zap.Error(r.err))
			continue
		}
		if fetched == 0 {
			count.Date = model.Day(r.timestamp)
		}
		fetched++
		count.TxCount += r.txCount
	}
	return count, fetched, skipped, nil
}

func (p *Pipeline) fetchBlock(ctx context.Context, height uint64) blockResult {
	res := blockResult{height: height}

	hash, err := p.source.BlockHash(ctx, height)
	if err != nil {
		res.err = fmt.Errorf("block hash at %d: %w", height, err)
		return res
	}
	block, err := p.source.Block(ctx, hash)
	if err != nil {
		res.err = fmt.Errorf("block %d: %w", height, err)
		return res
	}
	header, err := p.source.BlockHeader(ctx, hash)
	if err != nil {
		res.err = fmt.Errorf("block header %d: %w", height, err)
		return res
	}

	res.txCount = block.TransactionCount
	res.timestamp = header.Timestamp
	return res
}
