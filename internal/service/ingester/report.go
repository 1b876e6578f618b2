package ingester

import (
	"time"

	"github.com/goodnatureofminers/chainstats-backend/internal/model"
)

// StepResult is the outcome of one pipeline step.
type StepResult struct {
	Step     string
	Err      error
	Duration time.Duration
}

// FeeResult is the outcome of one confirmation target in the fee sweep.
type FeeResult struct {
	Target  uint16
	FeeRate float64
	Err     error
}

// Report summarizes a pipeline run.
type Report struct {
	Started  time.Time
	Finished time.Time
	Steps    []StepResult

	// Height is the tip used by the run, valid when HeightKnown.
	Height      uint64
	HeightKnown bool

	DaysWritten   []model.DailyTxCount
	BlocksFetched int
	BlocksSkipped int

	// MovingAverage is nil when no average was written.
	MovingAverage *model.MovingAverage
	Fees          []FeeResult
}

// Healthy reports whether at least one step succeeded.
func (r Report) Healthy() bool {
	for _, s := range r.Steps {
		if s.Err == nil {
			return true
		}
	}
	return false
}

// StepErr returns the error recorded for step, or nil.
func (r Report) StepErr(step string) error {
	for _, s := range r.Steps {
		if s.Step == step {
			return s.Err
		}
	}
	return nil
}

// FeesWritten counts targets whose estimate was stored.
func (r Report) FeesWritten() int {
	n := 0
	for _, f := range r.Fees {
		if f.Err == nil {
			n++
		}
	}
	return n
}
