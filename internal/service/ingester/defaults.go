package ingester

const (
	// BlocksPerDay approximates one day of blocks at the ten minute target spacing.
	BlocksPerDay uint64 = 144
	// MovingAverageWindow is the number of most recent daily counts averaged.
	MovingAverageWindow = 7
	// MaxBackfillDays bounds how many day windows a run walks back.
	MaxBackfillDays = 7

	defaultBackfillDays = 1
	defaultFetchWorkers = 8
)

// Step names reported in Report and metrics.
const (
	StepBlockHeight   = "block_height"
	StepTxAggregation = "tx_aggregation"
	StepMovingAverage = "moving_average"
	StepFeeSweep      = "fee_sweep"
)

// feeTargets are the confirmation targets swept on every run, in order.
var feeTargets = [...]uint16{1, 3, 6, 12, 24}
