package rest

import (
	"time"

	"github.com/goodnatureofminers/chainstats-backend/internal/model"
)

// Stable error codes of the error envelope.
const (
	codeStoreUnavailable = "store_unavailable"
	codeNotFound         = "not_found"
	codeMethodNotAllowed = "method_not_allowed"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type blockHeightResponse struct {
	// BlockHeight is null until the first height was stored.
	BlockHeight *uint64 `json:"block_height"`
}

type dailyTxCountResponse struct {
	Date    string `json:"date"`
	TxCount uint64 `json:"tx_count"`
}

type movingAverageResponse struct {
	Date        string  `json:"date"`
	Value       float64 `json:"value"`
	SampleCount uint8   `json:"sample_count"`
}

type feeEstimateResponse struct {
	BlockTarget uint16  `json:"block_target"`
	FeeRate     float64 `json:"fee_rate"`
	EstimatedAt string  `json:"estimated_at"`
}

func toDailyTxCounts(counts []model.DailyTxCount) []dailyTxCountResponse {
	out := make([]dailyTxCountResponse, 0, len(counts))
	for _, c := range counts {
		out = append(out, dailyTxCountResponse{Date: formatDate(c.Date), TxCount: c.TxCount})
	}
	return out
}

func toMovingAverages(avgs []model.MovingAverage) []movingAverageResponse {
	out := make([]movingAverageResponse, 0, len(avgs))
	for _, a := range avgs {
		out = append(out, movingAverageResponse{Date: formatDate(a.Date), Value: a.Value, SampleCount: a.SampleCount})
	}
	return out
}

func toFeeEstimates(fees []model.FeeEstimate) []feeEstimateResponse {
	out := make([]feeEstimateResponse, 0, len(fees))
	for _, f := range fees {
		out = append(out, feeEstimateResponse{
			BlockTarget: f.BlockTarget,
			FeeRate:     f.FeeRate,
			EstimatedAt: f.EstimatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func formatDate(t time.Time) string {
	return model.Day(t).Format(time.DateOnly)
}
