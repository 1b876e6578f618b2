package rest

import (
	"fmt"
	"net/http"
)

func (s *Server) blockHeight(r *http.Request) (any, error) {
	height, found, err := s.store.LatestBlockHeight(r.Context())
	if err != nil {
		return nil, fmt.Errorf("latest block height: %w", err)
	}
	if !found {
		return blockHeightResponse{}, nil
	}
	return blockHeightResponse{BlockHeight: &height}, nil
}

func (s *Server) dailyTxCounts(r *http.Request) (any, error) {
	counts, err := s.store.RecentDailyTxCounts(r.Context(), recentDays)
	if err != nil {
		return nil, fmt.Errorf("recent daily tx counts: %w", err)
	}
	return toDailyTxCounts(counts), nil
}

func (s *Server) movingAverages(r *http.Request) (any, error) {
	avgs, err := s.store.RecentMovingAverages(r.Context(), recentDays)
	if err != nil {
		return nil, fmt.Errorf("recent moving averages: %w", err)
	}
	return toMovingAverages(avgs), nil
}

func (s *Server) feeEstimates(r *http.Request) (any, error) {
	fees, err := s.store.FeeEstimates(r.Context())
	if err != nil {
		return nil, fmt.Errorf("fee estimates: %w", err)
	}
	return toFeeEstimates(fees), nil
}
