// Package rest serves the read-only chain metrics API.
package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Routes served by the API.
const (
	RouteBlockHeight    = "/api/block_info/block_height"
	RouteDailyTxCounts  = "/api/7d_tx"
	RouteMovingAverages = "/api/7d_tx/moving_average"
	RouteFeeEstimates   = "/api/fee_estimations"
	RouteMetrics        = "/metrics"

	// recentDays bounds the daily series returned by the API.
	recentDays = 7

	unmatchedRoute = "unmatched"
)

// Server answers read requests from the metrics store. It never waits on ingestion.
type Server struct {
	store     Store
	metrics   Metrics
	logger    *zap.Logger
	marshaler gwruntime.Marshaler
}

// NewServer creates a Server.
func NewServer(store Store, metrics Metrics, logger *zap.Logger) *Server {
	return &Server{
		store:     store,
		metrics:   metrics,
		logger:    logger.Named("rest"),
		marshaler: &gwruntime.JSONBuiltin{},
	}
}

// Handler builds the routed, CORS-enabled HTTP handler.
func (s *Server) Handler() (http.Handler, error) {
	mux := gwruntime.NewServeMux(
		gwruntime.WithMarshalerOption(gwruntime.MIMEWildcard, s.marshaler),
		gwruntime.WithRoutingErrorHandler(s.routingError),
	)

	routes := []struct {
		path    string
		handler gwruntime.HandlerFunc
	}{
		{RouteBlockHeight, s.observe(RouteBlockHeight, s.blockHeight)},
		{RouteDailyTxCounts, s.observe(RouteDailyTxCounts, s.dailyTxCounts)},
		{RouteMovingAverages, s.observe(RouteMovingAverages, s.movingAverages)},
		{RouteFeeEstimates, s.observe(RouteFeeEstimates, s.feeEstimates)},
		{RouteMetrics, s.prometheus(promhttp.Handler())},
	}
	for _, route := range routes {
		if err := mux.HandlePath(http.MethodGet, route.path, route.handler); err != nil {
			return nil, fmt.Errorf("register route %s: %w", route.path, err)
		}
	}
	return cors.Default().Handler(mux), nil
}

type handler func(r *http.Request) (any, error)

func (s *Server) observe(route string, h handler) gwruntime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		started := time.Now()
		body, err := h(r)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				s.logger.Debug("request canceled", zap.String("route", route))
			} else {
				s.logger.Error("read metrics failed", zap.String("route", route), zap.Error(err))
			}
			s.writeError(w, route, http.StatusInternalServerError, codeStoreUnavailable, "metrics store unavailable", started)
			return
		}
		s.write(w, route, http.StatusOK, body, started)
	}
}

func (s *Server) prometheus(h http.Handler) gwruntime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		started := time.Now()
		h.ServeHTTP(w, r)
		s.metrics.Observe(RouteMetrics, http.StatusOK, started)
	}
}

func (s *Server) routingError(_ context.Context, _ *gwruntime.ServeMux, _ gwruntime.Marshaler, w http.ResponseWriter, r *http.Request, status int) {
	started := time.Now()
	switch status {
	case http.StatusMethodNotAllowed, http.StatusNotImplemented:
		w.Header().Set("Allow", http.MethodGet)
		s.writeError(w, unmatchedRoute, http.StatusMethodNotAllowed, codeMethodNotAllowed,
			fmt.Sprintf("method %s not allowed for %s", r.Method, r.URL.Path), started)
	default:
		s.writeError(w, unmatchedRoute, http.StatusNotFound, codeNotFound,
			fmt.Sprintf("no route for %s", r.URL.Path), started)
	}
}

func (s *Server) writeError(w http.ResponseWriter, route string, status int, code, message string, started time.Time) {
	s.write(w, route, status, errorResponse{Code: code, Message: message}, started)
}

func (s *Server) write(w http.ResponseWriter, route string, status int, body any, started time.Time) {
	defer s.metrics.Observe(route, status, started)

	buf, err := s.marshaler.Marshal(body)
	if err != nil {
		s.logger.Error("marshal response failed", zap.String("route", route), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.marshaler.ContentType(body))
	w.WriteHeader(status)
	if _, err := w.Write(buf); err != nil {
		s.logger.Debug("write response failed", zap.String("route", route), zap.Error(err))
	}
}
