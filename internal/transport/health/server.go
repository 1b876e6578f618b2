// Package health exposes the gRPC health service reflecting the last ingestion run.
package health

import (
	"net"

	grpcMiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpcRecovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpcCtxTags "github.com/grpc-ecosystem/go-grpc-middleware/tags"
	grpcPrometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// IngestionService is the health service name tracking ingestion runs. The empty service name
// reports the same status.
const IngestionService = "chainstats.Ingestion"

// Server is a gRPC server carrying the standard health service.
type Server struct {
	grpc   *grpc.Server
	health *grpchealth.Server
	logger *zap.Logger
}

// NewServer creates a Server reporting NOT_SERVING until the first Update.
func NewServer(logger *zap.Logger) *Server {
	logger = logger.Named("health")
	unary := []grpc.UnaryServerInterceptor{
		grpcRecovery.UnaryServerInterceptor(),
		grpcCtxTags.UnaryServerInterceptor(),
		grpcPrometheus.UnaryServerInterceptor,
		grpcZap.UnaryServerInterceptor(logger),
	}
	stream := []grpc.StreamServerInterceptor{
		grpcRecovery.StreamServerInterceptor(),
		grpcCtxTags.StreamServerInterceptor(),
		grpcPrometheus.StreamServerInterceptor,
		grpcZap.StreamServerInterceptor(logger),
	}
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(grpcMiddleware.ChainUnaryServer(unary...)),
		grpc.StreamInterceptor(grpcMiddleware.ChainStreamServer(stream...)),
	)

	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	grpcPrometheus.Register(srv)

	s := &Server{grpc: srv, health: hs, logger: logger}
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Update reports SERVING when the last run was healthy and NOT_SERVING otherwise.
func (s *Server) Update(healthy bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if healthy {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.setStatus(status)
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(IngestionService, status)
	s.logger.Debug("health status updated", zap.Stringer("status", status))
}

// Serve accepts connections on lis until Stop.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Stop marks every service NOT_SERVING and waits for pending RPCs.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
