package grpc

import (
	"context"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

// Server exposes the gRPC health checking protocol for the service. The
// overall status ("") and the named service share one state.
type Server struct {
	grpc        *grpc.Server
	health      *health.Server
	serviceName string
	logger      *logger.Logger
}

func NewServer(serviceName string, log *logger.Logger) *Server {
	log = log.Named("GRPCServer")
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(LoggingInterceptor(log)),
	)

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	s := &Server{grpc: srv, health: hs, serviceName: serviceName, logger: log}
	s.SetServing(false)
	return s
}

func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("Starting gRPC server", zap.String("address", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

func (s *Server) SetServing(serving bool) {
	st := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		st = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(s.serviceName, st)
}

// Monitor runs check every interval and mirrors the result into the health
// status until ctx is done.
func (s *Server) Monitor(ctx context.Context, interval time.Duration, check func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := true
	for {
		checkCtx, cancel := context.WithTimeout(ctx, interval)
		err := check(checkCtx)
		cancel()

		if ok := err == nil; ok != serving {
			serving = ok
			if ok {
				s.logger.Info("Dependency check recovered, serving")
			} else {
				s.logger.Warn("Dependency check failed, not serving", zap.Error(err))
			}
		}
		s.SetServing(serving)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop flips the status to NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
	s.logger.Info("gRPC server stopped")
}
