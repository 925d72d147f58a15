// Package grpc runs the gRPC listener carrying the standard health
// service. Its status follows database reachability.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/logging"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service key reported next to the overall "".
const ServiceName = "huntplanur"

const (
	defaultProbeInterval = 10 * time.Second
	probeTimeout         = 2 * time.Second
)

// Pinger reports whether the backing store is reachable. *sql.DB fits.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type GRPCServer struct {
	address  string
	logger   logging.Logger
	pinger   Pinger
	health   *health.Server
	interval time.Duration
}

// NewGRPCServer builds the server. A nil pinger means the store is in
// process and always reachable.
func NewGRPCServer(a string, l logging.Logger, p Pinger) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		pinger:   p,
		health:   health.NewServer(),
		interval: defaultProbeInterval,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.loggingInterceptor),
	)
	healthpb.RegisterHealthServer(srv, s.health)

	s.probe(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gPRC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

func (s *GRPCServer) watch(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.probe(ctx)
		}
	}
}

// probe pings the store once and publishes the result.
func (s *GRPCServer) probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.pinger != nil {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := s.pinger.PingContext(pctx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn(ctx, "database unreachable", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
