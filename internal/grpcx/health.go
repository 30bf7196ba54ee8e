// Package grpcx runs the gRPC listener that exposes the standard health service.
package grpcx

import (
	"context"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	check    Checker
	interval time.Duration
	log      logrus.FieldLogger
}

// New registers the health service. check, when non-nil, is polled every
// interval and drives the overall serving status.
func New(check Checker, interval time.Duration, log logrus.FieldLogger) *Server {
	s := &Server{
		grpc:     grpc.NewServer(),
		health:   health.NewServer(),
		check:    check,
		interval: interval,
		log:      log,
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return s
}

// Serve blocks until ctx is cancelled, then marks the service NOT_SERVING
// and stops gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(lis) }()
	s.log.WithField("addr", lis.Addr().String()).Info("[grpc] listening")

	var tick <-chan time.Time
	if s.check != nil && s.interval > 0 {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case err := <-errCh:
			return err
		case <-tick:
			s.probe(ctx)
		case <-ctx.Done():
			s.health.Shutdown()
			s.grpc.GracefulStop()
			return nil
		}
	}
}

func (s *Server) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.check(ctx); err != nil {
		s.log.WithError(err).Warn("[grpc] health probe failed")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
}
