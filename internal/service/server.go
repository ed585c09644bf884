package service

import (
	"context"
	"fmt"
	"net"
	"time"

	"majority-vote/internal/logging"
	"majority-vote/internal/majority"
	"majority-vote/internal/metrics"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server answers FindMajority RPCs. Every call runs on its own recorder, so concurrent calls
// never share state.
type Server struct {
	logger     logging.Logger
	exporter   *metrics.PrometheusExporter
	gc         bool
	grpcServer *grpc.Server

	// Address is set once the server listens
	Address string
}

type ServerOption func(*Server)

// WithLogger sets the logger for request logs
func WithLogger(l logging.Logger) ServerOption {
	return func(s *Server) { s.logger = logging.OrNop(l) }
}

// WithExporter makes instrumented calls feed the Prometheus exporter
func WithExporter(e *metrics.PrometheusExporter) ServerOption {
	return func(s *Server) { s.exporter = e }
}

// WithGC settles the heap around instrumented calls for steadier memory readings
func WithGC() ServerOption {
	return func(s *Server) { s.gc = true }
}

func NewServer(opts ...ServerOption) *Server {
	s := &Server{logger: logging.Nop{}}
	for _, opt := range opts {
		opt(s)
	}

	s.grpcServer = grpc.NewServer(
		grpc.ConnectionTimeout(time.Second*30),
		grpc.ChainUnaryInterceptor(s.requestIDInterceptor),
	)
	s.grpcServer.RegisterService(&ServiceDesc, s)
	return s
}

// requestIDInterceptor assigns every RPC a fresh request ID, stores it in the context and
// returns it in the response headers
func (s *Server) requestIDInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	id := uuid.New().String()
	ctx = WithRequestID(ctx, id)
	if err := grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id)); err != nil {
		s.logger.Warnf("[%s] failed to set request id header: %v", id, err)
	}

	start := time.Now()
	resp, err := handler(ctx, req)
	if err != nil {
		s.logger.Warnf("[%s] %s failed after %s: %v", id, info.FullMethod, time.Since(start), err)
	} else {
		s.logger.Debugf("[%s] %s done in %s", id, info.FullMethod, time.Since(start))
	}
	return resp, err
}

// FindMajority implements MajorityServiceServer
func (s *Server) FindMajority(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, _ := RequestID(ctx)

	values, instrument, err := decodeRequest(req)
	if err != nil {
		return nil, err
	}

	if !instrument {
		value, present := majority.FindMajority(values, nil)
		s.logger.Infof("[%s] n=%d present=%t", id, len(values), present)
		return encodeResponse(id, value, present, nil), nil
	}

	var opts []metrics.Option
	if !s.gc {
		opts = append(opts, metrics.WithoutGC())
	}
	rec := metrics.NewRecorder(opts...)
	value, present := majority.FindMajority(values, rec)
	snapshot := rec.Snapshot()

	s.exporter.Observe(majority.Algorithm, len(values), snapshot)
	s.logger.Infof("[%s] n=%d present=%t %s", id, len(values), present, rec)

	return encodeResponse(id, value, present, &snapshot), nil
}

// Start listens on localhost:port (0 picks a free port) and serves until the server is stopped
func (s *Server) Start(port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(lis)
}

// Serve accepts connections on lis. It blocks until the server is stopped.
func (s *Server) Serve(lis net.Listener) error {
	s.Address = lis.Addr().String()
	s.logger.Infof("%s listening on %s", ServiceName, s.Address)
	return s.grpcServer.Serve(lis)
}

// GracefulShutdown stops accepting RPCs and waits for pending ones to finish
func (s *Server) GracefulShutdown() {
	s.logger.Infof("shutting down gracefully")
	s.grpcServer.GracefulStop()
}

// ForceShutdown closes all connections immediately
func (s *Server) ForceShutdown() {
	s.logger.Infof("force shutting down")
	s.grpcServer.Stop()
}
