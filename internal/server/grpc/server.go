// Package grpc serves the record service over gRPC on top of UserService.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/stampcard/internal/logging"
	"github.com/dmitrijs2005/stampcard/internal/models"
	"github.com/dmitrijs2005/stampcard/internal/rpc"
	"github.com/dmitrijs2005/stampcard/internal/server/metrics"
	"google.golang.org/grpc"
)

// UserService is the part of services.UserService the handlers use.
type UserService interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Put(ctx context.Context, u models.User) error
	Delete(ctx context.Context, username string) error
	Clear(ctx context.Context) error
}

type GRPCServer struct {
	rpc.UnimplementedRecordServiceServer
	address string
	users   UserService
	metrics *metrics.Metrics
	logger  logging.Logger
}

// NewGRPCServer builds a server; m may be nil to skip metrics.
func NewGRPCServer(a string, l logging.Logger, us UserService, m *metrics.Metrics) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   us,
		metrics: m,
	}
}

// NewServer returns a gRPC server with the record service and the
// interceptor chain registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.loggingInterceptor,
		s.metricsInterceptor,
		s.schemaVersionInterceptor,
	))
	rpc.RegisterRecordServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
