package grpc

import (
	"context"
	"path"
	"strconv"
	"time"

	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/rpc"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const requestIDHeaderName = "x-request-id"

// schemaVersionInterceptor rejects callers built against another record
// layout. Ping is let through so a client can still check the address.
func (s *GRPCServer) schemaVersionInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if info.FullMethod == rpc.RecordService_Ping_FullMethodName {
		return handler(ctx, req)
	}

	var version string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.SchemaVersionHeaderName)
		if len(values) > 0 {
			version = values[0]
		}
	}
	if len(version) == 0 {
		return nil, status.Error(codes.FailedPrecondition, "missing schema version")
	}

	v, err := strconv.Atoi(version)
	if err != nil || v != common.SchemaVersion {
		return nil, status.Errorf(codes.FailedPrecondition, "schema version %s, server has %d", version, common.SchemaVersion)
	}

	return handler(ctx, req)
}

// loggingInterceptor tags each call with a request id (taken from the caller
// when present) and logs its outcome.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	var id string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(requestIDHeaderName); len(values) > 0 {
			id = values[0]
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeaderName, id))

	start := time.Now()
	resp, err := handler(ctx, req)

	args := []any{"method", path.Base(info.FullMethod), "request_id", id, "code", status.Code(err).String(), "duration", time.Since(start)}
	if err != nil {
		s.logger.Warn(ctx, "request failed", append(args, "error", err)...)
	} else {
		s.logger.Debug(ctx, "request served", args...)
	}
	return resp, err
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if s.metrics == nil {
		return handler(ctx, req)
	}

	s.metrics.RPCInFlight.Inc()
	defer s.metrics.RPCInFlight.Dec()

	start := time.Now()
	resp, err := handler(ctx, req)
	s.metrics.ObserveRPC(path.Base(info.FullMethod), status.Code(err).String(), time.Since(start))
	return resp, err
}
