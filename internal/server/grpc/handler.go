package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/stampcard/internal/common"
	"github.com/dmitrijs2005/stampcard/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// toStatus maps service errors onto gRPC codes. Internal details stay in the
// server log.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrStorageUnavailable):
		return status.Error(codes.Unavailable, "storage unavailable")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}
	s.logger.Error(ctx, err.Error())
	return status.Error(codes.Internal, "internal error")
}

func (s *GRPCServer) Ping(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.users.Ping(ctx); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	u, err := s.users.Get(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return rpc.UserToStruct(*u), nil
}

func (s *GRPCServer) ListUsers(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error) {
	list, err := s.users.List(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	if s.metrics != nil {
		s.metrics.SetUsers(len(list))
	}
	return rpc.UsersToList(list), nil
}

func (s *GRPCServer) PutUser(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	u, err := rpc.UserFromStruct(req)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "user stored", "username", u.Username)
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) DeleteUser(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.users.Delete(ctx, req.GetValue()); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "user deleted", "username", req.GetValue())
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) ClearUsers(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.users.Clear(ctx); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "all users cleared")
	return &emptypb.Empty{}, nil
}
