package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "stampcard.RecordService"

const (
	RecordService_Ping_FullMethodName       = "/stampcard.RecordService/Ping"
	RecordService_GetUser_FullMethodName    = "/stampcard.RecordService/GetUser"
	RecordService_ListUsers_FullMethodName  = "/stampcard.RecordService/ListUsers"
	RecordService_PutUser_FullMethodName    = "/stampcard.RecordService/PutUser"
	RecordService_DeleteUser_FullMethodName = "/stampcard.RecordService/DeleteUser"
	RecordService_ClearUsers_FullMethodName = "/stampcard.RecordService/ClearUsers"
)

// RecordServiceServer is the server API for RecordService.
// GetUser answers codes.NotFound for an absent user.
type RecordServiceServer interface {
	Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	GetUser(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListUsers(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	PutUser(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	DeleteUser(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	ClearUsers(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

// UnimplementedRecordServiceServer can be embedded to have forward compatible
// implementations.
type UnimplementedRecordServiceServer struct{}

func (UnimplementedRecordServiceServer) Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedRecordServiceServer) GetUser(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetUser not implemented")
}
func (UnimplementedRecordServiceServer) ListUsers(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListUsers not implemented")
}
func (UnimplementedRecordServiceServer) PutUser(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PutUser not implemented")
}
func (UnimplementedRecordServiceServer) DeleteUser(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DeleteUser not implemented")
}
func (UnimplementedRecordServiceServer) ClearUsers(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ClearUsers not implemented")
}

func RegisterRecordServiceServer(s grpc.ServiceRegistrar, srv RecordServiceServer) {
	s.RegisterService(&RecordService_ServiceDesc, srv)
}

// unary builds a method handler the way protoc-gen-go-grpc does for each
// method: decode the request, then call through the interceptor if any.
func unary[In any, PIn interface {
	*In
	proto.Message
}, Out proto.Message](fullMethod string, call func(RecordServiceServer, context.Context, PIn) (Out, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PIn(new(In))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RecordServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RecordServiceServer), ctx, req.(PIn))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RecordService_ServiceDesc is the grpc.ServiceDesc for RecordService.
var RecordService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RecordServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Ping",
			Handler:    unary(RecordService_Ping_FullMethodName, RecordServiceServer.Ping),
		},
		{
			MethodName: "GetUser",
			Handler:    unary(RecordService_GetUser_FullMethodName, RecordServiceServer.GetUser),
		},
		{
			MethodName: "ListUsers",
			Handler:    unary(RecordService_ListUsers_FullMethodName, RecordServiceServer.ListUsers),
		},
		{
			MethodName: "PutUser",
			Handler:    unary(RecordService_PutUser_FullMethodName, RecordServiceServer.PutUser),
		},
		{
			MethodName: "DeleteUser",
			Handler:    unary(RecordService_DeleteUser_FullMethodName, RecordServiceServer.DeleteUser),
		},
		{
			MethodName: "ClearUsers",
			Handler:    unary(RecordService_ClearUsers_FullMethodName, RecordServiceServer.ClearUsers),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stampcard/record_service",
}

// RecordServiceClient is the client API for RecordService.
type RecordServiceClient interface {
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListUsers(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
	PutUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	DeleteUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ClearUsers(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type recordServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewRecordServiceClient(cc grpc.ClientConnInterface) RecordServiceClient {
	return &recordServiceClient{cc}
}

func (c *recordServiceClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, RecordService_Ping_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recordServiceClient) GetUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RecordService_GetUser_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recordServiceClient) ListUsers(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, RecordService_ListUsers_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recordServiceClient) PutUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, RecordService_PutUser_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recordServiceClient) DeleteUser(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, RecordService_DeleteUser_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recordServiceClient) ClearUsers(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, RecordService_ClearUsers_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
