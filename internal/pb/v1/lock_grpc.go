package lockv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Full method names of LockService.
const (
	LockServiceGetLockStateFullMethodName = "/lockable.v1.LockService/GetLockState"
	LockServiceLockFullMethodName         = "/lockable.v1.LockService/Lock"
	LockServiceUnlockFullMethodName       = "/lockable.v1.LockService/Unlock"
)

// LockServiceClient is the client API for LockService.
type LockServiceClient interface {
	GetLockState(ctx context.Context, in *GetLockStateRequest, opts ...grpc.CallOption) (*LockStateResponse, error)
	Lock(ctx context.Context, in *SetLockRequest, opts ...grpc.CallOption) (*LockStateResponse, error)
	Unlock(ctx context.Context, in *SetLockRequest, opts ...grpc.CallOption) (*LockStateResponse, error)
}

type lockServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLockServiceClient returns a LockService client speaking the JSON codec over cc.
func NewLockServiceClient(cc grpc.ClientConnInterface) LockServiceClient {
	return &lockServiceClient{cc}
}

func (c *lockServiceClient) GetLockState(
	ctx context.Context,
	in *GetLockStateRequest,
	opts ...grpc.CallOption,
) (*LockStateResponse, error) {
	out := new(LockStateResponse)
	if err := c.invoke(ctx, LockServiceGetLockStateFullMethodName, in, out, opts); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *lockServiceClient) Lock(
	ctx context.Context,
	in *SetLockRequest,
	opts ...grpc.CallOption,
) (*LockStateResponse, error) {
	out := new(LockStateResponse)
	if err := c.invoke(ctx, LockServiceLockFullMethodName, in, out, opts); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *lockServiceClient) Unlock(
	ctx context.Context,
	in *SetLockRequest,
	opts ...grpc.CallOption,
) (*LockStateResponse, error) {
	out := new(LockStateResponse)
	if err := c.invoke(ctx, LockServiceUnlockFullMethodName, in, out, opts); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *lockServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	callOpts := append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)

	return c.cc.Invoke(ctx, method, in, out, callOpts...)
}

// LockServiceServer is the server API for LockService.
type LockServiceServer interface {
	GetLockState(ctx context.Context, in *GetLockStateRequest) (*LockStateResponse, error)
	Lock(ctx context.Context, in *SetLockRequest) (*LockStateResponse, error)
	Unlock(ctx context.Context, in *SetLockRequest) (*LockStateResponse, error)
}

// UnimplementedLockServiceServer answers every method with codes.Unimplemented.
// Embed it to stay forward compatible.
type UnimplementedLockServiceServer struct{}

// GetLockState is not implemented.
func (UnimplementedLockServiceServer) GetLockState(context.Context, *GetLockStateRequest) (*LockStateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetLockState not implemented")
}

// Lock is not implemented.
func (UnimplementedLockServiceServer) Lock(context.Context, *SetLockRequest) (*LockStateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Lock not implemented")
}

// Unlock is not implemented.
func (UnimplementedLockServiceServer) Unlock(context.Context, *SetLockRequest) (*LockStateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Unlock not implemented")
}

// RegisterLockServiceServer registers srv on s.
func RegisterLockServiceServer(s grpc.ServiceRegistrar, srv LockServiceServer) {
	s.RegisterService(&LockServiceDesc, srv)
}

// LockServiceDesc is the grpc.ServiceDesc of LockService.
//
//nolint:gochecknoglobals // Service descriptors are package-level by gRPC convention.
var LockServiceDesc = grpc.ServiceDesc{
	ServiceName: "lockable.v1.LockService",
	HandlerType: (*LockServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetLockState",
			Handler:    getLockStateHandler,
		},
		{
			MethodName: "Lock",
			Handler:    lockHandler,
		},
		{
			MethodName: "Unlock",
			Handler:    unlockHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lockable/v1/lock.proto",
}

func getLockStateHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(GetLockStateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(LockServiceServer).GetLockState(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: LockServiceGetLockStateFullMethodName,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LockServiceServer).GetLockState(ctx, req.(*GetLockStateRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func lockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return setLockHandler(srv, ctx, dec, interceptor, LockServiceLockFullMethodName, LockServiceServer.Lock)
}

func unlockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return setLockHandler(srv, ctx, dec, interceptor, LockServiceUnlockFullMethodName, LockServiceServer.Unlock)
}

func setLockHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
	fullMethod string,
	call func(LockServiceServer, context.Context, *SetLockRequest) (*LockStateResponse, error),
) (any, error) {
	in := new(SetLockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return call(srv.(LockServiceServer), ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: fullMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return call(srv.(LockServiceServer), ctx, req.(*SetLockRequest))
	}

	return interceptor(ctx, in, info, handler)
}
