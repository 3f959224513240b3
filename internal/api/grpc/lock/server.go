package lock

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/oshokin/lockable/internal/domain/lock"
	pb "github.com/oshokin/lockable/internal/pb/v1"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Lock(ctx context.Context, caller *domain.Actor) (*domain.State, error)
	Unlock(ctx context.Context, caller *domain.Actor) (*domain.State, error)
	GetLockState(ctx context.Context) *domain.State
}

// Server implements the LockService gRPC API.
type Server struct {
	pb.UnimplementedLockServiceServer

	// service provides the business logic for lock operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetLockState returns the current guard state.
func (s *Server) GetLockState(ctx context.Context, _ *pb.GetLockStateRequest) (*pb.LockStateResponse, error) {
	return pb.StateFromDomain(s.service.GetLockState(ctx)), nil
}

// Lock locks the guard on behalf of the caller.
func (s *Server) Lock(ctx context.Context, req *pb.SetLockRequest) (*pb.LockStateResponse, error) {
	return s.transition(ctx, req, s.service.Lock)
}

// Unlock unlocks the guard on behalf of the caller.
func (s *Server) Unlock(ctx context.Context, req *pb.SetLockRequest) (*pb.LockStateResponse, error) {
	return s.transition(ctx, req, s.service.Unlock)
}

func (s *Server) transition(
	ctx context.Context,
	req *pb.SetLockRequest,
	apply func(context.Context, *domain.Actor) (*domain.State, error),
) (*pb.LockStateResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	// An authenticated identity always wins over the one in the body.
	caller, ok := authenticatedActor(ctx)
	if !ok {
		caller = req.GetActor().ToDomainActor()
	}

	if caller.IsZero() {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	state, err := apply(ctx, caller)
	if err != nil {
		return nil, toStatus(err)
	}

	return pb.StateFromDomain(state), nil
}

// toStatus maps service errors to gRPC status errors.
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotAuthorized):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "unable to change lock state")
	}
}
