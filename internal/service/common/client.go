//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/oshokin/lockable/internal/config"
	domain "github.com/oshokin/lockable/internal/domain/lock"
	pb "github.com/oshokin/lockable/internal/pb/v1"
)

// Client wraps the gRPC LockService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the lock server.
	conn *grpc.ClientConn
	// api is the LockService client interface.
	api pb.LockServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// token is presented as a bearer API key when set.
	token string
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithToken authenticates every call with an API key.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

var (
	// ErrUnauthenticated is returned when the server rejects or misses the API key.
	ErrUnauthenticated = errors.New("caller is not authenticated")

	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errActorRequired is returned when an actor is not provided but is required for the operation.
	errActorRequired = errors.New("actor must be provided")
)

// Dial establishes a gRPC connection to the lock server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	client := &Client{
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	dialOptions := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if client.token != "" {
		dialOptions = append(dialOptions, grpc.WithPerRPCCredentials(tokenCredentials(client.token)))
	}

	conn, err := grpc.NewClient(address, dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("dial lock server: %w", err)
	}

	client.conn = conn
	client.api = pb.NewLockServiceClient(conn)

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// GetLockState retrieves the current guard state.
func (c *Client) GetLockState(ctx context.Context, actor *domain.Actor) (*domain.State, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetLockState(callCtx, &pb.GetLockStateRequest{RequestingActor: pb.ActorFromDomain(actor)})
	if err != nil {
		return nil, fmt.Errorf("get lock state: %w", fromStatus(err))
	}

	return resp.ToDomainState(), nil
}

// Lock asks the server to lock the guard on behalf of actor.
func (c *Client) Lock(ctx context.Context, actor *domain.Actor) (*domain.State, error) {
	return c.transition(ctx, "lock", actor, c.api.Lock)
}

// Unlock asks the server to unlock the guard on behalf of actor.
func (c *Client) Unlock(ctx context.Context, actor *domain.Actor) (*domain.State, error) {
	return c.transition(ctx, "unlock", actor, c.api.Unlock)
}

func (c *Client) transition(
	ctx context.Context,
	operation string,
	actor *domain.Actor,
	call func(context.Context, *pb.SetLockRequest, ...grpc.CallOption) (*pb.LockStateResponse, error),
) (*domain.State, error) {
	if actor == nil && c.token == "" {
		return nil, errActorRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := call(callCtx, &pb.SetLockRequest{Actor: pb.ActorFromDomain(actor)})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, fromStatus(err))
	}

	return resp.ToDomainState(), nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

// fromStatus turns authorization status codes back into sentinel errors.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.PermissionDenied:
		return fmt.Errorf("%s: %w", st.Message(), domain.ErrNotAuthorized)
	case codes.Unauthenticated:
		return fmt.Errorf("%s: %w", st.Message(), ErrUnauthenticated)
	default:
		return err
	}
}

// tokenCredentials attaches a bearer API key to every call.
type tokenCredentials string

// GetRequestMetadata implements credentials.PerRPCCredentials.
func (t tokenCredentials) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + string(t)}, nil
}

// RequireTransportSecurity implements credentials.PerRPCCredentials.
func (tokenCredentials) RequireTransportSecurity() bool {
	return false
}

// IsTransient reports whether err is worth retrying. Authorization failures never are.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, domain.ErrNotAuthorized) || errors.Is(err, ErrUnauthenticated) {
		return false
	}

	switch status.Code(err) {
	case codes.InvalidArgument, codes.Unimplemented:
		return false
	default:
		return true
	}
}
