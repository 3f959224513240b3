package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/lockable/internal/config"
	domain "github.com/oshokin/lockable/internal/domain/lock"
	"github.com/oshokin/lockable/internal/logger"
	"github.com/oshokin/lockable/internal/service/common"
)

// Operation names accepted by Run.
const (
	OperationLock   = "lock"
	OperationUnlock = "unlock"
	OperationStatus = "status"
)

const (
	// defaultRetryInterval is the delay between attempts after a transient failure.
	defaultRetryInterval = 1 * time.Second
	// defaultMaxAttempts bounds attempts when Options leaves it unset.
	defaultMaxAttempts = 5
)

// ErrUnknownOperation is returned for operations other than lock, unlock and status.
var ErrUnknownOperation = errors.New("unknown operation")

// Options configures a client invocation.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string

	// Operation is one of OperationLock, OperationUnlock, OperationStatus.
	Operation string

	// MaxAttempts bounds the number of tries; zero means the default.
	MaxAttempts int

	// RetryInterval is the delay between tries; zero means the default.
	RetryInterval time.Duration
}

// lockClient is the part of common.Client the commands use.
type lockClient interface {
	GetLockState(ctx context.Context, actor *domain.Actor) (*domain.State, error)
	Lock(ctx context.Context, actor *domain.Actor) (*domain.State, error)
	Unlock(ctx context.Context, actor *domain.Actor) (*domain.State, error)
}

// Run executes one operation against the lock server.
func Run(ctx context.Context, opts *Options) (*domain.State, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "lockable-client")

	call, err := operationFunc(opts.Operation)
	if err != nil {
		return nil, err
	}

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	// Use server address from options if provided, otherwise use config.
	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	// Identify current user and hostname. With an API key the server decides.
	actor, err := common.DetectActor()
	if err != nil {
		return nil, err
	}

	client, err := common.Dial(
		ctx,
		serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithToken(cfg.Auth.Token),
	)
	if err != nil {
		return nil, err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	logger.InfoKV(ctx, "Contacting lock server", "server_address", serverAddress, "operation", opts.Operation)

	state, err := withRetry(ctx, opts, func(ctx context.Context) (*domain.State, error) {
		return call(client, ctx, actor)
	})
	if err != nil {
		return nil, err
	}

	logger.Infof(ctx, "Guard %s", FormatState(state))

	return state, nil
}

// operationFunc maps an operation name to the client call.
func operationFunc(operation string) (func(lockClient, context.Context, *domain.Actor) (*domain.State, error), error) {
	switch operation {
	case OperationLock:
		return lockClient.Lock, nil
	case OperationUnlock:
		return lockClient.Unlock, nil
	case OperationStatus:
		return lockClient.GetLockState, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, operation)
	}
}

// withRetry calls attempt until it succeeds, fails permanently, runs out of
// attempts or ctx is canceled.
func withRetry(
	ctx context.Context,
	opts *Options,
	attempt func(context.Context) (*domain.State, error),
) (*domain.State, error) {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	interval := opts.RetryInterval
	if interval <= 0 {
		interval = defaultRetryInterval
	}

	// Attempt immediately before starting retry loop.
	state, err := attempt(ctx)
	if err == nil || !common.IsTransient(err) {
		return state, err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for try := 2; try <= maxAttempts; try++ {
		// Log error but continue retrying for transient failures.
		logger.WarnKV(ctx, "Lock server call failed, retrying", "error", err, "attempt", try-1)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		state, err = attempt(ctx)
		if err == nil || !common.IsTransient(err) {
			return state, err
		}
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", maxAttempts, err)
}

// FormatState renders a guard state for humans.
func FormatState(state *domain.State) string {
	if state == nil {
		return "<nil state>"
	}

	status := "unlocked"
	if state.IsLocked {
		status = "locked"
	}

	timestamp := "never changed"
	if !state.Timestamp.IsZero() {
		timestamp = state.Timestamp.Format(time.RFC3339)
	}

	return fmt.Sprintf("%s by %s (%s), admin %s", status, state.LastActor, timestamp, &state.Admin)
}
