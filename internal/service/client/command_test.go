package client

import (
	"context"
	"fmt"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/oshokin/lockable/internal/domain/lock"
)

var (
	errUnavailable = fmt.Errorf("lock: %w", status.Error(codes.Unavailable, "connection refused"))
	errDenied      = fmt.Errorf("lock: %w", domain.ErrNotAuthorized)
)

// scriptedAttempt returns errs in order, then a locked state.
func scriptedAttempt(calls *int, errs ...error) func(context.Context) (*domain.State, error) {
	return func(context.Context) (*domain.State, error) {
		*calls++

		if *calls <= len(errs) {
			return nil, errs[*calls-1]
		}

		return &domain.State{IsLocked: true}, nil
	}
}

// TestWithRetry_RecoversFromTransientFailures verifies retries happen on the configured interval.
func TestWithRetry_RecoversFromTransientFailures(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		var calls int

		start := time.Now()

		state, err := withRetry(
			context.Background(),
			&Options{RetryInterval: time.Second},
			scriptedAttempt(&calls, errUnavailable, errUnavailable),
		)

		require.NoError(t, err)
		require.True(t, state.IsLocked)
		require.Equal(t, 3, calls)
		require.Equal(t, 2*time.Second, time.Since(start))
	})
}

// TestWithRetry_DoesNotRetryDenied verifies authorization failures surface at once.
func TestWithRetry_DoesNotRetryDenied(t *testing.T) {
	t.Parallel()

	var calls int

	_, err := withRetry(context.Background(), new(Options), scriptedAttempt(&calls, errDenied))
	require.ErrorIs(t, err, domain.ErrNotAuthorized)
	require.Equal(t, 1, calls)
}

// TestWithRetry_GivesUp verifies MaxAttempts bounds the loop.
func TestWithRetry_GivesUp(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		var calls int

		_, err := withRetry(
			context.Background(),
			&Options{MaxAttempts: 3},
			scriptedAttempt(&calls, errUnavailable, errUnavailable, errUnavailable, errUnavailable),
		)

		require.ErrorIs(t, err, errUnavailable)
		require.Contains(t, err.Error(), "giving up after 3 attempts")
		require.Equal(t, 3, calls)
	})
}

// TestWithRetry_Canceled verifies cancellation stops the loop between attempts.
func TestWithRetry_Canceled(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		var calls int

		ctx, cancel := context.WithCancel(context.Background())

		attempt := func(ctx context.Context) (*domain.State, error) {
			calls++
			cancel()

			return nil, errUnavailable
		}

		_, err := withRetry(ctx, &Options{MaxAttempts: 10}, attempt)
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 1, calls)
	})
}

func TestOperationFunc(t *testing.T) {
	t.Parallel()

	for _, operation := range []string{OperationLock, OperationUnlock, OperationStatus} {
		call, err := operationFunc(operation)
		require.NoError(t, err)
		require.NotNil(t, call)
	}

	_, err := operationFunc("transfer")
	require.ErrorIs(t, err, ErrUnknownOperation)
}

// TestRun_UnknownOperation verifies the operation is checked before any I/O.
func TestRun_UnknownOperation(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), &Options{ConfigPath: "/nonexistent/settings.yaml", Operation: "transfer"})
	require.ErrorIs(t, err, ErrUnknownOperation)
}

func TestFormatState(t *testing.T) {
	t.Parallel()

	require.Equal(t, "<nil state>", FormatState(nil))

	admin := domain.Actor{Hostname: "vote-01", Username: "registrar"}
	require.Equal(
		t,
		"unlocked by <unknown> (never changed), admin registrar@vote-01",
		FormatState(domain.NewGuard(admin).Snapshot()),
	)

	state := &domain.State{
		Timestamp: time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC),
		Admin:     admin,
		LastActor: admin.Clone(),
		IsLocked:  true,
	}
	require.Equal(
		t,
		"locked by registrar@vote-01 (2026-10-18T12:00:00Z), admin registrar@vote-01",
		FormatState(state),
	)
}
