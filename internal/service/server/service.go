package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domain "github.com/oshokin/lockable/internal/domain/lock"
	"github.com/oshokin/lockable/internal/logger"
	repo "github.com/oshokin/lockable/internal/repository/state"
	"github.com/oshokin/lockable/internal/telemetry"
)

const (
	operationLock   = "lock"
	operationUnlock = "unlock"
	tracerName      = "github.com/oshokin/lockable/internal/service/server"
)

// ErrAdminMismatch is returned when the configured admin differs from the one
// that owns the persisted guard. Ownership cannot be transferred.
var ErrAdminMismatch = errors.New("configured admin does not own the persisted guard")

// serviceDeps collects what newService needs.
type serviceDeps struct {
	// repo persists the guard. Nil keeps the guard in memory only.
	repo repo.Repository
	// admin owns a guard created from scratch.
	admin domain.Actor
	// pinned makes a persisted guard with a different admin an error.
	pinned bool
	// metrics records transitions. Nil disables metrics.
	metrics *telemetry.Metrics
}

// service owns the guard and orchestrates persistence, logging and telemetry.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// repo handles persistent storage of the guard state.
	repo repo.Repository
	// metrics records transition outcomes.
	metrics *telemetry.Metrics
	// tracer starts one span per operation.
	tracer trace.Tracer

	// mu serializes transitions with persistence and guards the guard pointer.
	mu    sync.RWMutex
	guard *domain.Guard
}

// newService restores the guard from the repository or creates and persists
// a fresh one owned by deps.admin.
func newService(ctx context.Context, deps serviceDeps) (*service, error) {
	s := &service{
		repo:    deps.repo,
		metrics: deps.metrics,
		tracer:  otel.Tracer(tracerName),
	}

	if deps.repo == nil {
		s.guard = domain.NewGuard(deps.admin)
		s.metrics.SetLocked(false)

		return s, nil
	}

	state, err := deps.repo.Load(ctx)

	switch {
	case err == nil:
		if deps.pinned && state.Admin != deps.admin {
			return nil, fmt.Errorf("%w: persisted %s, configured %s", ErrAdminMismatch, &state.Admin, &deps.admin)
		}

		s.guard = domain.RestoreGuard(state)
	case errors.Is(err, repo.ErrNotFound):
		s.guard = domain.NewGuard(deps.admin)

		// Persist right away so the owner survives a restart under another user.
		if err = deps.repo.Save(ctx, s.guard.Snapshot()); err != nil {
			return nil, fmt.Errorf("persist new guard: %w", err)
		}
	default:
		return nil, fmt.Errorf("load state: %w", err)
	}

	admin := s.guard.Admin()
	logger.InfoKV(ctx, "Guard ready", "admin", admin.String(), "is_locked", s.guard.IsLocked())
	s.metrics.SetLocked(s.guard.IsLocked())

	return s, nil
}

// Lock locks the guard on behalf of caller and persists the result.
func (s *service) Lock(ctx context.Context, caller *domain.Actor) (*domain.State, error) {
	return s.transition(ctx, operationLock, caller, (*domain.Guard).Lock)
}

// Unlock unlocks the guard on behalf of caller and persists the result.
func (s *service) Unlock(ctx context.Context, caller *domain.Actor) (*domain.State, error) {
	return s.transition(ctx, operationUnlock, caller, (*domain.Guard).Unlock)
}

// GetLockState returns the current guard state. Any caller may read it.
func (s *service) GetLockState(ctx context.Context) *domain.State {
	_, span := s.tracer.Start(ctx, "LockService.GetLockState")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.guard.Snapshot()
	span.SetAttributes(attribute.Bool("lock.is_locked", state.IsLocked))

	logger.DebugKV(ctx, "Lock state requested", "is_locked", state.IsLocked)

	return state
}

func (s *service) transition(
	ctx context.Context,
	operation string,
	caller *domain.Actor,
	apply func(*domain.Guard, *domain.Actor) error,
) (*domain.State, error) {
	ctx, span := s.tracer.Start(ctx, "LockService."+operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("lock.operation", operation),
		attribute.String("lock.caller", caller.String()),
	)

	ctx = logger.WithKV(ctx, "operation", operation, "caller", caller.String())

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.guard.Snapshot()

	if err := apply(s.guard, caller); err != nil {
		outcome := telemetry.OutcomeFailed
		if errors.Is(err, domain.ErrNotAuthorized) {
			outcome = telemetry.OutcomeDenied
		}

		s.metrics.ObserveTransition(operation, outcome)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, outcome)
		logger.WarnKV(ctx, "Lock transition rejected", "error", err)

		return nil, err
	}

	current := s.guard.Snapshot()

	if s.repo != nil && current.IsLocked != previous.IsLocked {
		if err := s.repo.Save(ctx, current); err != nil {
			// Keep memory and disk in agreement.
			s.guard = domain.RestoreGuard(previous)

			s.metrics.ObserveTransition(operation, telemetry.OutcomeFailed)
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, telemetry.OutcomeFailed)
			logger.Errorf(ctx, "Failed to persist lock state: %v", err)

			return nil, fmt.Errorf("persist state: %w", err)
		}
	}

	s.metrics.ObserveTransition(operation, telemetry.OutcomeSuccess)
	s.metrics.SetLocked(current.IsLocked)
	span.SetAttributes(attribute.Bool("lock.is_locked", current.IsLocked))
	logger.InfoKV(ctx, "Lock state updated", "is_locked", current.IsLocked, "changed", current.IsLocked != previous.IsLocked)

	return current, nil
}
