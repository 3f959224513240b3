package lock

import (
	"fmt"
	"sync"
	"time"
)

const (
	operationLock   = "lock"
	operationUnlock = "unlock"
)

// Guard is a boolean lock that only its admin can toggle.
//
// The zero value is not usable, construct it with NewGuard or RestoreGuard.
type Guard struct {
	// admin is fixed at construction and never changes.
	admin Actor
	// now returns the time recorded on transitions.
	now func() time.Time

	// mu serializes the admin check with the flag write.
	mu        sync.RWMutex
	locked    bool
	lastActor *Actor
	timestamp time.Time
}

// Option configures a Guard.
type Option func(*Guard)

// WithClock overrides the clock used to stamp transitions.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGuard creates an unlocked guard owned by admin.
func NewGuard(admin Actor, opts ...Option) *Guard {
	g := &Guard{
		admin: admin,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// RestoreGuard rebuilds a guard from a snapshot produced by Snapshot.
// The admin is taken from the snapshot as is.
func RestoreGuard(state *State, opts ...Option) *Guard {
	if state == nil {
		return NewGuard(Actor{}, opts...)
	}

	g := NewGuard(state.Admin, opts...)
	g.locked = state.IsLocked
	g.lastActor = state.LastActor.Clone()
	g.timestamp = state.Timestamp

	return g
}

// Admin returns the identity allowed to toggle the guard.
func (g *Guard) Admin() Actor {
	return g.admin
}

// IsLocked reports the current flag. Any caller may read it.
func (g *Guard) IsLocked() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.locked
}

// Lock locks the guard. Locking a locked guard succeeds and changes nothing.
func (g *Guard) Lock(caller *Actor) error {
	return g.transition(operationLock, caller, true)
}

// Unlock unlocks the guard. Unlocking an unlocked guard succeeds and changes nothing.
func (g *Guard) Unlock(caller *Actor) error {
	return g.transition(operationUnlock, caller, false)
}

// Snapshot returns a copy of the current state.
func (g *Guard) Snapshot() *State {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return &State{
		Timestamp: g.timestamp,
		Admin:     g.admin,
		LastActor: g.lastActor.Clone(),
		IsLocked:  g.locked,
	}
}

// WhileUnlocked runs fn if the guard is unlocked and returns ErrLocked otherwise.
// A pending Lock or Unlock waits until fn returns. fn must not call any method
// of the same guard: a nested read blocks behind a waiting transition and the
// three of them deadlock. The guard is known to be unlocked for the whole call.
func (g *Guard) WhileUnlocked(fn func() error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.locked {
		return ErrLocked
	}

	return fn()
}

func (g *Guard) transition(operation string, caller *Actor, locked bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.isAdmin(caller) {
		return fmt.Errorf("%s by %s: %w", operation, caller, ErrNotAuthorized)
	}

	if g.locked == locked {
		return nil
	}

	g.locked = locked
	g.lastActor = caller.Clone()
	g.timestamp = g.now()

	return nil
}

func (g *Guard) isAdmin(caller *Actor) bool {
	return !caller.IsZero() && *caller == g.admin
}
