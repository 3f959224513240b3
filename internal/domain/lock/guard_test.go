package lock

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin = Actor{
		Hostname: "vote-01",
		Username: "registrar",
	}
	stranger = Actor{
		Hostname: "vote-02",
		Username: "voter",
	}
)

func TestGuard_StartsUnlocked(t *testing.T) {
	t.Parallel()

	g := NewGuard(admin)

	require.False(t, g.IsLocked())
	require.Equal(t, admin, g.Admin())
}

func TestGuard_AdminLocksAndUnlocks(t *testing.T) {
	t.Parallel()

	g := NewGuard(admin)

	require.NoError(t, g.Lock(&admin))
	require.True(t, g.IsLocked())

	require.NoError(t, g.Unlock(&admin))
	require.False(t, g.IsLocked())
}

// TestGuard_RejectsNonAdmin covers lock and unlock attempts by other callers in both states.
func TestGuard_RejectsNonAdmin(t *testing.T) {
	t.Parallel()

	callers := map[string]*Actor{
		"stranger":      &stranger,
		"nil":           nil,
		"empty":         new(Actor),
		"same hostname": {Hostname: admin.Hostname, Username: "voter"},
		"same username": {Hostname: "vote-02", Username: admin.Username},
	}

	for name, caller := range callers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			g := NewGuard(admin)

			err := g.Lock(caller)
			require.ErrorIs(t, err, ErrNotAuthorized)
			require.False(t, g.IsLocked())

			require.NoError(t, g.Lock(&admin))

			err = g.Unlock(caller)
			require.ErrorIs(t, err, ErrNotAuthorized)
			require.True(t, g.IsLocked())
		})
	}
}

func TestGuard_Idempotent(t *testing.T) {
	t.Parallel()

	g := NewGuard(admin)

	require.NoError(t, g.Lock(&admin))
	require.NoError(t, g.Lock(&admin))
	require.True(t, g.IsLocked())

	require.NoError(t, g.Unlock(&admin))
	require.NoError(t, g.Unlock(&admin))
	require.False(t, g.IsLocked())
}

// TestGuard_Scenario walks the admin/stranger sequence end to end.
func TestGuard_Scenario(t *testing.T) {
	t.Parallel()

	g := NewGuard(admin)
	require.False(t, g.IsLocked())

	require.NoError(t, g.Lock(&admin))
	require.True(t, g.IsLocked())

	err := g.Unlock(&stranger)
	require.ErrorIs(t, err, ErrNotAuthorized)
	require.Contains(t, err.Error(), "unlock by voter@vote-02")
	require.True(t, g.IsLocked())

	require.NoError(t, g.Unlock(&admin))
	require.False(t, g.IsLocked())
}

// TestGuard_CallerIsCompared verifies the guard does not keep the caller pointer.
func TestGuard_CallerIsCompared(t *testing.T) {
	t.Parallel()

	g := NewGuard(admin)

	caller := admin
	require.NoError(t, g.Lock(&caller))

	caller.Username = "mallory"
	require.Equal(t, admin, *g.Snapshot().LastActor)
	require.Equal(t, admin, g.Admin())
}

func TestGuard_SnapshotRecordsTransitions(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	g := NewGuard(admin, WithClock(func() time.Time { return ts }))

	s := g.Snapshot()
	require.False(t, s.IsLocked)
	require.Nil(t, s.LastActor)
	require.True(t, s.Timestamp.IsZero())

	require.NoError(t, g.Lock(&admin))

	s = g.Snapshot()
	require.True(t, s.IsLocked)
	require.Equal(t, &admin, s.LastActor)
	require.Equal(t, ts, s.Timestamp)

	// No-op transitions keep the previous stamp.
	g = NewGuard(admin, WithClock(func() time.Time { return ts.Add(time.Hour) }))
	require.NoError(t, g.Unlock(&admin))
	require.True(t, g.Snapshot().Timestamp.IsZero())
}

func TestRestoreGuard(t *testing.T) {
	t.Parallel()

	original := NewGuard(admin)
	require.NoError(t, original.Lock(&admin))

	restored := RestoreGuard(original.Snapshot())
	require.True(t, restored.IsLocked())
	require.Equal(t, admin, restored.Admin())

	require.ErrorIs(t, restored.Unlock(&stranger), ErrNotAuthorized)
	require.NoError(t, restored.Unlock(&admin))
	require.False(t, restored.IsLocked())

	// Nil snapshot yields a guard nobody can toggle.
	empty := RestoreGuard(nil)
	require.False(t, empty.IsLocked())
	require.ErrorIs(t, empty.Lock(new(Actor)), ErrNotAuthorized)
}

func TestGuard_WhileUnlocked(t *testing.T) {
	t.Parallel()

	var (
		g     = NewGuard(admin)
		calls int
		errFn = errors.New("mutation failed")
	)

	require.NoError(t, g.WhileUnlocked(func() error {
		calls++
		return nil
	}))
	require.ErrorIs(t, g.WhileUnlocked(func() error { return errFn }), errFn)

	require.NoError(t, g.Lock(&admin))
	require.ErrorIs(t, g.WhileUnlocked(func() error {
		calls++
		return nil
	}), ErrLocked)

	require.Equal(t, 1, calls)
}

// TestGuard_WhileUnlockedHoldsPendingLock checks that a Lock issued while fn runs
// waits for fn and then succeeds.
func TestGuard_WhileUnlockedHoldsPendingLock(t *testing.T) {
	t.Parallel()

	var (
		g        = NewGuard(admin)
		lockDone = make(chan error, 1)
		observed bool
	)

	err := g.WhileUnlocked(func() error {
		go func() {
			lockDone <- g.Lock(&admin)
		}()

		require.Never(t, func() bool {
			return len(lockDone) > 0
		}, 50*time.Millisecond, 5*time.Millisecond)

		observed = true

		return nil
	})
	require.NoError(t, err)
	require.True(t, observed)

	select {
	case err := <-lockDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("lock did not complete after fn returned")
	}

	require.True(t, g.IsLocked())
	require.ErrorIs(t, g.WhileUnlocked(func() error { return nil }), ErrLocked)
}

// TestGuard_Concurrent hammers the guard from many goroutines; run with -race.
func TestGuard_Concurrent(t *testing.T) {
	t.Parallel()

	const workers = 32

	var (
		g  = NewGuard(admin)
		wg sync.WaitGroup
	)

	for i := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			switch i % 4 {
			case 0:
				assert.NoError(t, g.Lock(&admin))
			case 1:
				assert.NoError(t, g.Unlock(&admin))
			case 2:
				assert.ErrorIs(t, g.Lock(&stranger), ErrNotAuthorized)
			default:
				_ = g.IsLocked()
				_ = g.Snapshot()
			}
		}()
	}

	wg.Wait()

	// Whatever the interleaving, the final flag matches the snapshot.
	require.Equal(t, g.IsLocked(), g.Snapshot().IsLocked)
}
