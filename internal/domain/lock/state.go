package lock

import "time"

// State is a point-in-time snapshot of a guard.
type State struct {
	// Timestamp is when the lock flag last changed. Zero if it never did.
	Timestamp time.Time
	// Admin is the only identity allowed to change the flag.
	Admin Actor
	// LastActor is who last changed the flag.
	LastActor *Actor
	// IsLocked is the lock flag.
	IsLocked bool
}

// Clone returns a copy of the state to avoid leaking internal references.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	return &State{
		Timestamp: s.Timestamp,
		Admin:     s.Admin,
		LastActor: s.LastActor.Clone(),
		IsLocked:  s.IsLocked,
	}
}
