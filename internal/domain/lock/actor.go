package lock

import "fmt"

// Actor identifies a caller of the guard.
type Actor struct {
	// Hostname is the machine name the caller acts from.
	Hostname string
	// Username is the system user of the caller.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// IsZero reports whether the actor is nil or carries no identity at all.
func (a *Actor) IsZero() bool {
	return a == nil || (a.Hostname == "" && a.Username == "")
}

// String renders the actor as username@hostname.
func (a *Actor) String() string {
	if a.IsZero() {
		return "<unknown>"
	}

	return fmt.Sprintf("%s@%s", a.Username, a.Hostname)
}
