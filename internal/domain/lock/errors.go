package lock

import "errors"

var (
	// ErrNotAuthorized is returned when a caller other than the admin tries to
	// lock or unlock the guard.
	ErrNotAuthorized = errors.New("caller is not authorized")
	// ErrLocked is returned by WhileUnlocked when the guard is locked.
	ErrLocked = errors.New("guard is locked")
)
