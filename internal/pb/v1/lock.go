package lockv1

import "time"

// Actor identifies the host and user behind a request.
type Actor struct {
	Hostname string `json:"hostname,omitempty"`
	Username string `json:"username,omitempty"`
}

// GetHostname returns the hostname or "" for a nil actor.
func (x *Actor) GetHostname() string {
	if x == nil {
		return ""
	}

	return x.Hostname
}

// GetUsername returns the username or "" for a nil actor.
func (x *Actor) GetUsername() string {
	if x == nil {
		return ""
	}

	return x.Username
}

// GetLockStateRequest asks for the current guard state.
type GetLockStateRequest struct {
	// RequestingActor is informational; reading needs no authorization.
	RequestingActor *Actor `json:"requesting_actor,omitempty"`
}

// GetRequestingActor returns the requesting actor.
func (x *GetLockStateRequest) GetRequestingActor() *Actor {
	if x == nil {
		return nil
	}

	return x.RequestingActor
}

// SetLockRequest is the body of Lock and Unlock.
type SetLockRequest struct {
	// Actor is the caller attempting the transition.
	Actor *Actor `json:"actor,omitempty"`
}

// GetActor returns the caller.
func (x *SetLockRequest) GetActor() *Actor {
	if x == nil {
		return nil
	}

	return x.Actor
}

// LockStateResponse describes the guard state.
type LockStateResponse struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Admin     *Actor     `json:"admin,omitempty"`
	LastActor *Actor     `json:"last_actor,omitempty"`
	IsLocked  bool       `json:"is_locked"`
}

// GetTimestamp returns when the flag last changed, or nil.
func (x *LockStateResponse) GetTimestamp() *time.Time {
	if x == nil {
		return nil
	}

	return x.Timestamp
}

// GetAdmin returns the guard owner.
func (x *LockStateResponse) GetAdmin() *Actor {
	if x == nil {
		return nil
	}

	return x.Admin
}

// GetLastActor returns who last changed the flag.
func (x *LockStateResponse) GetLastActor() *Actor {
	if x == nil {
		return nil
	}

	return x.LastActor
}

// GetIsLocked returns the lock flag.
func (x *LockStateResponse) GetIsLocked() bool {
	if x == nil {
		return false
	}

	return x.IsLocked
}
