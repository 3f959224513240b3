package lockv1

import domain "github.com/oshokin/lockable/internal/domain/lock"

// ActorFromDomain converts a domain actor. Nil stays nil.
func ActorFromDomain(actor *domain.Actor) *Actor {
	if actor == nil {
		return nil
	}

	return &Actor{
		Hostname: actor.Hostname,
		Username: actor.Username,
	}
}

// ToDomainActor converts a wire actor. Nil stays nil.
func (x *Actor) ToDomainActor() *domain.Actor {
	if x == nil {
		return nil
	}

	return &domain.Actor{
		Hostname: x.Hostname,
		Username: x.Username,
	}
}

// StateFromDomain converts a domain state into a response.
func StateFromDomain(state *domain.State) *LockStateResponse {
	if state == nil {
		return new(LockStateResponse)
	}

	response := &LockStateResponse{
		Admin:     ActorFromDomain(&state.Admin),
		LastActor: ActorFromDomain(state.LastActor),
		IsLocked:  state.IsLocked,
	}

	if !state.Timestamp.IsZero() {
		ts := state.Timestamp
		response.Timestamp = &ts
	}

	return response
}

// ToDomainState converts a response into a domain state.
func (x *LockStateResponse) ToDomainState() *domain.State {
	if x == nil {
		return nil
	}

	state := &domain.State{
		LastActor: x.LastActor.ToDomainActor(),
		IsLocked:  x.IsLocked,
	}

	if admin := x.Admin.ToDomainActor(); admin != nil {
		state.Admin = *admin
	}

	if x.Timestamp != nil {
		state.Timestamp = *x.Timestamp
	}

	return state
}
