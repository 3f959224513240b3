// Package lock contains the Guard, an admin-only boolean lock that other
// stateful components hold as a field and consult before mutating.
//
// Only the admin fixed at construction may lock or unlock the guard; every
// other caller gets ErrNotAuthorized and the state is left untouched.
// Reading the state is open to everyone.
package lock
