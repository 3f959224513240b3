// Package client implements the lockable-client commands.
//
// Each command connects to the lock server, identifies the caller and either
// reads the guard state or asks for a transition, retrying transient failures.
package client
