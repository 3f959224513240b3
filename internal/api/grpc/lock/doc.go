// Package lock implements the gRPC transport for the lock service.
//
// It adapts domain types to wire messages, maps domain errors to gRPC status
// codes and optionally authenticates callers with API keys.
package lock
