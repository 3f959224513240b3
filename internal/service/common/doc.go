// Package common provides shared helpers for the lockable binaries:
//   - caller detection (hostname + username),
//   - a small gRPC client wrapper for LockService that maps status codes back
//     to domain errors.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
