// Package state implements persistence for the guard State.
//
// The FileRepository stores and loads the snapshot as JSON on disk and exposes
// a Repository interface that the server service depends on.
package state
