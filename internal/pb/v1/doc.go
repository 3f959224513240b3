// Package lockv1 holds the wire types and the gRPC service definition of
// lockable.v1.LockService.
//
// Messages are plain Go structs carried by the JSON codec registered in this
// package. Getters are nil-safe.
package lockv1
