// Package store holds the persisted client state of the frontend: cart,
// favorites and the signed-in user. Stores are plain objects built over an
// injected localstore; construct one per composition root and share it by
// reference.
package store

// Storage is what a store needs from durable storage. *localstore.Store
// satisfies it; tests substitute failing fakes.
type Storage interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

const keyPrefix = "vasy_"

// storageKey derives the durable-storage partition for one store kind and
// one user identity. The guest partition is used while unauthenticated.
// It is a pure function: switching users re-points the store, never rewrites
// a previous user's partition.
func storageKey(kind, userID string) string {
	if userID == "" {
		userID = "guest"
	}
	return keyPrefix + kind + "_" + userID
}
