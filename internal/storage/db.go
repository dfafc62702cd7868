// Package storage provides the key-value stores behind the receipt
// journal: an in-memory map for tests and ephemeral runs, and Badger for
// durable journals.
package storage

import "errors"

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("key not found")

// DB is the interface for key-value storage.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach visits every key with the given prefix in ascending key
	// order. The callback receives copies of key and value. Return a
	// non-nil error from fn to stop early.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}

// Batch collects writes that are applied together on Commit.
type Batch interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Commit() error
}

// Batcher is implemented by stores that can commit a Batch atomically.
type Batcher interface {
	NewBatch() Batch
}

// batchOp is a buffered write; a nil value means delete.
type batchOp struct {
	key   []byte
	value []byte
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
