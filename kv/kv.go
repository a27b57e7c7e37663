// Package kv defines the transactional key-value contract the index engine
// is built on: multiple named sub-databases, MVCC read transactions, a
// single active write transaction, and byte-oriented keys/values with
// lexicographic iteration order. This is the "injected" store collaborator;
// bolt.go supplies the concrete implementation used by this repository.
// The index package opens its environments with OpenBoltEnv; the store,
// update and query packages depend only on the interfaces here.
package kv

import "context"

// Bucket is a named sub-database: a sorted byte-string keyspace.
type Bucket interface {
	Get(key []byte) []byte
	Put(key, value []byte) error
	Delete(key []byte) error

	// Cursor returns an iterator positioned before the first key. Seek,
	// Next and Prev move it; First/Last jump to the ends. The returned
	// key/value slices are only valid until the next cursor movement or
	// until the owning transaction ends, mirroring bbolt's mmap-backed
	// views.
	Cursor() Cursor

	// ForEachPrefix visits every key with the given prefix in ascending
	// order, stopping early if fn returns false.
	ForEachPrefix(prefix []byte, fn func(key, value []byte) bool)

	// DeletePrefix removes every key matching the given prefix. Used by
	// the documents-fields and field-counts stores to drop one document.
	DeletePrefix(prefix []byte) error

	// Last returns the greatest key and its value, or nil, nil if the
	// bucket is empty. Used by Updates/UpdatesResults to resolve the
	// next update id without a full scan.
	Last() (key, value []byte)

	// Clear removes every key in the bucket.
	Clear() error
}

// Tx is a transaction scoped to one environment (main or update). Writable
// transactions additionally allow Put/Delete and serialize against each
// other; read-only transactions may run concurrently with a writer and see
// a consistent snapshot.
type Tx interface {
	// Bucket returns (creating if necessary, for a writable Tx) the named
	// sub-database.
	Bucket(name string) (Bucket, error)
	Writable() bool
}

// Env is one physical environment: a set of named buckets backed by one
// file, with the single-writer/many-readers discipline. The index engine
// keeps two Envs open, "main" (index data) and "update" (the durable
// mutation queue), so that enqueueing never contends with indexing.
type Env interface {
	// View runs fn in a read-only transaction. The transaction and every
	// Bucket/Cursor obtained from it must not be used after fn returns.
	View(ctx context.Context, fn func(Tx) error) error

	// Update runs fn in the single read-write transaction; it blocks
	// until any prior writer has committed or rolled back. A non-nil
	// return from fn aborts the transaction, leaving no partial state
	// visible to subsequent readers.
	Update(ctx context.Context, fn func(Tx) error) error

	Close() error
}
