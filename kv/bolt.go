package kv

import (
	"bytes"
	"context"

	bolt "go.etcd.io/bbolt"
)

// BoltEnv adapts a go.etcd.io/bbolt database to the Env contract. bbolt
// already enforces single-writer/many-reader MVCC semantics and orders keys
// lexicographically within a bucket, so this adapter is a thin translation
// layer rather than a reimplementation.
type BoltEnv struct {
	db *bolt.DB
}

// OpenBoltEnv opens (creating if absent) the bbolt file at path.
func OpenBoltEnv(path string) (*BoltEnv, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	return &BoltEnv{db: db}, nil
}

func (e *BoltEnv) Close() error { return e.db.Close() }

func (e *BoltEnv) View(ctx context.Context, fn func(Tx) error) error {
	return e.db.View(func(btx *bolt.Tx) error {
		return fn(&boltTx{tx: btx, writable: false})
	})
}

func (e *BoltEnv) Update(ctx context.Context, fn func(Tx) error) error {
	return e.db.Update(func(btx *bolt.Tx) error {
		return fn(&boltTx{tx: btx, writable: true})
	})
}

type boltTx struct {
	tx       *bolt.Tx
	writable bool
}

func (t *boltTx) Writable() bool { return t.writable }

func (t *boltTx) Bucket(name string) (Bucket, error) {
	nameBytes := []byte(name)
	if t.writable {
		b, err := t.tx.CreateBucketIfNotExists(nameBytes)
		if err != nil {
			return nil, err
		}
		return &boltBucket{b: b}, nil
	}
	b := t.tx.Bucket(nameBytes)
	if b == nil {
		return &emptyBucket{}, nil
	}
	return &boltBucket{b: b}, nil
}

// emptyBucket answers an as-yet-uncreated bucket during a read transaction:
// every read operation behaves as if the bucket exists and is empty, which
// matches the meaning of "no sub-database created yet" for a fresh index.
type emptyBucket struct{}

func (emptyBucket) Get([]byte) []byte                               { return nil }
func (emptyBucket) Put([]byte, []byte) error                        { return bolt.ErrTxNotWritable }
func (emptyBucket) Delete([]byte) error                             { return bolt.ErrTxNotWritable }
func (emptyBucket) Cursor() Cursor                                  { return &emptyCursor{} }
func (emptyBucket) ForEachPrefix([]byte, func(k, v []byte) bool)     {}
func (emptyBucket) DeletePrefix([]byte) error                       { return bolt.ErrTxNotWritable }
func (emptyBucket) Last() ([]byte, []byte)                          { return nil, nil }
func (emptyBucket) Clear() error                                    { return bolt.ErrTxNotWritable }

type emptyCursor struct{}

func (emptyCursor) First() (k, v []byte)           { return nil, nil }
func (emptyCursor) Last() (k, v []byte)            { return nil, nil }
func (emptyCursor) Seek(prefix []byte) (k, v []byte) { return nil, nil }
func (emptyCursor) Next() (k, v []byte)            { return nil, nil }
func (emptyCursor) Prev() (k, v []byte)            { return nil, nil }

type boltBucket struct{ b *bolt.Bucket }

func (bk *boltBucket) Get(key []byte) []byte { return bk.b.Get(key) }

func (bk *boltBucket) Put(key, value []byte) error { return bk.b.Put(key, value) }

func (bk *boltBucket) Delete(key []byte) error { return bk.b.Delete(key) }

func (bk *boltBucket) Cursor() Cursor { return &boltCursor{c: bk.b.Cursor()} }

func (bk *boltBucket) ForEachPrefix(prefix []byte, fn func(key, value []byte) bool) {
	c := bk.b.Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if !fn(k, v) {
			return
		}
	}
}

func (bk *boltBucket) DeletePrefix(prefix []byte) error {
	c := bk.b.Cursor()
	var keys [][]byte
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}
	for _, k := range keys {
		if err := bk.b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func (bk *boltBucket) Last() (key, value []byte) {
	c := bk.b.Cursor()
	return c.Last()
}

func (bk *boltBucket) Clear() error {
	c := bk.b.Cursor()
	var keys [][]byte
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}
	for _, k := range keys {
		if err := bk.b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// Cursor iterates a bucket's keys in ascending byte order.
type Cursor interface {
	First() (key, value []byte)
	Last() (key, value []byte)
	Seek(prefix []byte) (key, value []byte)
	Next() (key, value []byte)
	Prev() (key, value []byte)
}

type boltCursor struct{ c *bolt.Cursor }

func (bc *boltCursor) First() (key, value []byte)         { return bc.c.First() }
func (bc *boltCursor) Last() (key, value []byte)          { return bc.c.Last() }
func (bc *boltCursor) Seek(prefix []byte) (key, value []byte) { return bc.c.Seek(prefix) }
func (bc *boltCursor) Next() (key, value []byte)          { return bc.c.Next() }
func (bc *boltCursor) Prev() (key, value []byte)          { return bc.c.Prev() }
