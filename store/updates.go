package store

import "github.com/gcbaptista/ftscore/kv"

// Updates and UpdatesResults store gob-encoded records keyed by a
// big-endian update id; they don't know the record's Go type (that would
// create an import cycle with package update), so both views deal in raw
// bytes and leave (de)serialization to the caller.

type Updates struct{ Bucket kv.Bucket }

func (u Updates) Put(id uint64, record []byte) error {
	return u.Bucket.Put(UpdateIDKey(id), record)
}

func (u Updates) Get(id uint64) []byte { return u.Bucket.Get(UpdateIDKey(id)) }

func (u Updates) Delete(id uint64) error { return u.Bucket.Delete(UpdateIDKey(id)) }

// Last returns the greatest enqueued update id and whether any exist.
func (u Updates) Last() (uint64, bool) {
	k, _ := u.Bucket.Last()
	if k == nil {
		return 0, false
	}
	return DecodeUpdateIDKey(k), true
}

// ForEachFrom visits every update id >= from in ascending order.
func (u Updates) ForEachFrom(from uint64, fn func(id uint64, record []byte) bool) {
	c := u.Bucket.Cursor()
	for k, v := c.Seek(UpdateIDKey(from)); k != nil; k, v = c.Next() {
		if !fn(DecodeUpdateIDKey(k), v) {
			return
		}
	}
}

type UpdatesResults struct{ Bucket kv.Bucket }

func (u UpdatesResults) Put(id uint64, record []byte) error {
	return u.Bucket.Put(UpdateIDKey(id), record)
}

func (u UpdatesResults) Get(id uint64) []byte { return u.Bucket.Get(UpdateIDKey(id)) }

func (u UpdatesResults) Last() (uint64, bool) {
	k, _ := u.Bucket.Last()
	if k == nil {
		return 0, false
	}
	return DecodeUpdateIDKey(k), true
}

func (u UpdatesResults) ForEachFrom(from uint64, fn func(id uint64, record []byte) bool) {
	c := u.Bucket.Cursor()
	for k, v := c.Seek(UpdateIDKey(from)); k != nil; k, v = c.Next() {
		if !fn(DecodeUpdateIDKey(k), v) {
			return
		}
	}
}
