package store

import "github.com/gcbaptista/ftscore/kv"

// PostingsLists maps a lowercased word (raw UTF-8 bytes) to its dense,
// (document_id, attribute, word_index)-sorted DocIndex array.
type PostingsLists struct{ Bucket kv.Bucket }

func (p PostingsLists) Get(word []byte) []DocIndex {
	raw := p.Bucket.Get(word)
	if raw == nil {
		return nil
	}
	return DecodeDocIndexList(raw)
}

func (p PostingsLists) GetRaw(word []byte) []byte { return p.Bucket.Get(word) }

func (p PostingsLists) Put(word []byte, entries []DocIndex) error {
	return p.Bucket.Put(word, EncodeDocIndexList(entries))
}

func (p PostingsLists) Delete(word []byte) error { return p.Bucket.Delete(word) }

// DeletePostingsList removes the list entirely; used by stop-word addition.
func (p PostingsLists) DeletePostingsList(word []byte) error { return p.Bucket.Delete(word) }

// ForEach visits every (word, list) pair in ascending key order.
func (p PostingsLists) ForEach(fn func(word []byte, list []DocIndex) bool) {
	c := p.Bucket.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if !fn(k, DecodeDocIndexList(v)) {
			return
		}
	}
}

func (p PostingsLists) Clear() error { return p.Bucket.Clear() }
