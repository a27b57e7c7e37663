package store

import (
	"bytes"
	"encoding/gob"

	"github.com/gcbaptista/ftscore/kv"
)

// DocsWords maps a document id to the set of words it contains, so that
// deletion and reindexing can find every posting list a document
// participates in without scanning the whole dictionary. The spec models
// this as an FST set; a gob-encoded sorted string slice is the Go-idiomatic
// equivalent used here (the words FST intersected at query time is the
// dictionary-wide automaton target, not this per-document set).
type DocsWords struct{ Bucket kv.Bucket }

func (d DocsWords) Get(docID uint64) ([]string, error) {
	raw := d.Bucket.Get(DocIDKey(docID))
	if raw == nil {
		return nil, nil
	}
	var words []string
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&words); err != nil {
		return nil, err
	}
	return words, nil
}

func (d DocsWords) Put(docID uint64, words []string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(words); err != nil {
		return err
	}
	return d.Bucket.Put(DocIDKey(docID), buf.Bytes())
}

func (d DocsWords) Delete(docID uint64) error { return d.Bucket.Delete(DocIDKey(docID)) }

func (d DocsWords) Clear() error { return d.Bucket.Clear() }

// AllDocIDs returns every document id present, in ascending order. Used by
// reindexing, which must enumerate every stored document before rewriting
// postings.
func (d DocsWords) AllDocIDs() ([]uint64, error) {
	var ids []uint64
	c := d.Bucket.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		if len(k) != 8 {
			continue
		}
		ids = append(ids, DecodeUpdateIDKey(k))
	}
	return ids, nil
}
