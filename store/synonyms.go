package store

import (
	"bytes"
	"encoding/gob"

	"github.com/gcbaptista/ftscore/kv"
)

// Synonyms maps a lowercased phrase to its set of alternative phrases.
// meilisearch-core stores the alternatives as an FST set; alternatives are
// looked up wholesale during automaton building (never streamed), so a
// gob-encoded string slice gives the same semantics with less machinery.
type Synonyms struct{ Bucket kv.Bucket }

func (s Synonyms) Get(phrase string) ([]string, error) {
	raw := s.Bucket.Get([]byte(phrase))
	if raw == nil {
		return nil, nil
	}
	var alts []string
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&alts); err != nil {
		return nil, err
	}
	return alts, nil
}

func (s Synonyms) Put(phrase string, alternatives []string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(alternatives); err != nil {
		return err
	}
	return s.Bucket.Put([]byte(phrase), buf.Bytes())
}

func (s Synonyms) Clear() error { return s.Bucket.Clear() }
