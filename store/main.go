package store

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"time"

	"github.com/gcbaptista/ftscore/kv"
)

// Main is the poly-typed key space holding one index's singleton values:
// schema, the three FSTs, ranking configuration, the customs blob, the
// document counter and the creation timestamp. Each value lives under a
// fixed key within BucketMain, the way meilisearch-core's store::main
// multiplexes unrelated singletons into one sub-database.
type Main struct{ Bucket kv.Bucket }

var (
	keySchema         = []byte("schema")
	keyWordsFst       = []byte("words-fst")
	keyStopWordsFst   = []byte("stop-words-fst")
	keySynonymsFst    = []byte("synonyms-fst")
	keyRankingRules   = []byte("ranking-rules")
	keyRankingDistinct = []byte("ranking-distinct")
	keyCustoms        = []byte("customs")
	keyNumberOfDocs   = []byte("number-of-documents")
	keyCreatedAt      = []byte("created-at")
)

func (m Main) SchemaBytes() []byte { return m.Bucket.Get(keySchema) }

func (m Main) PutSchemaBytes(b []byte) error { return m.Bucket.Put(keySchema, b) }

func (m Main) DeleteSchema() error { return m.Bucket.Delete(keySchema) }

func (m Main) WordsFstBytes() []byte { return m.Bucket.Get(keyWordsFst) }

func (m Main) PutWordsFstBytes(b []byte) error { return m.Bucket.Put(keyWordsFst, b) }

func (m Main) StopWordsFstBytes() []byte { return m.Bucket.Get(keyStopWordsFst) }

func (m Main) PutStopWordsFstBytes(b []byte) error { return m.Bucket.Put(keyStopWordsFst, b) }

func (m Main) SynonymsFstBytes() []byte { return m.Bucket.Get(keySynonymsFst) }

func (m Main) PutSynonymsFstBytes(b []byte) error { return m.Bucket.Put(keySynonymsFst, b) }

// RankingRule is one ordered ranking criterion name, e.g. "typo", "asc(price)".
type RankingRule string

func (m Main) RankingRules() ([]RankingRule, error) {
	raw := m.Bucket.Get(keyRankingRules)
	if raw == nil {
		return nil, nil
	}
	var rules []RankingRule
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (m Main) PutRankingRules(rules []RankingRule) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rules); err != nil {
		return err
	}
	return m.Bucket.Put(keyRankingRules, buf.Bytes())
}

func (m Main) DeleteRankingRules() error { return m.Bucket.Delete(keyRankingRules) }

func (m Main) RankingDistinct() string { return string(m.Bucket.Get(keyRankingDistinct)) }

func (m Main) PutRankingDistinct(field string) error {
	return m.Bucket.Put(keyRankingDistinct, []byte(field))
}

func (m Main) DeleteRankingDistinct() error { return m.Bucket.Delete(keyRankingDistinct) }

func (m Main) Customs() []byte { return m.Bucket.Get(keyCustoms) }

func (m Main) PutCustoms(b []byte) error { return m.Bucket.Put(keyCustoms, b) }

func (m Main) NumberOfDocuments() uint64 {
	raw := m.Bucket.Get(keyNumberOfDocs)
	if len(raw) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(raw)
}

func (m Main) PutNumberOfDocuments(n uint64) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return m.Bucket.Put(keyNumberOfDocs, b)
}

func (m Main) CreatedAt() (time.Time, bool) {
	raw := m.Bucket.Get(keyCreatedAt)
	if raw == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (m Main) PutCreatedAt(t time.Time) error {
	return m.Bucket.Put(keyCreatedAt, []byte(t.Format(time.RFC3339Nano)))
}

func (m Main) Clear() error { return m.Bucket.Clear() }
