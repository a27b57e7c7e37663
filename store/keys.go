// Package store provides typed views over the kv.Env sub-databases, with
// the bit-exact binary key layouts specified for the index engine: every
// multi-byte integer key component is big-endian so lexicographic byte
// order equals numeric order. This mirrors
// meilisearch-core's store/mod.rs naming convention (each view wraps one
// named bucket, "store-<name>[-suffix]") adapted to bbolt bucket names.
package store

import "encoding/binary"

// Bucket name conventions, one per named sub-database (see SPEC_FULL §4.2).
const (
	BucketMain                  = "store-main"
	BucketPostingsLists         = "store-postings-lists"
	BucketDocumentsFields       = "store-documents-fields"
	BucketDocumentsFieldsCounts = "store-documents-fields-counts"
	BucketDocsWords             = "store-docs-words"
	BucketSynonyms              = "store-synonyms"
	BucketUpdates               = "store-updates"
	BucketUpdatesResults        = "store-updates-results"
)

// DocIndex is the fixed 16-byte posting-list entry.
type DocIndex struct {
	DocumentID uint64
	Attribute  uint16 // an IndexedPos
	WordIndex  uint16
	CharIndex  uint16
	CharLength uint16
}

const DocIndexSize = 8 + 2 + 2 + 2 + 2

func (d DocIndex) Encode() []byte {
	b := make([]byte, DocIndexSize)
	binary.BigEndian.PutUint64(b[0:8], d.DocumentID)
	binary.BigEndian.PutUint16(b[8:10], d.Attribute)
	binary.BigEndian.PutUint16(b[10:12], d.WordIndex)
	binary.BigEndian.PutUint16(b[12:14], d.CharIndex)
	binary.BigEndian.PutUint16(b[14:16], d.CharLength)
	return b
}

func DecodeDocIndex(b []byte) DocIndex {
	return DocIndex{
		DocumentID: binary.BigEndian.Uint64(b[0:8]),
		Attribute:  binary.BigEndian.Uint16(b[8:10]),
		WordIndex:  binary.BigEndian.Uint16(b[10:12]),
		CharIndex:  binary.BigEndian.Uint16(b[12:14]),
		CharLength: binary.BigEndian.Uint16(b[14:16]),
	}
}

// DecodeDocIndexList interprets value as a dense, sorted array of DocIndex
// records, decoding them into a freshly allocated slice that stays valid
// after the bucket value is released.
func DecodeDocIndexList(value []byte) []DocIndex {
	n := len(value) / DocIndexSize
	out := make([]DocIndex, n)
	for i := 0; i < n; i++ {
		out[i] = DecodeDocIndex(value[i*DocIndexSize : (i+1)*DocIndexSize])
	}
	return out
}

func EncodeDocIndexList(list []DocIndex) []byte {
	b := make([]byte, len(list)*DocIndexSize)
	for i, d := range list {
		copy(b[i*DocIndexSize:(i+1)*DocIndexSize], d.Encode())
	}
	return b
}

// DocumentFieldStoredKey addresses the raw stored JSON value of one field
// of one document: {docid BE u64, field_id BE u16}.
type DocumentFieldStoredKey struct {
	DocID   uint64
	FieldID uint16
}

func (k DocumentFieldStoredKey) Encode() []byte {
	b := make([]byte, 10)
	binary.BigEndian.PutUint64(b[0:8], k.DocID)
	binary.BigEndian.PutUint16(b[8:10], k.FieldID)
	return b
}

func DecodeDocumentFieldStoredKey(b []byte) DocumentFieldStoredKey {
	return DocumentFieldStoredKey{
		DocID:   binary.BigEndian.Uint64(b[0:8]),
		FieldID: binary.BigEndian.Uint16(b[8:10]),
	}
}

// DocumentFieldIndexedKey addresses the token count of one (doc, indexed
// position) pair: {docid BE u64, indexed_pos BE u16}.
type DocumentFieldIndexedKey struct {
	DocID      uint64
	IndexedPos uint16
}

func (k DocumentFieldIndexedKey) Encode() []byte {
	b := make([]byte, 10)
	binary.BigEndian.PutUint64(b[0:8], k.DocID)
	binary.BigEndian.PutUint16(b[8:10], k.IndexedPos)
	return b
}

func DecodeDocumentFieldIndexedKey(b []byte) DocumentFieldIndexedKey {
	return DocumentFieldIndexedKey{
		DocID:      binary.BigEndian.Uint64(b[0:8]),
		IndexedPos: binary.BigEndian.Uint16(b[8:10]),
	}
}

// DocIDKey encodes a bare document id, used as the DocsWords key and as the
// prefix for scanning a document's fields.
func DocIDKey(docID uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, docID)
	return b
}

// UpdateIDKey encodes an update id for the Updates/UpdatesResults stores.
func UpdateIDKey(id uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}

func DecodeUpdateIDKey(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
