package store

import "github.com/gcbaptista/ftscore/kv"

// DocumentsFields stores the raw JSON bytes of one field of one document,
// keyed by DocumentFieldStoredKey.
type DocumentsFields struct{ Bucket kv.Bucket }

func (d DocumentsFields) Get(docID uint64, fieldID uint16) []byte {
	return d.Bucket.Get(DocumentFieldStoredKey{DocID: docID, FieldID: fieldID}.Encode())
}

func (d DocumentsFields) Put(docID uint64, fieldID uint16, value []byte) error {
	return d.Bucket.Put(DocumentFieldStoredKey{DocID: docID, FieldID: fieldID}.Encode(), value)
}

// ForEachField visits every (fieldID, value) pair stored for docID, in
// FieldId order.
func (d DocumentsFields) ForEachField(docID uint64, fn func(fieldID uint16, value []byte)) {
	d.Bucket.ForEachPrefix(DocIDKey(docID), func(key, value []byte) bool {
		k := DecodeDocumentFieldStoredKey(key)
		fn(k.FieldID, value)
		return true
	})
}

// DeleteDocument removes every stored field for docID.
func (d DocumentsFields) DeleteDocument(docID uint64) error {
	return d.Bucket.DeletePrefix(DocIDKey(docID))
}

func (d DocumentsFields) Clear() error { return d.Bucket.Clear() }

// DocumentsFieldsCounts stores, for each (doc, indexed position), the
// number of non-stop tokens contributed by that field. The counts are
// written on document addition and rewritten on reindex; no ranking
// criterion reads them.
type DocumentsFieldsCounts struct{ Bucket kv.Bucket }

func (d DocumentsFieldsCounts) Get(docID uint64, indexedPos uint16) (uint32, bool) {
	raw := d.Bucket.Get(DocumentFieldIndexedKey{DocID: docID, IndexedPos: indexedPos}.Encode())
	if len(raw) != 4 {
		return 0, false
	}
	return beUint32(raw), true
}

func (d DocumentsFieldsCounts) Put(docID uint64, indexedPos uint16, count uint32) error {
	return d.Bucket.Put(DocumentFieldIndexedKey{DocID: docID, IndexedPos: indexedPos}.Encode(), beBytes32(count))
}

func (d DocumentsFieldsCounts) DeleteDocument(docID uint64) error {
	return d.Bucket.DeletePrefix(DocIDKey(docID))
}

func (d DocumentsFieldsCounts) Clear() error { return d.Bucket.Clear() }

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func beBytes32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}
