package query

import "github.com/gcbaptista/ftscore/rankedmap"

// DistinctMap deduplicates a sorted document stream by a distinct
// attribute's RankedMap value: after `limit` documents sharing the same
// value have been accepted, further ones are skipped (SPEC_FULL §4.9).
type DistinctMap struct {
	rm      *rankedmap.Map
	fieldID uint16
	limit   int
	seen    map[rankedmap.Number]int
}

// NewDistinctMap builds a distinct filter over fieldID in rm, accepting up
// to limit documents per distinct value (limit <= 0 means unlimited, i.e.
// distinct filtering disabled).
func NewDistinctMap(rm *rankedmap.Map, fieldID uint16, limit int) *DistinctMap {
	return &DistinctMap{rm: rm, fieldID: fieldID, limit: limit, seen: make(map[rankedmap.Number]int)}
}

// Accept reports whether doc should be kept, incrementing its value's
// running count as a side effect.
func (d *DistinctMap) Accept(doc *RawDocument) bool {
	if d == nil || d.limit <= 0 {
		return true
	}
	val := d.rm.Get(doc.DocumentID, d.fieldID)
	count := d.seen[val]
	if count >= d.limit {
		return false
	}
	d.seen[val] = count + 1
	return true
}

// Filter applies Accept across an already-ranked document slice, preserving
// order.
func Filter(docs []*RawDocument, distinct *DistinctMap) []*RawDocument {
	if distinct == nil {
		return docs
	}
	out := make([]*RawDocument, 0, len(docs))
	for _, d := range docs {
		if distinct.Accept(d) {
			out = append(out, d)
		}
	}
	return out
}
