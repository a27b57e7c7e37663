package query

import (
	"sort"

	"github.com/gcbaptista/ftscore/rankedmap"
)

// Criterion is a total order over RawDocuments with a group equivalence:
// Less defines the order, Equal defines which documents belong in the same
// bucket sub-partition (SPEC_FULL §4.7).
type Criterion interface {
	Less(a, b *RawDocument) bool
	Equal(a, b *RawDocument) bool
}

type funcCriterion struct {
	key  func(*RawDocument) int
	desc bool
}

func (c funcCriterion) Less(a, b *RawDocument) bool {
	ka, kb := c.key(a), c.key(b)
	if c.desc {
		return ka > kb
	}
	return ka < kb
}

func (c funcCriterion) Equal(a, b *RawDocument) bool { return c.key(a) == c.key(b) }

// Typo: sum of edit distances over one best match per query_index; smaller
// is better.
func Typo() Criterion {
	return funcCriterion{key: func(d *RawDocument) int {
		sum := 0
		for _, m := range d.Matches {
			sum += m.EditDistance
		}
		return sum
	}}
}

// Words: number of distinct query_index values matched; larger is better.
func Words() Criterion {
	return funcCriterion{desc: true, key: func(d *RawDocument) int { return len(d.Matches) }}
}

// proximity(a,b) = |word_index(a) - word_index(b) - 1| within the same
// attribute, else 8.
func proximity(a, b Match) int {
	if len(a.Entries) == 0 || len(b.Entries) == 0 {
		return 8
	}
	ea, eb := a.Entries[0], b.Entries[0]
	if ea.Attribute != eb.Attribute {
		return 8
	}
	diff := int(ea.WordIndex) - int(eb.WordIndex) - 1
	if diff < 0 {
		diff = -diff
	}
	return diff
}

// Proximity: sum over adjacent matched query_indexes of proximity(a,b);
// smaller is better.
func Proximity() Criterion {
	return funcCriterion{key: func(d *RawDocument) int {
		idxs := d.sortedQueryIndexes()
		sum := 0
		for i := 1; i < len(idxs); i++ {
			if idxs[i] != idxs[i-1]+1 {
				continue
			}
			sum += proximity(d.Matches[idxs[i-1]], d.Matches[idxs[i]])
		}
		return sum
	}}
}

// Attribute: smallest IndexedPos among best matches; smaller is better.
func Attribute() Criterion {
	return funcCriterion{key: func(d *RawDocument) int {
		smallest := -1
		for _, m := range d.Matches {
			if len(m.Entries) == 0 {
				continue
			}
			attr := int(m.Entries[0].Attribute)
			if smallest == -1 || attr < smallest {
				smallest = attr
			}
		}
		if smallest == -1 {
			return 1<<31 - 1
		}
		return smallest
	}}
}

// WordsPosition: smallest word_index among best matches; smaller is better.
func WordsPosition() Criterion {
	return funcCriterion{key: func(d *RawDocument) int {
		smallest := -1
		for _, m := range d.Matches {
			if len(m.Entries) == 0 {
				continue
			}
			wi := int(m.Entries[0].WordIndex)
			if smallest == -1 || wi < smallest {
				smallest = wi
			}
		}
		if smallest == -1 {
			return 1<<31 - 1
		}
		return smallest
	}}
}

// Exact: count of query tokens whose match was flagged exact; larger is
// better.
func Exact() Criterion {
	return funcCriterion{desc: true, key: func(d *RawDocument) int {
		count := 0
		for _, m := range d.Matches {
			if m.IsExact {
				count++
			}
		}
		return count
	}}
}

// rankedCriterion implements Asc/Desc(field) over the RankedMap, nulls
// sorting last regardless of direction.
type rankedCriterion struct {
	rm      *rankedmap.Map
	fieldID uint16
	desc    bool
}

// Asc returns an ascending RankedMap criterion for fieldID.
func Asc(rm *rankedmap.Map, fieldID uint16) Criterion {
	return rankedCriterion{rm: rm, fieldID: fieldID, desc: false}
}

// Desc returns a descending RankedMap criterion for fieldID.
func Desc(rm *rankedmap.Map, fieldID uint16) Criterion {
	return rankedCriterion{rm: rm, fieldID: fieldID, desc: true}
}

func (c rankedCriterion) value(d *RawDocument) rankedmap.Number {
	return c.rm.Get(d.DocumentID, c.fieldID)
}

func (c rankedCriterion) Less(a, b *RawDocument) bool {
	va, vb := c.value(a), c.value(b)
	if c.desc {
		if va.Kind == rankedmap.KindNull || vb.Kind == rankedmap.KindNull {
			return rankedmap.Less(va, vb)
		}
		return rankedmap.Less(vb, va)
	}
	return rankedmap.Less(va, vb)
}

func (c rankedCriterion) Equal(a, b *RawDocument) bool {
	va, vb := c.value(a), c.value(b)
	return !rankedmap.Less(va, vb) && !rankedmap.Less(vb, va)
}

// DefaultCriteria returns the built-in ranking order: Typo, Words,
// Proximity, Attribute, WordsPosition, Exact. Callers append user
// Asc/Desc criteria after this slice.
func DefaultCriteria() []Criterion {
	return []Criterion{Typo(), Words(), Proximity(), Attribute(), WordsPosition(), Exact()}
}

// BucketSort ranks docs by criteria in order, splitting each bucket into
// contiguous equal-rank sub-buckets and recursing, stopping once
// offset+limit finalized documents have been produced from the top
// (SPEC_FULL §4.7). docs is consumed (sorted in place per bucket) and the
// final [offset:offset+limit) slice is returned.
func BucketSort(docs []*RawDocument, criteria []Criterion, offset, limit int) []*RawDocument {
	target := offset + limit
	result := make([]*RawDocument, 0, min2(len(docs), target))

	var recurse func(bucket []*RawDocument, critIdx int)
	recurse = func(bucket []*RawDocument, critIdx int) {
		if len(result) >= target {
			return
		}
		if len(bucket) <= 1 || critIdx >= len(criteria) {
			result = append(result, bucket...)
			return
		}
		crit := criteria[critIdx]
		sort.SliceStable(bucket, func(i, j int) bool { return crit.Less(bucket[i], bucket[j]) })

		i := 0
		for i < len(bucket) {
			j := i + 1
			for j < len(bucket) && crit.Equal(bucket[i], bucket[j]) {
				j++
			}
			recurse(bucket[i:j], critIdx+1)
			if len(result) >= target {
				return
			}
			i = j
		}
	}
	recurse(docs, 0)

	if offset >= len(result) {
		return nil
	}
	end := len(result)
	if end > target {
		end = target
	}
	return result[offset:end]
}
