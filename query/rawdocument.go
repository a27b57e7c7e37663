// Package query implements the query executor and bucket-sort ranking
// pipeline (SPEC_FULL §4.6–§4.7, §4.9): expanding automatons into candidate
// words, fetching posting lists, grouping by document, and ranking the
// resulting RawDocuments with an ordered, early-terminating criterion
// pipeline.
package query

import "github.com/gcbaptista/ftscore/store"

// Match is the single best posting found for one query_index within one
// document: the lowest edit-distance candidate word seen so far, with its
// contributing DocIndex entries (one per occurrence of that word in the
// document, across all of its indexed attributes).
type Match struct {
	QueryIndex   int
	Word         string
	EditDistance int
	IsExact      bool
	Entries      []store.DocIndex
}

// RawDocument accumulates, per document, the best Match for each matched
// query_index — the per-doc accumulator the spec calls a RawDocument.
type RawDocument struct {
	DocumentID uint64
	Matches    map[int]Match
}

func newRawDocument(docID uint64) *RawDocument {
	return &RawDocument{DocumentID: docID, Matches: make(map[int]Match)}
}

// considerMatch updates doc's Match for queryIndex if the candidate is
// strictly better than what's recorded (lower edit distance, or an exact
// match beating a same-distance non-exact one).
func (d *RawDocument) considerMatch(queryIndex int, word string, editDistance int, isExact bool, entries []store.DocIndex) {
	current, ok := d.Matches[queryIndex]
	if !ok || better(editDistance, isExact, current.EditDistance, current.IsExact) {
		d.Matches[queryIndex] = Match{
			QueryIndex:   queryIndex,
			Word:         word,
			EditDistance: editDistance,
			IsExact:      isExact,
			Entries:      entries,
		}
	}
}

func better(editDistance int, isExact bool, currentDistance int, currentExact bool) bool {
	if editDistance != currentDistance {
		return editDistance < currentDistance
	}
	return isExact && !currentExact
}

func (d *RawDocument) sortedQueryIndexes() []int {
	idxs := make([]int, 0, len(d.Matches))
	for qi := range d.Matches {
		idxs = append(idxs, qi)
	}
	// insertion sort: query_index sets are tiny (bounded by automaton cap).
	for i := 1; i < len(idxs); i++ {
		for j := i; j > 0 && idxs[j] < idxs[j-1]; j-- {
			idxs[j], idxs[j-1] = idxs[j-1], idxs[j]
		}
	}
	return idxs
}
