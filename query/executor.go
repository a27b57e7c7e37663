package query

import (
	"sort"

	"github.com/blevesearch/vellum"

	"github.com/gcbaptista/ftscore/automaton"
	"github.com/gcbaptista/ftscore/store"
)

// Execute walks every automaton against the words FST, fetches each
// candidate word's posting list, and groups the results into one
// RawDocument per matched document id (SPEC_FULL §4.6). candidateCap bounds
// how many dictionary words a single automaton may expand into (0 means
// automaton.DefaultCandidateCap).
func Execute(wordsFst *vellum.FST, postings store.PostingsLists, automatons []automaton.QueryWordAutomaton, candidateCap int) ([]*RawDocument, error) {
	byDoc := make(map[uint64]*RawDocument)

	for _, a := range automatons {
		words, err := automaton.Candidates(wordsFst, a.Automaton, candidateCap)
		if err != nil {
			return nil, err
		}
		for _, word := range words {
			list := postings.Get([]byte(word))
			if len(list) == 0 {
				continue
			}
			editDistance := damerauLevenshtein(a.Query, word, 2)
			isExact := a.IsExact && word == a.Query

			grouped := groupByDoc(list)
			for docID, entries := range grouped {
				doc, ok := byDoc[docID]
				if !ok {
					doc = newRawDocument(docID)
					byDoc[docID] = doc
				}
				doc.considerMatch(a.QueryIndex, word, editDistance, isExact, entries)
			}
		}
	}

	out := make([]*RawDocument, 0, len(byDoc))
	for _, d := range byDoc {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentID < out[j].DocumentID })
	return out, nil
}

func groupByDoc(list []store.DocIndex) map[uint64][]store.DocIndex {
	grouped := make(map[uint64][]store.DocIndex)
	for _, e := range list {
		grouped[e.DocumentID] = append(grouped[e.DocumentID], e)
	}
	return grouped
}
