package query

import (
	"strings"

	"github.com/blevesearch/vellum"

	"github.com/gcbaptista/ftscore/automaton"
	"github.com/gcbaptista/ftscore/store"
	"github.com/gcbaptista/ftscore/tokenizer"
)

// Range is the requested offset/limit window of a query.
type Range struct {
	Offset int
	Limit  int
}

// Builder is the Embedding API's QueryBuilder (SPEC_FULL §6): it owns the
// tokenizer, synonym lookup and fan-out caps, and is reused across queries
// against one index. QueryBuilderWithCriteria is modeled by simply passing
// a different Criteria slice to Query.
type Builder struct {
	Tokenizer     tokenizer.Tokenizer
	SynonymLookup automaton.SynonymLookup
	AutomatonCap  int
	CandidateCap  int
}

func NewBuilder(tok tokenizer.Tokenizer, lookup automaton.SynonymLookup) *Builder {
	if tok == nil {
		tok = tokenizer.Default{}
	}
	return &Builder{Tokenizer: tok, SynonymLookup: lookup}
}

// tokenizeQuery tokenizes and lowercases q, dropping stop words (SPEC_FULL
// §4.5 step 1).
func tokenizeQuery(tok tokenizer.Tokenizer, q string, stopWords map[string]struct{}) []string {
	tokens := tok.Tokenize(q)
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		word := strings.ToLower(t.Word)
		if _, stop := stopWords[word]; stop {
			continue
		}
		out = append(out, word)
	}
	return out
}

// Query executes q against the dictionary/postings snapshot (wordsFst,
// postings), ranks the results with criteria (append Asc/Desc(field) from
// rm after DefaultCriteria() for user sort tie-breaks), applies an optional
// distinct filter, and returns the window requested by r.
func (b *Builder) Query(
	wordsFst *vellum.FST,
	postings store.PostingsLists,
	stopWords map[string]struct{},
	criteria []Criterion,
	distinct *DistinctMap,
	q string,
	r Range,
) ([]*RawDocument, error) {
	tokens := tokenizeQuery(b.Tokenizer, q, stopWords)
	if len(tokens) == 0 {
		return nil, nil
	}

	automatonCap := b.AutomatonCap
	if automatonCap == 0 {
		automatonCap = automaton.DefaultAutomatonCap
	}
	automatons, err := automaton.Build(tokens, b.SynonymLookup, automatonCap)
	if err != nil {
		return nil, err
	}

	raw, err := Execute(wordsFst, postings, automatons, b.CandidateCap)
	if err != nil {
		return nil, err
	}

	if distinct == nil {
		return BucketSort(raw, criteria, r.Offset, r.Limit), nil
	}

	// A distinct filter changes which documents occupy the requested
	// window, so bucket-sort must rank the full candidate set before
	// filtering; early termination is sacrificed in this case (SPEC_FULL
	// §4.9 trades off against §4.7's early-cut guarantee).
	full := BucketSort(raw, criteria, 0, len(raw))
	filtered := Filter(full, distinct)
	return windowOf(filtered, r), nil
}

func windowOf(docs []*RawDocument, r Range) []*RawDocument {
	if r.Offset >= len(docs) {
		return nil
	}
	end := r.Offset + r.Limit
	if end > len(docs) {
		end = len(docs)
	}
	return docs[r.Offset:end]
}

// AppendUserCriteria appends Asc/Desc criteria from a RankedMap to the
// default ordered criteria set.
func AppendUserCriteria(base []Criterion, user ...Criterion) []Criterion {
	out := make([]Criterion, 0, len(base)+len(user))
	out = append(out, base...)
	out = append(out, user...)
	return out
}
