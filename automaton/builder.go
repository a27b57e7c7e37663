package automaton

import (
	"github.com/blevesearch/vellum"
	"github.com/blevesearch/vellum/levenshtein"

	ftserrors "github.com/gcbaptista/ftscore/errors"
)

// DefaultAutomatonCap and DefaultCandidateCap guard against pathological
// queries fanning out into unbounded work (SPEC_FULL §9 design note): the
// source this spec was distilled from left this unbounded, so these are a
// deliberately chosen, configurable default rather than a guessed constant.
const (
	DefaultAutomatonCap = 50
	DefaultCandidateCap = 1000
)

// editDistanceBudget implements the length-tiered typo tolerance table:
// 0 edits for words of length <= 4, 1 edit for 5..8, 2 edits for >= 9.
func editDistanceBudget(word string) uint8 {
	n := len([]rune(word))
	switch {
	case n <= 4:
		return 0
	case n <= 8:
		return 1
	default:
		return 2
	}
}

// QueryWordAutomaton is one expanded matcher against the words dictionary:
// an original query string, its compiled Levenshtein DFA, whether it
// requires an exact (zero-typo, non-prefix) match, and the query_index
// ordering it shares with any sibling automatons (synonym alternatives,
// phrase-concats) derived from the same source token.
type QueryWordAutomaton struct {
	Query      string
	Automaton  vellum.Automaton
	IsExact    bool
	IsPrefix   bool
	QueryIndex int
}

// levBuilders holds, per edit-distance tier, the exact-match builder and
// the "anything may follow" prefix builder; the two are distinct
// levenshtein.LevenshteinAutomatonBuilder instances (its includePrefix
// constructor argument bakes the mode into the compiled DFA, it isn't a
// per-query choice) so the final query token's prefix variant must be
// compiled from its own builder, not the exact-match one.
var levExact, levPrefix [3]*levenshtein.LevenshteinAutomatonBuilder

func init() {
	for edits := uint8(0); edits <= 2; edits++ {
		exact, err := levenshtein.NewLevenshteinAutomatonBuilder(edits, false)
		if err != nil {
			panic(err)
		}
		prefix, err := levenshtein.NewLevenshteinAutomatonBuilder(edits, true)
		if err != nil {
			panic(err)
		}
		levExact[edits] = exact
		levPrefix[edits] = prefix
	}
}

func builderFor(edits uint8, prefix bool) *levenshtein.LevenshteinAutomatonBuilder {
	if edits > 2 {
		edits = 2
	}
	if prefix {
		return levPrefix[edits]
	}
	return levExact[edits]
}

// buildDFA compiles a Levenshtein automaton for word with the given edit
// budget; prefix selects the "anything may follow" builder used for the
// final query token (SPEC_FULL §4.5 step 4), keeping non-final tokens on
// the exact-match builder.
func buildDFA(word string, edits uint8, prefix bool) (vellum.Automaton, error) {
	dfa, err := builderFor(edits, prefix).BuildDfa(word, edits)
	if err != nil {
		return nil, ftserrors.NewFstError(err)
	}
	return dfa, nil
}

// SynonymLookup resolves the alternative phrases for a lowercased phrase,
// backed by the Synonyms store.
type SynonymLookup func(phrase string) ([]string, error)

// Build expands a tokenized, stop-word-filtered query into the ordered set
// of word automatons per SPEC_FULL §4.5: phrase-concat pairs, synonym
// alternatives, and a prefix variant of the final token. Automatons are
// deduplicated by (query, isPrefix) and query_index is renumbered
// contiguously from 0. automatonCap bounds the number of automatons
// returned; 0 means DefaultAutomatonCap.
func Build(tokens []string, lookup SynonymLookup, automatonCap int) ([]QueryWordAutomaton, error) {
	if automatonCap <= 0 {
		automatonCap = DefaultAutomatonCap
	}

	type candidate struct {
		query      string
		isPrefix   bool
		isPhrase   bool
		groupIndex int
	}
	var candidates []candidate

	for i, tok := range tokens {
		isLast := i == len(tokens)-1
		candidates = append(candidates, candidate{query: tok, isPrefix: isLast, groupIndex: i})

		if lookup != nil {
			alts, err := lookup(tok)
			if err != nil {
				return nil, err
			}
			for _, alt := range alts {
				candidates = append(candidates, candidate{query: alt, isPrefix: isLast, groupIndex: i})
			}
		}
	}

	// phrase-concat automatons for each consecutive pair, exact match only.
	for i := 0; i+1 < len(tokens); i++ {
		phrase := tokens[i] + tokens[i+1]
		candidates = append(candidates, candidate{query: phrase, isPrefix: false, isPhrase: true, groupIndex: i})
	}

	seen := make(map[string]struct{}, len(candidates))
	var out []QueryWordAutomaton
	nextIndex := 0
	groupToIndex := make(map[int]int)
	for _, c := range candidates {
		key := c.query + "\x00"
		if c.isPrefix {
			key += "p"
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		idx, ok := groupToIndex[c.groupIndex]
		if !ok {
			idx = nextIndex
			groupToIndex[c.groupIndex] = idx
			nextIndex++
		}

		edits := editDistanceBudget(c.query)
		if c.isPhrase {
			edits = 0
		}
		dfa, err := buildDFA(c.query, edits, c.isPrefix)
		if err != nil {
			return nil, err
		}
		out = append(out, QueryWordAutomaton{
			Query:      c.query,
			Automaton:  dfa,
			IsExact:    edits == 0 && !c.isPrefix,
			IsPrefix:   c.isPrefix,
			QueryIndex: idx,
		})
		if len(out) >= automatonCap {
			break
		}
	}
	return out, nil
}

// Candidates streams every word in fst accepted by aut, stopping at cap
// matches (0 means DefaultCandidateCap). It returns the matched words in
// dictionary order.
func Candidates(fst *vellum.FST, aut vellum.Automaton, cap int) ([]string, error) {
	if cap <= 0 {
		cap = DefaultCandidateCap
	}
	itr, err := fst.Search(aut, nil, nil)
	if err != nil && err != vellum.ErrIteratorDone {
		return nil, ftserrors.NewFstError(err)
	}
	var words []string
	for err == nil {
		key, _ := itr.Current()
		words = append(words, string(key))
		if len(words) >= cap {
			break
		}
		err = itr.Next()
	}
	if err != nil && err != vellum.ErrIteratorDone {
		return nil, ftserrors.NewFstError(err)
	}
	return words, nil
}
