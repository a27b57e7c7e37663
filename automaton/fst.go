// Package automaton builds and queries the FST-backed word dictionary and
// the typo-tolerant, prefix, synonym and phrase-concat query automatons
// (SPEC_FULL §4.5) on top of github.com/blevesearch/vellum and
// vellum/levenshtein: vellum supplies the FST engine and the Levenshtein
// automaton construction that the words-FST-rebuild step and the query
// executor both need. The index and query packages also use vellum's FST
// type directly.
package automaton

import (
	"bytes"
	"sort"

	"github.com/blevesearch/vellum"

	ftserrors "github.com/gcbaptista/ftscore/errors"
)

// BuildSet serializes a word list into a vellum FST set. It sorts a copy of
// words and drops duplicates itself, since vellum's builder requires
// strictly ascending insertion; that requirement is also why the words FST is
// rebuilt from a freshly sorted key list on every batch rather than
// incrementally patched (SPEC_FULL design note on rebuild cost).
func BuildSet(words []string) ([]byte, error) {
	sorted := append([]string(nil), words...)
	sort.Strings(sorted)

	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, ftserrors.NewFstError(err)
	}
	last := ""
	first := true
	for _, w := range sorted {
		if !first && w == last {
			continue // dedup consecutive equal keys; vellum rejects duplicates
		}
		if err := builder.Insert([]byte(w), 0); err != nil {
			return nil, ftserrors.NewFstError(err)
		}
		last = w
		first = false
	}
	if err := builder.Close(); err != nil {
		return nil, ftserrors.NewFstError(err)
	}
	return buf.Bytes(), nil
}

// LoadSet opens a previously-built FST set from its serialized bytes. A nil
// or empty input yields an empty, usable FST rather than an error, since an
// absent words-fst key just means "no words yet".
func LoadSet(b []byte) (*vellum.FST, error) {
	if len(b) == 0 {
		empty, err := BuildSet(nil)
		if err != nil {
			return nil, err
		}
		b = empty
	}
	fst, err := vellum.Load(b)
	if err != nil {
		return nil, ftserrors.NewFstError(err)
	}
	return fst, nil
}

// Difference returns a sorted slice of every word in a that is not in b —
// the operation applyStopWordsUpdate uses to subtract newly stopped words
// from the main words FST.
func Difference(a, b []string) []string {
	exclude := make(map[string]struct{}, len(b))
	for _, w := range b {
		exclude[w] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, w := range a {
		if _, skip := exclude[w]; !skip {
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out
}

// Keys streams every key out of a loaded FST set, in ascending order.
func Keys(fst *vellum.FST) ([]string, error) {
	if fst == nil {
		return nil, nil
	}
	var out []string
	itr, err := fst.Iterator(nil, nil)
	for err == nil {
		key, _ := itr.Current()
		out = append(out, string(key))
		err = itr.Next()
	}
	if err != nil && err != vellum.ErrIteratorDone {
		return nil, ftserrors.NewFstError(err)
	}
	return out, nil
}
