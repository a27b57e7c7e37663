// Package rawindex implements the raw indexer (SPEC_FULL §4.3): given the
// searchable text of one document's fields, it produces the per-word
// DocIndex postings to merge into the dictionary and the per-field token
// counts that are stored in DocumentsFieldsCounts. No ranking criterion
// reads those counts.
package rawindex

import (
	"strings"

	"github.com/gcbaptista/ftscore/schema"
	"github.com/gcbaptista/ftscore/store"
	"github.com/gcbaptista/ftscore/tokenizer"
)

// maxWordBytes is the longest word the indexer will keep; longer tokens are
// dropped entirely rather than truncated, per the spec's stated cutoff.
const maxWordBytes = 1000

// FieldInput is one searchable field's text to index for a document.
type FieldInput struct {
	IndexedPos schema.IndexedPos
	Text       string
}

// Result is the output of indexing one document: the postings contributed
// per word, and the non-stop token count per indexed position.
type Result struct {
	Postings map[string][]store.DocIndex
	Counts   map[schema.IndexedPos]uint32
}

// Index tokenizes every field in fields for docID, filtering stop words
// after tokenization so word_index still counts the stop words as skipped
// positions (char offsets are untouched either way).
func Index(tok tokenizer.Tokenizer, docID uint64, fields []FieldInput, stopWords map[string]struct{}) Result {
	res := Result{
		Postings: make(map[string][]store.DocIndex),
		Counts:   make(map[schema.IndexedPos]uint32),
	}

	for _, f := range fields {
		tokens := tok.Tokenize(f.Text)
		var count uint32
		for _, t := range tokens {
			word := strings.ToLower(t.Word)
			if len(word) == 0 || len(word) > maxWordBytes {
				continue
			}
			if _, stop := stopWords[word]; stop {
				continue
			}
			count++
			res.Postings[word] = append(res.Postings[word], store.DocIndex{
				DocumentID: docID,
				Attribute:  uint16(f.IndexedPos),
				WordIndex:  uint16(t.WordIndex),
				CharIndex:  uint16(t.CharIndex),
				CharLength: uint16(t.CharLength),
			})
		}
		res.Counts[f.IndexedPos] = count
	}
	return res
}

// MergeInto merges freshly-computed postings for one document into an
// existing, already-sorted-by-(docid,attribute,word_index) posting list,
// replacing any prior entries belonging to the same docid. The result
// remains sorted.
func MergeInto(existing []store.DocIndex, docID uint64, fresh []store.DocIndex) []store.DocIndex {
	filtered := existing[:0:0]
	for _, e := range existing {
		if e.DocumentID != docID {
			filtered = append(filtered, e)
		}
	}
	filtered = append(filtered, fresh...)
	sortDocIndex(filtered)
	return filtered
}

// RemoveDoc strips every entry belonging to docID from a posting list.
func RemoveDoc(existing []store.DocIndex, docID uint64) []store.DocIndex {
	out := existing[:0:0]
	for _, e := range existing {
		if e.DocumentID != docID {
			out = append(out, e)
		}
	}
	return out
}

func sortDocIndex(list []store.DocIndex) {
	// insertion sort is adequate: merges touch one document's worth of
	// entries against an already-sorted list, so runs are nearly sorted.
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && less(list[j], list[j-1]); j-- {
			list[j], list[j-1] = list[j-1], list[j]
		}
	}
}

func less(a, b store.DocIndex) bool {
	if a.DocumentID != b.DocumentID {
		return a.DocumentID < b.DocumentID
	}
	if a.Attribute != b.Attribute {
		return a.Attribute < b.Attribute
	}
	return a.WordIndex < b.WordIndex
}
