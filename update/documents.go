package update

import (
	"encoding/json"
	"hash/fnv"
	"sort"

	"github.com/gcbaptista/ftscore/automaton"
	ftserrors "github.com/gcbaptista/ftscore/errors"
	"github.com/gcbaptista/ftscore/rankedmap"
	"github.com/gcbaptista/ftscore/rawindex"
	"github.com/gcbaptista/ftscore/schema"
	"github.com/gcbaptista/ftscore/store"
)

// ComputeDocumentID hashes the user-supplied identifier value into the
// 64-bit DocumentId space (SPEC_FULL §3). hash/fnv is standard-library: no
// example repo in the corpus ships a content-addressed document-id hash
// that would fit this role better, and the function only needs to be
// stable and well distributed, not cryptographic (documented in DESIGN.md).
func ComputeDocumentID(identifierValue string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(identifierValue))
	return h.Sum64()
}

func identifierValue(doc map[string]interface{}, identifier string) (string, bool) {
	v, ok := doc[identifier]
	if !ok {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

// applyDocumentsAddition fully replaces each document's stored fields and
// re-derives its postings, then rebuilds the words FST and persists any
// schema changes from newly observed fields (SPEC_FULL §4.4).
func (a *Applier) applyDocumentsAddition(stores Stores, sch *schema.Schema, rm *rankedmap.Map, docs []map[string]interface{}) error {
	if sch.Identifier == "" {
		return ftserrors.ErrMissingIdentifier
	}

	postingDelta := make(map[string][]store.DocIndex)
	stopWords, err := loadStopWordSet(stores)
	if err != nil {
		return err
	}

	var newDocs int64

	for _, doc := range docs {
		idVal, ok := identifierValue(doc, sch.Identifier)
		if !ok {
			return ftserrors.ErrMissingDocumentID
		}
		docID := ComputeDocumentID(idVal)

		oldWords, err := stores.DocsWords.Get(docID)
		if err != nil {
			return ftserrors.NewBinarySerdeError(err)
		}
		if oldWords == nil {
			newDocs++
		}

		var fieldInputs []rawindex.FieldInput
		touchedWords := make(map[string]struct{})

		// Drop the previous version's stored fields, field counts and ranked
		// values so that fields absent from the new version do not survive.
		if err := stores.Fields.DeleteDocument(docID); err != nil {
			return ftserrors.NewStoreError(err)
		}
		if err := stores.FieldCounts.DeleteDocument(docID); err != nil {
			return ftserrors.NewStoreError(err)
		}
		rm.DeleteDocument(docID)

		for name, value := range doc {
			fieldID, ok := sch.EnsureID(name)
			if !ok {
				continue
			}
			raw, err := json.Marshal(value)
			if err != nil {
				return ftserrors.NewJSONSerdeError(err)
			}
			if err := stores.Fields.Put(docID, uint16(fieldID), raw); err != nil {
				return ftserrors.NewStoreError(err)
			}
			rm.Set(docID, uint16(fieldID), rankedmap.FromAny(value))

			if text, ok := value.(string); ok {
				if pos, isIndexed := indexedPosOf(sch, name); isIndexed {
					fieldInputs = append(fieldInputs, rawindex.FieldInput{IndexedPos: pos, Text: text})
				}
			}
		}

		result := rawindex.Index(a.Tokenizer, docID, fieldInputs, stopWords)
		for word, entries := range result.Postings {
			postingDelta[word] = append(postingDelta[word], entries...)
			touchedWords[word] = struct{}{}
		}
		for pos, count := range result.Counts {
			if err := stores.FieldCounts.Put(docID, uint16(pos), count); err != nil {
				return ftserrors.NewStoreError(err)
			}
		}

		// A full re-addition replaces the document entirely: any word from
		// the previous version that the new version no longer produces
		// must lose its posting for this doc, or a query for the dropped
		// word would keep returning it (SPEC_FULL §4.4).
		for _, word := range oldWords {
			if _, stillPresent := touchedWords[word]; stillPresent {
				continue
			}
			list := stores.Postings.Get([]byte(word))
			list = rawindex.RemoveDoc(list, docID)
			if len(list) == 0 {
				if err := stores.Postings.Delete([]byte(word)); err != nil {
					return ftserrors.NewStoreError(err)
				}
			} else if err := stores.Postings.Put([]byte(word), list); err != nil {
				return ftserrors.NewStoreError(err)
			}
		}

		words := make([]string, 0, len(touchedWords))
		for w := range touchedWords {
			words = append(words, w)
		}
		sort.Strings(words)
		if err := stores.DocsWords.Put(docID, words); err != nil {
			return ftserrors.NewStoreError(err)
		}
	}

	if err := mergePostingDelta(stores, postingDelta); err != nil {
		return err
	}
	if err := rebuildWordsFST(stores); err != nil {
		return err
	}
	if err := persistSchema(stores, sch); err != nil {
		return err
	}
	return bumpDocumentCount(stores, newDocs)
}

// applyDocumentsPartial overlays each patch onto the currently stored
// document (top-level JSON object merge only) and re-applies as a full
// addition of the merged result, satisfying the partial-addition law in
// SPEC_FULL §8.
func (a *Applier) applyDocumentsPartial(stores Stores, sch *schema.Schema, rm *rankedmap.Map, patches []map[string]interface{}) error {
	if sch.Identifier == "" {
		return ftserrors.ErrMissingIdentifier
	}
	merged := make([]map[string]interface{}, 0, len(patches))
	for _, patch := range patches {
		idVal, ok := identifierValue(patch, sch.Identifier)
		if !ok {
			return ftserrors.ErrMissingDocumentID
		}
		docID := ComputeDocumentID(idVal)

		current := make(map[string]interface{})
		stores.Fields.ForEachField(docID, func(fieldID uint16, value []byte) {
			name, ok := sch.Name(schema.FieldId(fieldID))
			if !ok {
				return
			}
			var v interface{}
			if err := json.Unmarshal(value, &v); err == nil {
				current[name] = v
			}
		})
		for k, v := range patch {
			current[k] = v
		}
		merged = append(merged, current)
	}
	return a.applyDocumentsAddition(stores, sch, rm, merged)
}

// applyDocumentsDeletion removes a document's fields, postings and
// bookkeeping entirely; deleting an id twice is a no-op the second time
// (SPEC_FULL §8 idempotent-delete law) since DocsWords.Get returns nil for
// an already-absent document and the loop below simply does nothing.
func (a *Applier) applyDocumentsDeletion(stores Stores, sch *schema.Schema, rm *rankedmap.Map, identifiers []string) error {
	removed := 0
	for _, idVal := range identifiers {
		docID := ComputeDocumentID(idVal)
		words, err := stores.DocsWords.Get(docID)
		if err != nil {
			return ftserrors.NewBinarySerdeError(err)
		}
		if words == nil {
			continue // already absent: idempotent no-op
		}
		for _, word := range words {
			list := stores.Postings.Get([]byte(word))
			list = rawindex.RemoveDoc(list, docID)
			if len(list) == 0 {
				if err := stores.Postings.Delete([]byte(word)); err != nil {
					return ftserrors.NewStoreError(err)
				}
			} else if err := stores.Postings.Put([]byte(word), list); err != nil {
				return ftserrors.NewStoreError(err)
			}
		}
		if err := stores.Fields.DeleteDocument(docID); err != nil {
			return ftserrors.NewStoreError(err)
		}
		if err := stores.FieldCounts.DeleteDocument(docID); err != nil {
			return ftserrors.NewStoreError(err)
		}
		if err := stores.DocsWords.Delete(docID); err != nil {
			return ftserrors.NewStoreError(err)
		}
		rm.DeleteDocument(docID)
		removed++
	}
	if removed == 0 {
		return nil
	}
	if err := rebuildWordsFST(stores); err != nil {
		return err
	}
	return bumpDocumentCount(stores, -int64(removed))
}

func indexedPosOf(sch *schema.Schema, name string) (schema.IndexedPos, bool) {
	for pos, n := range sch.IndexedAttributes() {
		if n == name {
			return schema.IndexedPos(pos), true
		}
	}
	return 0, false
}

func mergePostingDelta(stores Stores, delta map[string][]store.DocIndex) error {
	for word, fresh := range delta {
		byDoc := make(map[uint64][]store.DocIndex)
		for _, e := range fresh {
			byDoc[e.DocumentID] = append(byDoc[e.DocumentID], e)
		}
		merged := stores.Postings.Get([]byte(word))
		for docID, entries := range byDoc {
			merged = rawindex.MergeInto(merged, docID, entries)
		}
		if err := stores.Postings.Put([]byte(word), merged); err != nil {
			return ftserrors.NewStoreError(err)
		}
	}
	return nil
}

// rebuildWordsFST recomputes the dictionary-wide words FST as the union of
// every surviving posting-list key minus the stop-words FST, the same
// rebuild-from-scratch strategy meilisearch-core's apply_documents_addition
// and apply_documents_deletion both use.
func rebuildWordsFST(stores Stores) error {
	var words []string
	stores.Postings.ForEach(func(word []byte, _ []store.DocIndex) bool {
		words = append(words, string(word))
		return true
	})

	stopWords, err := loadStopWordSet(stores)
	if err != nil {
		return err
	}
	filtered := words[:0:0]
	for _, w := range words {
		if _, stop := stopWords[w]; !stop {
			filtered = append(filtered, w)
		}
	}

	fstBytes, err := automaton.BuildSet(filtered)
	if err != nil {
		return err
	}
	return ftserrors.NewStoreError(stores.Main.PutWordsFstBytes(fstBytes))
}

func loadStopWordSet(stores Stores) (map[string]struct{}, error) {
	raw := stores.Main.StopWordsFstBytes()
	if raw == nil {
		return nil, nil
	}
	fst, err := automaton.LoadSet(raw)
	if err != nil {
		return nil, err
	}
	keys, err := automaton.Keys(fst)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set, nil
}

func bumpDocumentCount(stores Stores, delta int64) error {
	current := int64(stores.Main.NumberOfDocuments())
	next := current + delta
	if next < 0 {
		next = 0
	}
	return ftserrors.NewStoreError(stores.Main.PutNumberOfDocuments(uint64(next)))
}
