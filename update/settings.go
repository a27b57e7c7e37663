package update

import (
	"encoding/json"
	"sort"

	"github.com/gcbaptista/ftscore/automaton"
	ftserrors "github.com/gcbaptista/ftscore/errors"
	"github.com/gcbaptista/ftscore/rankedmap"
	"github.com/gcbaptista/ftscore/schema"
	"github.com/gcbaptista/ftscore/store"
)

// applySettings is the orchestration in SPEC_FULL §4.8, following
// meilisearch-core's apply_settings_update apply order field by field,
// tracking must_reindex and triggering a full reindex at the end if set.
func (a *Applier) applySettings(stores Stores, sch *schema.Schema, settings SettingsUpdate) error {
	mustReindex := false

	if sch.Identifier == "" {
		if settings.Identifier.Kind != StateUpdate {
			return ftserrors.ErrMissingIdentifier
		}
	}

	switch settings.RankingRules.Kind {
	case StateUpdate:
		if err := sch.UpdateRanked(settings.RankingRules.Value); err != nil {
			return err
		}
		rules := make([]store.RankingRule, len(settings.RankingRules.Value))
		for i, r := range settings.RankingRules.Value {
			rules[i] = store.RankingRule(r)
		}
		if err := stores.Main.PutRankingRules(rules); err != nil {
			return ftserrors.NewStoreError(err)
		}
		mustReindex = true
	case StateClear:
		if err := sch.UpdateRanked(nil); err != nil {
			return err
		}
		if err := stores.Main.DeleteRankingRules(); err != nil {
			return ftserrors.NewStoreError(err)
		}
		mustReindex = true
	}

	switch settings.RankingDistinct.Kind {
	case StateUpdate:
		if err := stores.Main.PutRankingDistinct(settings.RankingDistinct.Value); err != nil {
			return ftserrors.NewStoreError(err)
		}
	case StateClear:
		if err := stores.Main.DeleteRankingDistinct(); err != nil {
			return ftserrors.NewStoreError(err)
		}
	}

	switch settings.IndexNewFields.Kind {
	case StateUpdate:
		sch.SetIndexNewFields(settings.IndexNewFields.Value)
	case StateClear:
		sch.SetIndexNewFields(true)
	}

	switch settings.SearchableAttributes.Kind {
	case StateUpdate:
		if err := sch.UpdateIndexed(settings.SearchableAttributes.Value); err != nil {
			return err
		}
		mustReindex = true
	case StateClear:
		if err := sch.UpdateIndexed(nil); err != nil {
			return err
		}
		mustReindex = true
	}

	switch settings.DisplayedAttributes.Kind {
	case StateUpdate:
		if err := sch.UpdateDisplayed(settings.DisplayedAttributes.Value); err != nil {
			return err
		}
	case StateClear:
		if err := sch.UpdateDisplayed(nil); err != nil {
			return err
		}
	}

	switch settings.Identifier.Kind {
	case StateUpdate:
		if err := sch.SetIdentifier(settings.Identifier.Value); err != nil {
			return err
		}
		mustReindex = true
	}

	switch settings.StopWords.Kind {
	case StateUpdate:
		reindex, err := a.applyStopWordsUpdate(stores, settings.StopWords.Value)
		if err != nil {
			return err
		}
		mustReindex = mustReindex || reindex
	case StateClear:
		reindex, err := a.applyStopWordsUpdate(stores, nil)
		if err != nil {
			return err
		}
		mustReindex = mustReindex || reindex
	}

	switch settings.Synonyms.Kind {
	case StateUpdate:
		if err := applySynonymsUpdate(stores, settings.Synonyms.Value); err != nil {
			return err
		}
	case StateClear:
		if err := applySynonymsUpdate(stores, nil); err != nil {
			return err
		}
	}

	if mustReindex {
		if err := a.reindexAllDocuments(stores, sch); err != nil {
			return err
		}
	}

	if settings.Identifier.Kind == StateClear {
		return ftserrors.NewStoreError(stores.Main.DeleteSchema())
	}
	return persistSchema(stores, sch)
}

// applyStopWordsUpdate computes the symmetric diff between the stored
// stop-words FST and the new set: additions drop their posting lists and
// are subtracted from the main words FST immediately; deletions merely
// shrink the stop-words FST but force a full reindex, since those words
// need their postings rebuilt from scratch.
func (a *Applier) applyStopWordsUpdate(stores Stores, newStopWords []string) (bool, error) {
	oldSet, err := loadStopWordSet(stores)
	if err != nil {
		return false, err
	}
	oldWords := make([]string, 0, len(oldSet))
	for w := range oldSet {
		oldWords = append(oldWords, w)
	}
	sort.Strings(oldWords)
	sort.Strings(newStopWords)

	addition := automaton.Difference(newStopWords, oldWords)
	deletion := automaton.Difference(oldWords, newStopWords)

	mustReindex := false

	if len(addition) > 0 {
		for _, word := range addition {
			if err := stores.Postings.DeletePostingsList([]byte(word)); err != nil {
				return false, ftserrors.NewStoreError(err)
			}
		}
		if raw := stores.Main.WordsFstBytes(); raw != nil {
			fst, err := automaton.LoadSet(raw)
			if err != nil {
				return false, err
			}
			keys, err := automaton.Keys(fst)
			if err != nil {
				return false, err
			}
			remaining := automaton.Difference(keys, addition)
			newFst, err := automaton.BuildSet(remaining)
			if err != nil {
				return false, err
			}
			if err := stores.Main.PutWordsFstBytes(newFst); err != nil {
				return false, ftserrors.NewStoreError(err)
			}
		}
	}

	if len(deletion) > 0 {
		mustReindex = true
	}

	fstBytes, err := automaton.BuildSet(newStopWords)
	if err != nil {
		return false, err
	}
	if err := stores.Main.PutStopWordsFstBytes(fstBytes); err != nil {
		return false, ftserrors.NewStoreError(err)
	}

	return mustReindex, nil
}

// applySynonymsUpdate clears and rebuilds the synonyms store and the
// top-level synonyms FST from scratch, mirroring
// apply_synonyms_update.
func applySynonymsUpdate(stores Stores, synonyms map[string][]string) error {
	if err := stores.Synonyms.Clear(); err != nil {
		return ftserrors.NewStoreError(err)
	}
	phrases := make([]string, 0, len(synonyms))
	for phrase, alternatives := range synonyms {
		if err := stores.Synonyms.Put(phrase, alternatives); err != nil {
			return ftserrors.NewStoreError(err)
		}
		phrases = append(phrases, phrase)
	}
	fstBytes, err := automaton.BuildSet(phrases)
	if err != nil {
		return err
	}
	return ftserrors.NewStoreError(stores.Main.PutSynonymsFstBytes(fstBytes))
}

// reindexAllDocuments streams every stored document, re-tokenizes it
// against the current schema, and rewrites postings/DocsWords/word counts
// in this same write transaction — the crash-safe reindex-on-settings-
// change orchestration from SPEC_FULL §4.8.
func (a *Applier) reindexAllDocuments(stores Stores, sch *schema.Schema) error {
	_, docs, err := collectAllDocuments(stores, sch)
	if err != nil {
		return err
	}

	for _, clear := range []func() error{stores.Postings.Clear, stores.FieldCounts.Clear, stores.DocsWords.Clear} {
		if err := clear(); err != nil {
			return ftserrors.NewStoreError(err)
		}
	}
	// applyDocumentsAddition below bumps the counter by however many of
	// these docids it sees as new; since DocsWords was just cleared, every
	// one of them looks new to it, so the counter must start back at zero
	// here or a reindex would double it.
	if err := stores.Main.PutNumberOfDocuments(0); err != nil {
		return ftserrors.NewStoreError(err)
	}

	rm := rankedmap.New()
	return a.applyDocumentsAddition(stores, sch, rm, docs)
}

// collectAllDocuments reconstructs every stored document as a
// name->value map from DocumentsFields, using the doc id list recorded in
// DocsWords (read before it gets cleared by the caller).
func collectAllDocuments(stores Stores, sch *schema.Schema) ([]uint64, []map[string]interface{}, error) {
	docIDs, err := stores.DocsWords.AllDocIDs()
	if err != nil {
		return nil, nil, err
	}
	docs := make([]map[string]interface{}, 0, len(docIDs))
	for _, docID := range docIDs {
		doc := make(map[string]interface{})
		stores.Fields.ForEachField(docID, func(fieldID uint16, value []byte) {
			name, ok := sch.Name(schema.FieldId(fieldID))
			if !ok {
				return
			}
			var v interface{}
			if err := json.Unmarshal(value, &v); err == nil {
				doc[name] = v
			}
		})
		docs = append(docs, doc)
	}
	return docIDs, docs, nil
}
