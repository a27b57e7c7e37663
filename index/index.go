// Package index assembles the engine's public embedding surface
// (SPEC_FULL §6) on top of kv.Env, schema.Schema, the store/ typed views,
// the update/ applier and queue, and the query/ executor. It is the
// equivalent of the teacher repository's internal/engine package and of
// meilisearch-core's store::Index, generalized to the persistent,
// automaton-driven data model this module implements.
package index

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/vellum"

	"github.com/gcbaptista/ftscore/automaton"
	ftserrors "github.com/gcbaptista/ftscore/errors"
	"github.com/gcbaptista/ftscore/kv"
	"github.com/gcbaptista/ftscore/query"
	"github.com/gcbaptista/ftscore/rankedmap"
	"github.com/gcbaptista/ftscore/schema"
	"github.com/gcbaptista/ftscore/store"
	"github.com/gcbaptista/ftscore/tokenizer"
	"github.com/gcbaptista/ftscore/update"
)

// Index is one named, independently-stored search index: its own main and
// update environments, schema, in-memory RankedMap, and background update
// processor.
type Index struct {
	Name string

	mainEnv   kv.Env
	updateEnv kv.Env

	mu     sync.RWMutex
	schema *schema.Schema
	rm     *rankedmap.Map

	applier   *update.Applier
	builder   *query.Builder
	processor *update.Processor
	notifier  *update.Notifier
}

// Create opens fresh main/update environments for name under dataDir and
// starts its background update processor. It fails with
// IndexAlreadyExistsError if the on-disk environments already contain data
// (the catalog that owns index names lives one layer up, in the
// orchestrator, per SPEC_FULL §7 — Create here only refuses to clobber an
// existing schema).
func Create(dataDir, name string) (*Index, error) {
	idx, existed, err := open(dataDir, name)
	if err != nil {
		return nil, err
	}
	if existed {
		idx.Close()
		return nil, &ftserrors.IndexAlreadyExistsError{Name: name}
	}
	return idx, nil
}

// Open opens an existing index, or returns (nil, nil) if none exists yet at
// this path, matching the Option<Index> return of the original embedding
// API translated to Go's (value, ok) idiom via a nil pointer.
func Open(dataDir, name string) (*Index, error) {
	idx, existed, err := open(dataDir, name)
	if err != nil {
		return nil, err
	}
	if !existed {
		idx.Close()
		return nil, nil
	}
	return idx, nil
}

func open(dataDir, name string) (*Index, bool, error) {
	mainEnv, err := kv.OpenBoltEnv(filepath.Join(dataDir, name+".main.db"))
	if err != nil {
		return nil, false, ftserrors.NewStoreError(err)
	}
	updateEnv, err := kv.OpenBoltEnv(filepath.Join(dataDir, name+".update.db"))
	if err != nil {
		return nil, false, ftserrors.NewStoreError(err)
	}

	var (
		sch     *schema.Schema
		existed bool
	)
	err = mainEnv.View(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(store.BucketMain)
		if err != nil {
			return err
		}
		raw := store.Main{Bucket: b}.SchemaBytes()
		if raw != nil {
			existed = true
			s := &schema.Schema{}
			if err := s.GobDecode(raw); err != nil {
				return err
			}
			sch = s
		}
		return nil
	})
	if err != nil {
		return nil, false, ftserrors.NewStoreError(err)
	}
	if sch == nil {
		sch = schema.Empty()
	}

	rm := rankedmap.New()
	notifier := update.NewNotifier()
	applier := update.NewApplier(tokenizer.Default{})

	idx := &Index{
		Name:      name,
		mainEnv:   mainEnv,
		updateEnv: updateEnv,
		schema:    sch,
		rm:        rm,
		applier:   applier,
		builder:   query.NewBuilder(tokenizer.Default{}, nil),
		notifier:  notifier,
	}
	idx.builder.SynonymLookup = idx.lookupSynonyms

	idx.processor = update.NewProcessor(mainEnv, updateEnv, applier, sch, rm, notifier)
	go idx.processor.Run(context.Background())

	if existed {
		if err := idx.loadRankedMap(); err != nil {
			return nil, false, err
		}
	}
	return idx, existed, nil
}

// SetQueryCaps overrides the automaton and candidate fan-out caps used by
// Search; a zero value leaves automaton.DefaultAutomatonCap /
// automaton.DefaultCandidateCap in effect.
func (idx *Index) SetQueryCaps(automatonCap, candidateCap int) {
	idx.builder.AutomatonCap = automatonCap
	idx.builder.CandidateCap = candidateCap
}

func (idx *Index) Close() {
	if idx.processor != nil {
		idx.processor.Stop()
	}
	idx.mainEnv.Close()
	idx.updateEnv.Close()
}

// loadRankedMap replays every stored document's indexed fields into the
// in-memory RankedMap after a process restart, since the RankedMap itself
// is not persisted.
func (idx *Index) loadRankedMap() error {
	return idx.mainEnv.View(context.Background(), func(tx kv.Tx) error {
		fieldsBucket, err := tx.Bucket(store.BucketDocumentsFields)
		if err != nil {
			return err
		}
		docsWordsBucket, err := tx.Bucket(store.BucketDocsWords)
		if err != nil {
			return err
		}
		fields := store.DocumentsFields{Bucket: fieldsBucket}
		docsWords := store.DocsWords{Bucket: docsWordsBucket}
		ids, err := docsWords.AllDocIDs()
		if err != nil {
			return err
		}
		for _, docID := range ids {
			fields.ForEachField(docID, func(fieldID uint16, value []byte) {
				var v interface{}
				if json.Unmarshal(value, &v) == nil {
					idx.rm.Set(docID, fieldID, rankedmap.FromAny(v))
				}
			})
		}
		return nil
	})
}

func (idx *Index) lookupSynonyms(phrase string) ([]string, error) {
	var alts []string
	err := idx.mainEnv.View(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(store.BucketSynonyms)
		if err != nil {
			return err
		}
		a, err := store.Synonyms{Bucket: b}.Get(phrase)
		if err != nil {
			return err
		}
		alts = a
		return nil
	})
	return alts, err
}

// Clear applies the same reset as a ClearAll update to the main
// environment (postings, stored fields, field counts, DocsWords, synonyms,
// words FST, document counter and RankedMap), but synchronously and
// without going through the update queue. The update environment is not
// touched: queued updates and their results remain, and the schema stays
// in the main store.
func (idx *Index) Clear(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.mainEnv.Update(ctx, func(tx kv.Tx) error {
		return idx.applier.Apply(tx, idx.schema, idx.rm, update.Data{Type: update.TypeClearAll})
	})
}

// enqueue pushes data onto the update queue and wakes the processor,
// returning the assigned update id.
func (idx *Index) enqueue(ctx context.Context, data update.Data) (uint64, error) {
	var id uint64
	err := idx.updateEnv.Update(ctx, func(tx kv.Tx) error {
		assigned, err := update.Push(tx, data, time.Now())
		if err != nil {
			return err
		}
		id = assigned
		return nil
	})
	if err != nil {
		return 0, err
	}
	idx.notifier.Notify()
	return id, nil
}

func (idx *Index) DocumentsAddition(ctx context.Context, docs []map[string]interface{}) (uint64, error) {
	return idx.enqueue(ctx, update.Data{Type: update.TypeDocumentsAddition, Documents: docs})
}

func (idx *Index) DocumentsPartialAddition(ctx context.Context, patches []map[string]interface{}) (uint64, error) {
	return idx.enqueue(ctx, update.Data{Type: update.TypeDocumentsPartial, Documents: patches})
}

func (idx *Index) DocumentsDeletion(ctx context.Context, identifiers []string) (uint64, error) {
	return idx.enqueue(ctx, update.Data{Type: update.TypeDocumentsDeletion, DeletedIdentifiers: identifiers})
}

func (idx *Index) ClearAll(ctx context.Context) (uint64, error) {
	return idx.enqueue(ctx, update.Data{Type: update.TypeClearAll})
}

func (idx *Index) CustomsUpdate(ctx context.Context, customs []byte) (uint64, error) {
	return idx.enqueue(ctx, update.Data{Type: update.TypeCustoms, Customs: customs})
}

func (idx *Index) SettingsUpdate(ctx context.Context, settings update.SettingsUpdate) (uint64, error) {
	return idx.enqueue(ctx, update.Data{Type: update.TypeSettings, Settings: settings})
}

// UpdateStatus resolves one update id's lifecycle state.
func (idx *Index) UpdateStatus(ctx context.Context, id uint64) (update.Status, bool, error) {
	var (
		status update.Status
		found  bool
	)
	err := idx.updateEnv.View(ctx, func(tx kv.Tx) error {
		s, ok, err := update.GetStatus(tx, id)
		status, found = s, ok
		return err
	})
	return status, found, err
}

// AllUpdatesStatus returns every update's status with no id double-reported
// across Updates/UpdatesResults.
func (idx *Index) AllUpdatesStatus(ctx context.Context) ([]update.Status, error) {
	var statuses []update.Status
	err := idx.updateEnv.View(ctx, func(tx kv.Tx) error {
		s, err := update.AllStatuses(tx)
		statuses = s
		return err
	})
	return statuses, err
}

// Document reads back one document by its user-supplied identifier value,
// applying no attribute filter (the caller may post-filter the returned map
// down to displayed attributes).
func (idx *Index) Document(ctx context.Context, identifierValue string) (map[string]interface{}, error) {
	docID := update.ComputeDocumentID(identifierValue)
	idx.mu.RLock()
	sch := idx.schema
	idx.mu.RUnlock()

	var doc map[string]interface{}
	err := idx.mainEnv.View(ctx, func(tx kv.Tx) error {
		b, err := tx.Bucket(store.BucketDocumentsFields)
		if err != nil {
			return err
		}
		fields := store.DocumentsFields{Bucket: b}
		found := false
		result := make(map[string]interface{})
		fields.ForEachField(docID, func(fieldID uint16, value []byte) {
			found = true
			name, ok := sch.Name(schema.FieldId(fieldID))
			if !ok {
				return
			}
			var v interface{}
			if json.Unmarshal(value, &v) == nil {
				result[name] = v
			}
		})
		if found {
			doc = result
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &ftserrors.DocumentNotFoundError{Identifier: identifierValue}
	}
	return doc, nil
}

// Hit is one ranked search result: the materialized document plus the
// per-query-token match metadata the ranking criteria were computed from.
type Hit struct {
	Document         map[string]interface{}
	NumTypos         int
	NumberExactWords int
}

// Search runs q with the default criteria (plus any caller-supplied
// Asc/Desc tie-breaks) over the current on-disk snapshot and returns the
// requested window of matching documents, materialized from
// DocumentsFields.
func (idx *Index) Search(ctx context.Context, q string, r query.Range, extraCriteria ...query.Criterion) ([]Hit, error) {
	idx.mu.RLock()
	sch := idx.schema
	rm := idx.rm
	idx.mu.RUnlock()

	var results []Hit
	err := idx.mainEnv.View(ctx, func(tx kv.Tx) error {
		mainBucket, err := tx.Bucket(store.BucketMain)
		if err != nil {
			return err
		}
		postingsBucket, err := tx.Bucket(store.BucketPostingsLists)
		if err != nil {
			return err
		}
		fieldsBucket, err := tx.Bucket(store.BucketDocumentsFields)
		if err != nil {
			return err
		}
		main := store.Main{Bucket: mainBucket}
		postings := store.PostingsLists{Bucket: postingsBucket}
		fields := store.DocumentsFields{Bucket: fieldsBucket}

		var fst *vellum.FST
		if raw := main.WordsFstBytes(); raw != nil {
			fst, err = automaton.LoadSet(raw)
			if err != nil {
				return err
			}
		} else {
			fst, err = automaton.LoadSet(nil)
			if err != nil {
				return err
			}
		}

		stopWords, err := loadStopWords(main)
		if err != nil {
			return err
		}

		criteria := query.AppendUserCriteria(query.DefaultCriteria(), extraCriteria...)

		var distinct *query.DistinctMap
		if distinctName := main.RankingDistinct(); distinctName != "" {
			if fieldID, ok := sch.ID(distinctName); ok {
				distinct = query.NewDistinctMap(rm, uint16(fieldID), 1)
			}
		}

		raw, err := idx.builder.Query(fst, postings, stopWords, criteria, distinct, q, r)
		if err != nil {
			return err
		}

		for _, rd := range raw {
			doc := make(map[string]interface{})
			fields.ForEachField(rd.DocumentID, func(fieldID uint16, value []byte) {
				name, ok := sch.Name(schema.FieldId(fieldID))
				if !ok {
					return
				}
				var v interface{}
				if json.Unmarshal(value, &v) == nil {
					doc[name] = v
				}
			})
			numExact := 0
			for _, m := range rd.Matches {
				if m.IsExact {
					numExact++
				}
			}
			results = append(results, Hit{
				Document:         doc,
				NumTypos:         sumEditDistance(rd),
				NumberExactWords: numExact,
			})
		}
		return nil
	})
	return results, err
}

func sumEditDistance(rd *query.RawDocument) int {
	sum := 0
	for _, m := range rd.Matches {
		sum += m.EditDistance
	}
	return sum
}

func loadStopWords(main store.Main) (map[string]struct{}, error) {
	raw := main.StopWordsFstBytes()
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
