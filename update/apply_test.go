package update

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gcbaptista/ftscore/kv"
	"github.com/gcbaptista/ftscore/rankedmap"
	"github.com/gcbaptista/ftscore/schema"
)

func openApplierEnv(t *testing.T) kv.Env {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apply-test.db")
	env, err := kv.OpenBoltEnv(path)
	if err != nil {
		t.Fatalf("OpenBoltEnv returned error: %v", err)
	}
	t.Cleanup(func() { env.Close() })
	return env
}

func applyOne(t *testing.T, env kv.Env, a *Applier, sch *schema.Schema, rm *rankedmap.Map, data Data) {
	t.Helper()
	err := env.Update(context.Background(), func(tx kv.Tx) error {
		return a.Apply(tx, sch, rm, data)
	})
	if err != nil {
		t.Fatalf("Apply(%s) returned error: %v", data.Type, err)
	}
}

func TestApplySettingsThenDocumentsAdditionIndexesAndStoresFields(t *testing.T) {
	env := openApplierEnv(t)
	a := NewApplier(nil)
	sch := schema.Empty()
	rm := rankedmap.New()

	applyOne(t, env, a, sch, rm, Data{
		Type: TypeSettings,
		Settings: SettingsUpdate{
			Identifier:           TriState[string]{Kind: StateUpdate, Value: "sku"},
			SearchableAttributes: TriState[[]string]{Kind: StateUpdate, Value: []string{"title"}},
		},
	})

	applyOne(t, env, a, sch, rm, Data{
		Type: TypeDocumentsAddition,
		Documents: []map[string]interface{}{
			{"sku": "A1", "title": "red bicycle"},
			{"sku": "A2", "title": "blue scooter"},
		},
	})

	err := env.View(context.Background(), func(tx kv.Tx) error {
		stores, err := OpenStores(tx)
		if err != nil {
			return err
		}
		if stores.Main.NumberOfDocuments() != 2 {
			t.Errorf("NumberOfDocuments() = %d, want 2", stores.Main.NumberOfDocuments())
		}
		list := stores.Postings.Get([]byte("bicycle"))
		if len(list) != 1 {
			t.Errorf("Postings.Get(bicycle) = %v, want 1 entry", list)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}
}

func TestApplyDocumentsPartialMergesOntoExisting(t *testing.T) {
	env := openApplierEnv(t)
	a := NewApplier(nil)
	sch := schema.Empty()
	rm := rankedmap.New()

	applyOne(t, env, a, sch, rm, Data{
		Type: TypeSettings,
		Settings: SettingsUpdate{
			Identifier:           TriState[string]{Kind: StateUpdate, Value: "sku"},
			SearchableAttributes: TriState[[]string]{Kind: StateUpdate, Value: []string{"title"}},
		},
	})
	applyOne(t, env, a, sch, rm, Data{
		Type:      TypeDocumentsAddition,
		Documents: []map[string]interface{}{{"sku": "A1", "title": "red bicycle"}},
	})
	applyOne(t, env, a, sch, rm, Data{
		Type:      TypeDocumentsPartial,
		Documents: []map[string]interface{}{{"sku": "A1", "title": "green bicycle"}},
	})

	docID := ComputeDocumentID("A1")
	err := env.View(context.Background(), func(tx kv.Tx) error {
		stores, err := OpenStores(tx)
		if err != nil {
			return err
		}
		titleField, ok := sch.ID("title")
		if !ok {
			t.Fatal("expected title field id to exist")
		}
		raw := stores.Fields.Get(docID, uint16(titleField))
		if string(raw) != `"green bicycle"` {
			t.Errorf("Fields.Get(title) = %s, want \"green bicycle\"", raw)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}
}

func TestApplyDocumentsDeletionIsIdempotent(t *testing.T) {
	env := openApplierEnv(t)
	a := NewApplier(nil)
	sch := schema.Empty()
	rm := rankedmap.New()

	applyOne(t, env, a, sch, rm, Data{
		Type: TypeSettings,
		Settings: SettingsUpdate{
			Identifier:           TriState[string]{Kind: StateUpdate, Value: "sku"},
			SearchableAttributes: TriState[[]string]{Kind: StateUpdate, Value: []string{"title"}},
		},
	})
	applyOne(t, env, a, sch, rm, Data{
		Type:      TypeDocumentsAddition,
		Documents: []map[string]interface{}{{"sku": "A1", "title": "red bicycle"}},
	})

	applyOne(t, env, a, sch, rm, Data{Type: TypeDocumentsDeletion, DeletedIdentifiers: []string{"A1"}})
	// deleting the same identifier again must be a silent no-op.
	applyOne(t, env, a, sch, rm, Data{Type: TypeDocumentsDeletion, DeletedIdentifiers: []string{"A1"}})

	err := env.View(context.Background(), func(tx kv.Tx) error {
		stores, err := OpenStores(tx)
		if err != nil {
			return err
		}
		if got := stores.Main.NumberOfDocuments(); got != 0 {
			t.Errorf("NumberOfDocuments() = %d, want 0", got)
		}
		if list := stores.Postings.Get([]byte("bicycle")); list != nil {
			t.Errorf("Postings.Get(bicycle) after deletion = %v, want nil", list)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}
}

func TestApplyClearAllResetsEverything(t *testing.T) {
	env := openApplierEnv(t)
	a := NewApplier(nil)
	sch := schema.Empty()
	rm := rankedmap.New()

	applyOne(t, env, a, sch, rm, Data{
		Type: TypeSettings,
		Settings: SettingsUpdate{
			Identifier:           TriState[string]{Kind: StateUpdate, Value: "sku"},
			SearchableAttributes: TriState[[]string]{Kind: StateUpdate, Value: []string{"title"}},
		},
	})
	applyOne(t, env, a, sch, rm, Data{
		Type:      TypeDocumentsAddition,
		Documents: []map[string]interface{}{{"sku": "A1", "title": "red bicycle"}},
	})
	applyOne(t, env, a, sch, rm, Data{Type: TypeClearAll})

	err := env.View(context.Background(), func(tx kv.Tx) error {
		stores, err := OpenStores(tx)
		if err != nil {
			return err
		}
		if got := stores.Main.NumberOfDocuments(); got != 0 {
			t.Errorf("NumberOfDocuments() after ClearAll = %d, want 0", got)
		}
		if list := stores.Postings.Get([]byte("bicycle")); list != nil {
			t.Errorf("Postings.Get(bicycle) after ClearAll = %v, want nil", list)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}
	titleField, ok := sch.ID("title")
	if !ok {
		t.Fatal("expected title field id to exist")
	}
	docID := ComputeDocumentID("A1")
	if got := rm.Get(docID, uint16(titleField)); got.Kind != rankedmap.KindNull {
		t.Errorf("rankedmap.Get after ClearAll = %+v, want Null", got)
	}
}

func TestApplySettingsWithoutIdentifierFailsFirstTime(t *testing.T) {
	env := openApplierEnv(t)
	a := NewApplier(nil)
	sch := schema.Empty()
	rm := rankedmap.New()

	err := env.Update(context.Background(), func(tx kv.Tx) error {
		return a.Apply(tx, sch, rm, Data{
			Type: TypeSettings,
			Settings: SettingsUpdate{
				SearchableAttributes: TriState[[]string]{Kind: StateUpdate, Value: []string{"title"}},
			},
		})
	})
	if err == nil {
		t.Fatal("expected an error when settings update establishes no identifier on a fresh schema")
	}
}

func TestApplyDocumentsAdditionDropsStalePostingsOnFullReplace(t *testing.T) {
	env := openApplierEnv(t)
	a := NewApplier(nil)
	sch := schema.Empty()
	rm := rankedmap.New()

	applyOne(t, env, a, sch, rm, Data{
		Type: TypeSettings,
		Settings: SettingsUpdate{
			Identifier:           TriState[string]{Kind: StateUpdate, Value: "sku"},
			SearchableAttributes: TriState[[]string]{Kind: StateUpdate, Value: []string{"title", "subtitle"}},
		},
	})
	applyOne(t, env, a, sch, rm, Data{
		Type:      TypeDocumentsAddition,
		Documents: []map[string]interface{}{{"sku": "A1", "title": "red bicycle", "subtitle": "vintage"}},
	})
	// A full re-addition that drops the subtitle field entirely must also
	// drop "vintage" from the postings: it is no longer part of the document.
	applyOne(t, env, a, sch, rm, Data{
		Type:      TypeDocumentsAddition,
		Documents: []map[string]interface{}{{"sku": "A1", "title": "red bicycle"}},
	})

	err := env.View(context.Background(), func(tx kv.Tx) error {
		stores, err := OpenStores(tx)
		if err != nil {
			return err
		}
		if list := stores.Postings.Get([]byte("vintage")); list != nil {
			t.Errorf("Postings.Get(vintage) after dropping subtitle = %v, want nil", list)
		}
		if list := stores.Postings.Get([]byte("bicycle")); len(list) != 1 {
			t.Errorf("Postings.Get(bicycle) = %v, want 1 entry", list)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}
}

func TestApplyDocumentsAdditionDoesNotDoubleCountReaddedDocument(t *testing.T) {
	env := openApplierEnv(t)
	a := NewApplier(nil)
	sch := schema.Empty()
	rm := rankedmap.New()

	applyOne(t, env, a, sch, rm, Data{
		Type: TypeSettings,
		Settings: SettingsUpdate{
			Identifier:           TriState[string]{Kind: StateUpdate, Value: "sku"},
			SearchableAttributes: TriState[[]string]{Kind: StateUpdate, Value: []string{"title"}},
		},
	})
	applyOne(t, env, a, sch, rm, Data{
		Type:      TypeDocumentsAddition,
		Documents: []map[string]interface{}{{"sku": "A1", "title": "red bicycle"}},
	})
	// Re-adding the same identifier must not count as a second document.
	applyOne(t, env, a, sch, rm, Data{
		Type:      TypeDocumentsAddition,
		Documents: []map[string]interface{}{{"sku": "A1", "title": "blue bicycle"}},
	})

	err := env.View(context.Background(), func(tx kv.Tx) error {
		stores, err := OpenStores(tx)
		if err != nil {
			return err
		}
		if got := stores.Main.NumberOfDocuments(); got != 1 {
			t.Errorf("NumberOfDocuments() = %d, want 1", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}
}

func TestApplySettingsReindexDoesNotDoubleDocumentCount(t *testing.T) {
	env := openApplierEnv(t)
	a := NewApplier(nil)
	sch := schema.Empty()
	rm := rankedmap.New()

	applyOne(t, env, a, sch, rm, Data{
		Type: TypeSettings,
		Settings: SettingsUpdate{
			Identifier:           TriState[string]{Kind: StateUpdate, Value: "sku"},
			SearchableAttributes: TriState[[]string]{Kind: StateUpdate, Value: []string{"title"}},
		},
	})
	applyOne(t, env, a, sch, rm, Data{
		Type: TypeDocumentsAddition,
		Documents: []map[string]interface{}{
			{"sku": "A1", "title": "red bicycle"},
			{"sku": "A2", "title": "blue scooter"},
		},
	})

	// Adding a new searchable attribute forces a reindex of every existing
	// document; the document count must stay at 2, not double to 4.
	applyOne(t, env, a, sch, rm, Data{
		Type: TypeSettings,
		Settings: SettingsUpdate{
			SearchableAttributes: TriState[[]string]{Kind: StateUpdate, Value: []string{"title", "sku"}},
		},
	})

	err := env.View(context.Background(), func(tx kv.Tx) error {
		stores, err := OpenStores(tx)
		if err != nil {
			return err
		}
		if got := stores.Main.NumberOfDocuments(); got != 2 {
			t.Errorf("NumberOfDocuments() after reindex = %d, want 2", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}
}

func TestApplyStopWordsUpdateDropsPostingsOfAddedStopWords(t *testing.T) {
	env := openApplierEnv(t)
	a := NewApplier(nil)
	sch := schema.Empty()
	rm := rankedmap.New()

	applyOne(t, env, a, sch, rm, Data{
		Type: TypeSettings,
		Settings: SettingsUpdate{
			Identifier:           TriState[string]{Kind: StateUpdate, Value: "sku"},
			SearchableAttributes: TriState[[]string]{Kind: StateUpdate, Value: []string{"title"}},
		},
	})
	applyOne(t, env, a, sch, rm, Data{
		Type:      TypeDocumentsAddition,
		Documents: []map[string]interface{}{{"sku": "A1", "title": "the red bicycle"}},
	})

	applyOne(t, env, a, sch, rm, Data{
		Type: TypeSettings,
		Settings: SettingsUpdate{
			StopWords: TriState[[]string]{Kind: StateUpdate, Value: []string{"the"}},
		},
	})

	err := env.View(context.Background(), func(tx kv.Tx) error {
		stores, err := OpenStores(tx)
		if err != nil {
			return err
		}
		if list := stores.Postings.Get([]byte("the")); list != nil {
			t.Errorf("Postings.Get(the) after stop-word addition = %v, want nil", list)
		}
		if list := stores.Postings.Get([]byte("bicycle")); len(list) != 1 {
			t.Errorf("Postings.Get(bicycle) = %v, want 1 entry", list)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}
}
