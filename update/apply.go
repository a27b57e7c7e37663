package update

import (
	ftserrors "github.com/gcbaptista/ftscore/errors"
	"github.com/gcbaptista/ftscore/kv"
	"github.com/gcbaptista/ftscore/rankedmap"
	"github.com/gcbaptista/ftscore/schema"
	"github.com/gcbaptista/ftscore/store"
	"github.com/gcbaptista/ftscore/tokenizer"
)

// Stores bundles the typed KV views one write transaction needs to apply
// any update. It is assembled fresh per transaction since bbolt buckets are
// only valid for the lifetime of their owning Tx.
type Stores struct {
	Main        store.Main
	Postings    store.PostingsLists
	Fields      store.DocumentsFields
	FieldCounts store.DocumentsFieldsCounts
	DocsWords   store.DocsWords
	Synonyms    store.Synonyms
}

func OpenStores(tx kv.Tx) (Stores, error) {
	mainB, err := tx.Bucket(store.BucketMain)
	if err != nil {
		return Stores{}, ftserrors.NewStoreError(err)
	}
	postingsB, err := tx.Bucket(store.BucketPostingsLists)
	if err != nil {
		return Stores{}, ftserrors.NewStoreError(err)
	}
	fieldsB, err := tx.Bucket(store.BucketDocumentsFields)
	if err != nil {
		return Stores{}, ftserrors.NewStoreError(err)
	}
	countsB, err := tx.Bucket(store.BucketDocumentsFieldsCounts)
	if err != nil {
		return Stores{}, ftserrors.NewStoreError(err)
	}
	docsWordsB, err := tx.Bucket(store.BucketDocsWords)
	if err != nil {
		return Stores{}, ftserrors.NewStoreError(err)
	}
	synonymsB, err := tx.Bucket(store.BucketSynonyms)
	if err != nil {
		return Stores{}, ftserrors.NewStoreError(err)
	}
	return Stores{
		Main:        store.Main{Bucket: mainB},
		Postings:    store.PostingsLists{Bucket: postingsB},
		Fields:      store.DocumentsFields{Bucket: fieldsB},
		FieldCounts: store.DocumentsFieldsCounts{Bucket: countsB},
		DocsWords:   store.DocsWords{Bucket: docsWordsB},
		Synonyms:    store.Synonyms{Bucket: synonymsB},
	}, nil
}

// Applier carries the collaborators (tokenizer) needed to apply updates;
// it is stateless beyond that and safe to share across transactions since
// the single-writer discipline means only one Apply call runs at a time.
type Applier struct {
	Tokenizer tokenizer.Tokenizer
}

func NewApplier(tok tokenizer.Tokenizer) *Applier {
	if tok == nil {
		tok = tokenizer.Default{}
	}
	return &Applier{Tokenizer: tok}
}

// persistSchema gob-encodes sch into BucketMain within the current write
// transaction, so a restart's open() sees the same field ids and attribute
// classification the in-memory schema just settled on (SPEC_FULL §3).
func persistSchema(stores Stores, sch *schema.Schema) error {
	raw, err := sch.GobEncode()
	if err != nil {
		return ftserrors.NewBinarySerdeError(err)
	}
	return ftserrors.NewStoreError(stores.Main.PutSchemaBytes(raw))
}

// Apply dispatches data to the matching apply_* routine under tx, mutating
// sch and rm in place. A returned error means the caller must not commit
// tx: no partial state may become visible (SPEC_FULL §7 propagation policy).
func (a *Applier) Apply(tx kv.Tx, sch *schema.Schema, rm *rankedmap.Map, data Data) error {
	stores, err := OpenStores(tx)
	if err != nil {
		return err
	}

	switch data.Type {
	case TypeClearAll:
		return a.applyClearAll(stores, rm)
	case TypeCustoms:
		return ftserrors.NewStoreError(stores.Main.PutCustoms(data.Customs))
	case TypeDocumentsAddition:
		return a.applyDocumentsAddition(stores, sch, rm, data.Documents)
	case TypeDocumentsPartial:
		return a.applyDocumentsPartial(stores, sch, rm, data.Documents)
	case TypeDocumentsDeletion:
		return a.applyDocumentsDeletion(stores, sch, rm, data.DeletedIdentifiers)
	case TypeSettings:
		return a.applySettings(stores, sch, data.Settings)
	default:
		return nil
	}
}

func (a *Applier) applyClearAll(stores Stores, rm *rankedmap.Map) error {
	for _, clear := range []func() error{
		stores.Postings.Clear,
		stores.Fields.Clear,
		stores.FieldCounts.Clear,
		stores.DocsWords.Clear,
		stores.Synonyms.Clear,
	} {
		if err := clear(); err != nil {
			return ftserrors.NewStoreError(err)
		}
	}
	if err := stores.Main.PutWordsFstBytes(nil); err != nil {
		return ftserrors.NewStoreError(err)
	}
	if err := stores.Main.PutNumberOfDocuments(0); err != nil {
		return ftserrors.NewStoreError(err)
	}
	*rm = *rankedmap.New()
	return nil
}
