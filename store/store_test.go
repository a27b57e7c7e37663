package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gcbaptista/ftscore/kv"
)

func openTestEnv(t *testing.T) kv.Env {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store-test.db")
	env, err := kv.OpenBoltEnv(path)
	if err != nil {
		t.Fatalf("OpenBoltEnv returned error: %v", err)
	}
	t.Cleanup(func() { env.Close() })
	return env
}

func TestPostingsListsPutGetAndForEach(t *testing.T) {
	env := openTestEnv(t)

	entries := []DocIndex{
		{DocumentID: 1, Attribute: 0, WordIndex: 0, CharIndex: 0, CharLength: 3},
		{DocumentID: 2, Attribute: 1, WordIndex: 0, CharIndex: 0, CharLength: 3},
	}

	err := env.Update(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(BucketPostingsLists)
		if err != nil {
			return err
		}
		p := PostingsLists{Bucket: b}
		if err := p.Put([]byte("cat"), entries); err != nil {
			return err
		}
		return p.Put([]byte("dog"), entries[:1])
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	err = env.View(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(BucketPostingsLists)
		if err != nil {
			return err
		}
		p := PostingsLists{Bucket: b}

		got := p.Get([]byte("cat"))
		if len(got) != 2 {
			t.Fatalf("Get(cat) = %v, want 2 entries", got)
		}

		var words []string
		p.ForEach(func(word []byte, list []DocIndex) bool {
			words = append(words, string(word))
			return true
		})
		if len(words) != 2 || words[0] != "cat" || words[1] != "dog" {
			t.Fatalf("ForEach visited %v, want [cat dog] in ascending order", words)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}
}

func TestDocsWordsPutGetDeleteAndAllDocIDs(t *testing.T) {
	env := openTestEnv(t)

	err := env.Update(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(BucketDocsWords)
		if err != nil {
			return err
		}
		dw := DocsWords{Bucket: b}
		if err := dw.Put(1, []string{"cat", "hat"}); err != nil {
			return err
		}
		return dw.Put(2, []string{"dog"})
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	err = env.View(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(BucketDocsWords)
		if err != nil {
			return err
		}
		dw := DocsWords{Bucket: b}

		words, err := dw.Get(1)
		if err != nil {
			return err
		}
		if len(words) != 2 || words[0] != "cat" || words[1] != "hat" {
			t.Errorf("Get(1) = %v, want [cat hat]", words)
		}

		ids, err := dw.AllDocIDs()
		if err != nil {
			return err
		}
		if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
			t.Errorf("AllDocIDs() = %v, want [1 2]", ids)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}

	err = env.Update(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(BucketDocsWords)
		if err != nil {
			return err
		}
		return DocsWords{Bucket: b}.Delete(1)
	})
	if err != nil {
		t.Fatalf("Update (Delete) returned error: %v", err)
	}

	err = env.View(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(BucketDocsWords)
		if err != nil {
			return err
		}
		words, err := DocsWords{Bucket: b}.Get(1)
		if err != nil {
			return err
		}
		if words != nil {
			t.Errorf("Get(1) after Delete = %v, want nil", words)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}
}

func TestDocumentsFieldsForEachFieldAndDeleteDocument(t *testing.T) {
	env := openTestEnv(t)

	err := env.Update(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(BucketDocumentsFields)
		if err != nil {
			return err
		}
		d := DocumentsFields{Bucket: b}
		if err := d.Put(1, 0, []byte(`"Alice"`)); err != nil {
			return err
		}
		if err := d.Put(1, 1, []byte(`30`)); err != nil {
			return err
		}
		return d.Put(2, 0, []byte(`"Bob"`))
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	err = env.View(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(BucketDocumentsFields)
		if err != nil {
			return err
		}
		d := DocumentsFields{Bucket: b}
		var fields []uint16
		d.ForEachField(1, func(fieldID uint16, value []byte) {
			fields = append(fields, fieldID)
		})
		if len(fields) != 2 || fields[0] != 0 || fields[1] != 1 {
			t.Errorf("ForEachField(1) visited %v, want [0 1]", fields)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}

	err = env.Update(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(BucketDocumentsFields)
		if err != nil {
			return err
		}
		return DocumentsFields{Bucket: b}.DeleteDocument(1)
	})
	if err != nil {
		t.Fatalf("Update (DeleteDocument) returned error: %v", err)
	}

	err = env.View(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(BucketDocumentsFields)
		if err != nil {
			return err
		}
		d := DocumentsFields{Bucket: b}
		if got := d.Get(1, 0); got != nil {
			t.Errorf("Get(1,0) after DeleteDocument = %v, want nil", got)
		}
		if got := d.Get(2, 0); got == nil {
			t.Error("Get(2,0) after deleting doc 1 = nil, want preserved")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}
}

func TestSynonymsPutGet(t *testing.T) {
	env := openTestEnv(t)

	err := env.Update(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(BucketSynonyms)
		if err != nil {
			return err
		}
		return Synonyms{Bucket: b}.Put("car", []string{"automobile", "vehicle"})
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	err = env.View(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(BucketSynonyms)
		if err != nil {
			return err
		}
		alts, err := Synonyms{Bucket: b}.Get("car")
		if err != nil {
			return err
		}
		if len(alts) != 2 || alts[0] != "automobile" || alts[1] != "vehicle" {
			t.Errorf("Get(car) = %v, want [automobile vehicle]", alts)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}
}

func TestUpdatesPutGetLastAndForEachFrom(t *testing.T) {
	env := openTestEnv(t)

	err := env.Update(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(BucketUpdates)
		if err != nil {
			return err
		}
		u := Updates{Bucket: b}
		for id := uint64(1); id <= 3; id++ {
			if err := u.Put(id, []byte("record")); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	err = env.View(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(BucketUpdates)
		if err != nil {
			return err
		}
		u := Updates{Bucket: b}

		last, ok := u.Last()
		if !ok || last != 3 {
			t.Errorf("Last() = (%d, %v), want (3, true)", last, ok)
		}

		var ids []uint64
		u.ForEachFrom(2, func(id uint64, record []byte) bool {
			ids = append(ids, id)
			return true
		})
		if len(ids) != 2 || ids[0] != 2 || ids[1] != 3 {
			t.Errorf("ForEachFrom(2) = %v, want [2 3]", ids)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}
}

func TestMainSingletonValues(t *testing.T) {
	env := openTestEnv(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := env.Update(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(BucketMain)
		if err != nil {
			return err
		}
		m := Main{Bucket: b}
		if err := m.PutSchemaBytes([]byte("schema-bytes")); err != nil {
			return err
		}
		if err := m.PutRankingRules([]RankingRule{"typo", "words"}); err != nil {
			return err
		}
		if err := m.PutRankingDistinct("sku"); err != nil {
			return err
		}
		if err := m.PutNumberOfDocuments(7); err != nil {
			return err
		}
		return m.PutCreatedAt(now)
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	err = env.View(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(BucketMain)
		if err != nil {
			return err
		}
		m := Main{Bucket: b}

		if got := string(m.SchemaBytes()); got != "schema-bytes" {
			t.Errorf("SchemaBytes() = %q, want \"schema-bytes\"", got)
		}

		rules, err := m.RankingRules()
		if err != nil {
			return err
		}
		if len(rules) != 2 || rules[0] != "typo" || rules[1] != "words" {
			t.Errorf("RankingRules() = %v, want [typo words]", rules)
		}

		if got := m.RankingDistinct(); got != "sku" {
			t.Errorf("RankingDistinct() = %q, want \"sku\"", got)
		}

		if got := m.NumberOfDocuments(); got != 7 {
			t.Errorf("NumberOfDocuments() = %d, want 7", got)
		}

		createdAt, ok := m.CreatedAt()
		if !ok || !createdAt.Equal(now) {
			t.Errorf("CreatedAt() = (%v, %v), want (%v, true)", createdAt, ok, now)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View returned error: %v", err)
	}
}
