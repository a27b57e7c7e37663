// Package testing provides shared test helpers for exercising a catalog of
// indexes end to end: spinning up a throwaway data directory, creating an
// index with a minimal schema, pushing documents through the update queue
// and waiting for them to land.
package testing

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/ftscore/index"
	"github.com/gcbaptista/ftscore/internal/engine"
	"github.com/gcbaptista/ftscore/update"
)

// TestDirRegistry tracks test directories for cleanup.
type TestDirRegistry struct {
	mu   sync.Mutex
	dirs []string
}

var globalTestDirRegistry = &TestDirRegistry{}

func (r *TestDirRegistry) register(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dirs = append(r.dirs, dir)
}

// CleanupTestDirs removes every directory registered by CreateTestEngine.
func CleanupTestDirs() {
	globalTestDirRegistry.mu.Lock()
	defer globalTestDirRegistry.mu.Unlock()
	for _, dir := range globalTestDirRegistry.dirs {
		if err := os.RemoveAll(dir); err != nil {
			fmt.Printf("warning: failed to remove test directory %s: %v\n", dir, err)
		}
	}
	globalTestDirRegistry.dirs = nil
}

// CreateTestEngine opens a fresh catalog rooted at a unique temp directory,
// registered for cleanup via t.Cleanup.
func CreateTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	dir := fmt.Sprintf("%s/ftscore_test_%d", t.TempDir(), time.Now().UnixNano())
	globalTestDirRegistry.register(dir)

	eng, err := engine.NewEngine(dir)
	require.NoError(t, err, "failed to create test engine")
	t.Cleanup(func() { eng.Close(context.Background()) })
	return eng
}

// CreateTestIndex creates indexName with identifier "documentID" and the
// given searchable attributes, blocking until the settings update that
// establishes the schema has been applied.
func CreateTestIndex(t *testing.T, eng *engine.Engine, indexName string, searchable []string) *index.Index {
	t.Helper()
	idx, err := eng.CreateIndex(indexName)
	require.NoError(t, err, "failed to create test index")

	settings := update.SettingsUpdate{
		Identifier:           update.TriState[string]{Kind: update.StateUpdate, Value: "documentID"},
		SearchableAttributes: update.TriState[[]string]{Kind: update.StateUpdate, Value: searchable},
		DisplayedAttributes:  update.TriState[[]string]{Kind: update.StateUpdate, Value: searchable},
	}
	id, err := idx.SettingsUpdate(context.Background(), settings)
	require.NoError(t, err, "failed to enqueue schema settings")
	WaitForUpdate(t, idx, id, 5*time.Second)
	return idx
}

// AddTestDocuments enqueues docs for addition and waits for the update to
// finish applying.
func AddTestDocuments(t *testing.T, idx *index.Index, docs []map[string]interface{}) {
	t.Helper()
	id, err := idx.DocumentsAddition(context.Background(), docs)
	require.NoError(t, err, "failed to enqueue documents")
	WaitForUpdate(t, idx, id, 5*time.Second)
}

// WaitForUpdate polls an index's update status until it leaves the enqueued
// state or the timeout elapses.
func WaitForUpdate(t *testing.T, idx *index.Index, updateID uint64, timeout time.Duration) update.Status {
	t.Helper()
	deadline := time.After(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			t.Fatalf("update %d did not complete within %v", updateID, timeout)
		case <-ticker.C:
			status, found, err := idx.UpdateStatus(context.Background(), updateID)
			require.NoError(t, err, "failed to read update status")
			if !found {
				continue
			}
			if status.Status == update.StatusProcessed || status.Status == update.StatusFailed {
				if status.Status == update.StatusFailed && status.Error != nil {
					t.Fatalf("update %d failed: %s", updateID, *status.Error)
				}
				return status
			}
		}
	}
}
