// Package engine hosts the process-wide catalog of named indexes, the
// equivalent of the teacher's Engine type generalized from an in-memory,
// single-gob-blob-per-index design to one bbolt-backed index.Index per
// name. Index lifecycle (create/open/delete/list) is the engine's
// only remaining concern: document ingestion, settings changes and search
// all live on index.Index itself.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gcbaptista/ftscore/config"
	ftserrors "github.com/gcbaptista/ftscore/errors"
	"github.com/gcbaptista/ftscore/index"
)

// Engine owns every open index.Index under one data directory.
type Engine struct {
	mu      sync.RWMutex
	dataDir string
	cfg     config.EngineConfig
	indexes map[string]*index.Index
}

// NewEngine opens dataDir (creating it if necessary) with no indexes loaded,
// using default query fan-out caps. Callers that need previously-created
// indexes available immediately should follow with OpenIndex for each known
// name; the catalog of index names itself is whatever the embedding
// application tracks (SPEC_FULL leaves catalog persistence to the caller,
// mirroring the original embedding API's philosophy of exposing one Index
// at a time rather than owning a registry).
func NewEngine(dataDir string) (*Engine, error) {
	return NewEngineWithConfig(config.EngineConfig{DataDir: dataDir})
}

// NewEngineWithConfig opens dataDir per cfg, applying cfg's automaton and
// candidate caps to every index this Engine subsequently creates or opens.
func NewEngineWithConfig(cfg config.EngineConfig) (*Engine, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, ftserrors.NewStoreError(err)
	}
	return &Engine{dataDir: cfg.DataDir, cfg: cfg, indexes: make(map[string]*index.Index)}, nil
}

func (e *Engine) applyCaps(idx *index.Index) *index.Index {
	if e.cfg.AutomatonCap != 0 || e.cfg.CandidateCap != 0 {
		idx.SetQueryCaps(e.cfg.AutomatonCap, e.cfg.CandidateCap)
	}
	return idx
}

// CreateIndex creates and registers a brand-new index named name.
func (e *Engine) CreateIndex(name string) (*index.Index, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if name == "" {
		return nil, fmt.Errorf("index name cannot be empty")
	}
	if _, exists := e.indexes[name]; exists {
		return nil, &ftserrors.IndexAlreadyExistsError{Name: name}
	}

	idx, err := index.Create(e.dataDir, name)
	if err != nil {
		return nil, err
	}
	e.indexes[name] = e.applyCaps(idx)
	return idx, nil
}

// OpenIndex loads an index already present on disk into the catalog,
// returning it unchanged if already registered.
func (e *Engine) OpenIndex(name string) (*index.Index, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if idx, ok := e.indexes[name]; ok {
		return idx, nil
	}
	idx, err := index.Open(e.dataDir, name)
	if err != nil {
		return nil, err
	}
	if idx == nil {
		return nil, fmt.Errorf("index %q does not exist", name)
	}
	e.indexes[name] = e.applyCaps(idx)
	return idx, nil
}

// GetIndex returns an already-registered index, or (nil, false).
func (e *Engine) GetIndex(name string) (*index.Index, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	idx, ok := e.indexes[name]
	return idx, ok
}

// DeleteIndex closes and removes name's on-disk data.
func (e *Engine) DeleteIndex(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx, exists := e.indexes[name]
	if !exists {
		return fmt.Errorf("index %q does not exist", name)
	}
	idx.Close()
	delete(e.indexes, name)

	for _, suffix := range []string{".main.db", ".update.db"} {
		path := filepath.Join(e.dataDir, name+suffix)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return ftserrors.NewStoreError(err)
		}
	}
	return nil
}

// ListIndexes returns every registered index name, sorted.
func (e *Engine) ListIndexes() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.indexes))
	for name := range e.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close shuts down every registered index's background processor.
func (e *Engine) Close(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, idx := range e.indexes {
		idx.Close()
	}
}
