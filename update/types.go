// Package update implements the durable mutation queue and its single-writer
// applier (SPEC_FULL §4.4 and §4.8): ClearAll, Customs, DocumentsAddition,
// DocumentsPartial, DocumentsDeletion and Settings updates, each applied
// under one write transaction on the main environment.
package update

import (
	"encoding/json"
	"time"
)

// Type discriminates the UpdateData sum type. Named "Type" rather than
// "Kind" to match the wire tag name the spec's serialized format uses
// ("type").
type Type string

const (
	TypeClearAll              Type = "ClearAll"
	TypeCustoms               Type = "Customs"
	TypeDocumentsAddition     Type = "DocumentsAddition"
	TypeDocumentsPartial      Type = "DocumentsPartial"
	TypeDocumentsDeletion     Type = "DocumentsDeletion"
	TypeSettings              Type = "Settings"
)

// StateKind is one of the three tri-state settings: Nothing (field absent
// from the JSON payload, meaning "leave untouched"), Clear (explicit JSON
// null, meaning "reset to default/empty"), or Update (a concrete value).
type StateKind int

const (
	StateNothing StateKind = iota
	StateClear
	StateUpdate
)

// TriState distinguishes "absent" from "explicit null" from "a value",
// which plain pointers or Go zero values cannot (SPEC_FULL §9). Per-field
// JSON unmarshaling: a field entirely missing from the payload leaves the
// TriState at its zero value (StateNothing); a JSON null sets StateClear;
// anything else is decoded into Value as StateUpdate.
type TriState[T any] struct {
	Kind  StateKind
	Value T
}

func (t *TriState[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		t.Kind = StateClear
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	t.Kind = StateUpdate
	t.Value = v
	return nil
}

func (t TriState[T]) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case StateClear:
		return []byte("null"), nil
	case StateUpdate:
		return json.Marshal(t.Value)
	default:
		return []byte("null"), nil
	}
}

// SettingsUpdate carries the tri-stated settings payload (SPEC_FULL §4.8).
type SettingsUpdate struct {
	RankingRules         TriState[[]string]              `json:"rankingRules,omitempty"`
	RankingDistinct      TriState[string]                 `json:"rankingDistinct,omitempty"`
	IndexNewFields       TriState[bool]                   `json:"indexNewFields,omitempty"`
	SearchableAttributes TriState[[]string]               `json:"searchableAttributes,omitempty"`
	DisplayedAttributes  TriState[[]string]                `json:"displayedAttributes,omitempty"`
	Identifier           TriState[string]                  `json:"identifier,omitempty"`
	StopWords            TriState[[]string]                 `json:"stopWords,omitempty"`
	Synonyms             TriState[map[string][]string]      `json:"synonyms,omitempty"`
}

// Data is the tagged union of mutation payloads. Only the field matching
// Type is meaningful; this mirrors the teacher's and the corpus's preferred
// tagged-struct style for sum types over Go interfaces-with-type-switch,
// since the payload must also round-trip through gob for the durable queue.
type Data struct {
	Type Type

	Customs           []byte
	Documents         []map[string]interface{} // DocumentsAddition / DocumentsPartial
	DeletedIdentifiers []string                 // DocumentsDeletion: user identifier values
	Settings          SettingsUpdate
}

// Update is one durable queue record.
type Update struct {
	Data       Data
	EnqueuedAt time.Time
}

// ProcessedUpdateResult is recorded once an update finishes, success or
// failure.
type ProcessedUpdateResult struct {
	UpdateID    uint64
	UpdateType  Type
	Error       *string
	DurationSec float64
	EnqueuedAt  time.Time
	ProcessedAt time.Time
}

// EnqueuedUpdateResult describes an update still waiting in the queue.
type EnqueuedUpdateResult struct {
	UpdateID   uint64
	UpdateType Type
	EnqueuedAt time.Time
}

// Status is the externally observable lifecycle state of one update id,
// matching the wire shape in SPEC_FULL §6:
// { status, updateId, type, enqueuedAt, processedAt?, duration?, error? }.
type Status struct {
	Status      string  `json:"status"`
	UpdateID    uint64  `json:"updateId"`
	Type        Type    `json:"type"`
	EnqueuedAt  time.Time `json:"enqueuedAt"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
	DurationSec *float64   `json:"duration,omitempty"`
	Error       *string    `json:"error,omitempty"`
}

const (
	StatusEnqueued = "enqueued"
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)
