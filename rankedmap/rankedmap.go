// Package rankedmap implements the in-memory (DocumentID, FieldId) -> Number
// index that backs the Asc/Desc(field) ranking criteria and the distinct-map
// dedup key. Number is a closed sum type over int64/float64/null that
// supports one total order with nulls sorting last, matching the teacher's
// filter code (internal/search/service.go) which already type-switches
// document field values across float64/string/bool/time.Time when ranking
// and filtering.
package rankedmap

import "time"

// Kind discriminates the Number variant.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
)

// Number is a total-order-comparable numeric value, or null.
type Number struct {
	Kind  Kind
	Int   int64
	Float float64
}

var Null = Number{Kind: KindNull}

func FromInt(v int64) Number   { return Number{Kind: KindInt, Int: v} }
func FromFloat(v float64) Number { return Number{Kind: KindFloat, Float: v} }

// FromAny converts a decoded-JSON value into a Number (a time.Time becomes
// its UnixNano integer), returning Null for anything else (strings, bools,
// objects, arrays, missing).
func FromAny(v interface{}) Number {
	switch x := v.(type) {
	case float64:
		return FromFloat(x)
	case int:
		return FromInt(int64(x))
	case int64:
		return FromInt(x)
	case time.Time:
		return FromInt(x.UnixNano())
	default:
		return Null
	}
}

func (n Number) asFloat() float64 {
	if n.Kind == KindInt {
		return float64(n.Int)
	}
	return n.Float
}

// Less defines the total order used by Asc criteria: nulls sort last,
// regardless of direction (Desc reverses everything except null placement).
func Less(a, b Number) bool {
	if a.Kind == KindNull && b.Kind == KindNull {
		return false
	}
	if a.Kind == KindNull {
		return false
	}
	if b.Kind == KindNull {
		return true
	}
	return a.asFloat() < b.asFloat()
}

// Map is the per-index, per-field RankedMap: (DocumentID, FieldId) -> Number.
type Map struct {
	values map[uint16]map[uint64]Number
}

func New() *Map {
	return &Map{values: make(map[uint16]map[uint64]Number)}
}

func (m *Map) Set(docID uint64, fieldID uint16, n Number) {
	byDoc, ok := m.values[fieldID]
	if !ok {
		byDoc = make(map[uint64]Number)
		m.values[fieldID] = byDoc
	}
	byDoc[docID] = n
}

func (m *Map) Delete(docID uint64, fieldID uint16) {
	if byDoc, ok := m.values[fieldID]; ok {
		delete(byDoc, docID)
	}
}

func (m *Map) DeleteDocument(docID uint64) {
	for _, byDoc := range m.values {
		delete(byDoc, docID)
	}
}

func (m *Map) Get(docID uint64, fieldID uint16) Number {
	byDoc, ok := m.values[fieldID]
	if !ok {
		return Null
	}
	n, ok := byDoc[docID]
	if !ok {
		return Null
	}
	return n
}
