// Package errors defines the sum type of error kinds the core can return,
// following the error taxonomy of the original index engine this module
// reimplements. Kinds that carry data are typed structs so callers can use
// errors.As for kind-specific fields; kinds without data are plain sentinel
// values below, matched with errors.Is for coarse-grained dispatch (the HTTP
// front-end maps these to 4xx/5xx).
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors. DocumentNotFoundError and IndexAlreadyExistsError
// implement Is(target), so errors.Is(err, ErrDocumentNotFound) and
// errors.Is(err, ErrIndexAlreadyExists) also match those typed structs; the
// other typed wrappers below only Unwrap to the error they carry.
var (
	ErrIndexAlreadyExists   = errors.New("index already exists")
	ErrMissingIdentifier    = errors.New("could not infer a schema: missing identifier")
	ErrSchemaMissing        = errors.New("schema missing")
	ErrWordIndexMissing     = errors.New("word index missing")
	ErrMissingDocumentID    = errors.New("document is missing its identifier field")
	ErrMaxFieldsLimitExceeded = errors.New("maximum number of fields exceeded")
	ErrDocumentNotFound     = errors.New("document not found")
)

// DocumentNotFoundError names the identifier value that had no matching
// document.
type DocumentNotFoundError struct {
	Identifier string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document %q not found", e.Identifier)
}

func (e *DocumentNotFoundError) Is(target error) bool { return target == ErrDocumentNotFound }

// UnsupportedKind enumerates the illegal schema mutations the spec calls
// out by name.
type UnsupportedKind int

const (
	SchemaAlreadyExists UnsupportedKind = iota
	CannotUpdateSchemaIdentifier
	CannotReorderSchemaAttribute
	CanOnlyIntroduceNewSchemaAttributesAtEnd
	CannotRemoveSchemaAttribute
)

func (k UnsupportedKind) String() string {
	switch k {
	case SchemaAlreadyExists:
		return "schema already exists"
	case CannotUpdateSchemaIdentifier:
		return "cannot update schema identifier"
	case CannotReorderSchemaAttribute:
		return "cannot reorder schema attribute"
	case CanOnlyIntroduceNewSchemaAttributesAtEnd:
		return "can only introduce new schema attributes at the end"
	case CannotRemoveSchemaAttribute:
		return "cannot remove schema attribute"
	default:
		return "unsupported operation"
	}
}

// IndexAlreadyExistsError names the index the caller tried to recreate.
type IndexAlreadyExistsError struct {
	Name string
}

func (e *IndexAlreadyExistsError) Error() string {
	return fmt.Sprintf("index named %q already exists", e.Name)
}

func (e *IndexAlreadyExistsError) Is(target error) bool { return target == ErrIndexAlreadyExists }

// SchemaError wraps a failure raised while mutating or reading the schema.
type SchemaError struct {
	Op  string
	Err error
}

func (e *SchemaError) Error() string { return fmt.Sprintf("schema: %s: %v", e.Op, e.Err) }
func (e *SchemaError) Unwrap() error { return e.Err }

// UnsupportedOperationError carries one of the named illegal-mutation kinds.
type UnsupportedOperationError struct {
	Kind  UnsupportedKind
	Field string
}

func (e *UnsupportedOperationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("unsupported operation: %s (field %q)", e.Kind, e.Field)
	}
	return fmt.Sprintf("unsupported operation: %s", e.Kind)
}

func NewUnsupportedOperationError(kind UnsupportedKind, field string) *UnsupportedOperationError {
	return &UnsupportedOperationError{Kind: kind, Field: field}
}

// StoreError wraps an underlying KV-engine failure (bbolt or another
// injected store implementation).
type StoreError struct{ Err error }

func (e *StoreError) Error() string { return fmt.Sprintf("store: %v", e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

func NewStoreError(err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Err: err}
}

// FstError wraps a failure from the FST/automaton engine.
type FstError struct{ Err error }

func (e *FstError) Error() string { return fmt.Sprintf("fst: %v", e.Err) }
func (e *FstError) Unwrap() error { return e.Err }

func NewFstError(err error) error {
	if err == nil {
		return nil
	}
	return &FstError{Err: err}
}

// JSONSerdeError wraps a JSON (de)serialization failure of document or
// settings payloads.
type JSONSerdeError struct{ Err error }

func (e *JSONSerdeError) Error() string { return fmt.Sprintf("json: %v", e.Err) }
func (e *JSONSerdeError) Unwrap() error { return e.Err }

func NewJSONSerdeError(err error) error {
	if err == nil {
		return nil
	}
	return &JSONSerdeError{Err: err}
}

// BinarySerdeError wraps a failure (de)serializing the gob-encoded update
// queue records or internal binary structures.
type BinarySerdeError struct{ Err error }

func (e *BinarySerdeError) Error() string { return fmt.Sprintf("binary encoding: %v", e.Err) }
func (e *BinarySerdeError) Unwrap() error { return e.Err }

func NewBinarySerdeError(err error) error {
	if err == nil {
		return nil
	}
	return &BinarySerdeError{Err: err}
}
