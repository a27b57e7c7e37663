package schema

import (
	"errors"
	"reflect"
	"testing"

	ftserrors "github.com/gcbaptista/ftscore/errors"
)

func TestNewInternsIdentifier(t *testing.T) {
	s := New("documentID")
	id, ok := s.ID("documentID")
	if !ok {
		t.Fatal("expected identifier attribute to be interned")
	}
	name, ok := s.Name(id)
	if !ok || name != "documentID" {
		t.Fatalf("Name(%d) = (%q, %v), want (\"documentID\", true)", id, name, ok)
	}
}

func TestEmptySchemaSetIdentifierDoesNotPanic(t *testing.T) {
	s := Empty()
	if err := s.SetIdentifier("documentID"); err != nil {
		t.Fatalf("SetIdentifier returned error: %v", err)
	}
	if s.Identifier != "documentID" {
		t.Fatalf("Identifier = %q, want documentID", s.Identifier)
	}
}

func TestSetIdentifierRejectsChange(t *testing.T) {
	s := New("documentID")
	err := s.SetIdentifier("otherID")
	if err == nil {
		t.Fatal("expected an error changing an already-set identifier")
	}
	var unsupported *ftserrors.UnsupportedOperationError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected an UnsupportedOperationError, got %T: %v", err, err)
	}
}

func TestUpdateIndexedPreservesPrefix(t *testing.T) {
	s := New("documentID")
	if err := s.UpdateIndexed([]string{"title", "overview"}); err != nil {
		t.Fatalf("UpdateIndexed returned error: %v", err)
	}
	if got := s.IndexedAttributes(); !reflect.DeepEqual(got, []string{"title", "overview"}) {
		t.Fatalf("IndexedAttributes() = %v", got)
	}

	if err := s.UpdateIndexed([]string{"title", "overview", "cast"}); err != nil {
		t.Fatalf("appending a new indexed attribute should be legal: %v", err)
	}
	if got := s.IndexedAttributes(); !reflect.DeepEqual(got, []string{"title", "overview", "cast"}) {
		t.Fatalf("IndexedAttributes() = %v", got)
	}
}

func TestUpdateIndexedRejectsReorderAndRemoval(t *testing.T) {
	s := New("documentID")
	if err := s.UpdateIndexed([]string{"title", "overview"}); err != nil {
		t.Fatalf("UpdateIndexed returned error: %v", err)
	}

	if err := s.UpdateIndexed([]string{"overview", "title"}); err == nil {
		t.Fatal("expected an error reordering existing indexed attributes")
	}
	if err := s.UpdateIndexed([]string{"title"}); err == nil {
		t.Fatal("expected an error removing an existing indexed attribute")
	}
}

func TestUpdateDisplayedAndRanked(t *testing.T) {
	s := New("documentID")
	if err := s.UpdateDisplayed([]string{"title"}); err != nil {
		t.Fatalf("UpdateDisplayed returned error: %v", err)
	}
	if got := s.DisplayedAttributes(); !reflect.DeepEqual(got, []string{"title"}) {
		t.Fatalf("DisplayedAttributes() = %v", got)
	}

	if err := s.UpdateRanked([]string{"popularity"}); err != nil {
		t.Fatalf("UpdateRanked returned error: %v", err)
	}
	if got := s.RankedAttributes(); !reflect.DeepEqual(got, []string{"popularity"}) {
		t.Fatalf("RankedAttributes() = %v", got)
	}
}

func TestEnsureIDRespectsIndexNewFields(t *testing.T) {
	s := New("documentID")
	s.SetIndexNewFields(false)
	if _, ok := s.EnsureID("brandNew"); ok {
		t.Fatal("expected EnsureID to refuse a new attribute when IndexNewFields is false")
	}

	s.SetIndexNewFields(true)
	id, ok := s.EnsureID("brandNew")
	if !ok {
		t.Fatal("expected EnsureID to intern a new attribute when IndexNewFields is true")
	}
	if name, ok := s.Name(id); !ok || name != "brandNew" {
		t.Fatalf("Name(%d) = (%q, %v)", id, name, ok)
	}
}

func TestGobRoundTrip(t *testing.T) {
	s := New("documentID")
	if err := s.UpdateIndexed([]string{"title"}); err != nil {
		t.Fatalf("UpdateIndexed returned error: %v", err)
	}
	if err := s.UpdateDisplayed([]string{"title"}); err != nil {
		t.Fatalf("UpdateDisplayed returned error: %v", err)
	}

	encoded, err := s.GobEncode()
	if err != nil {
		t.Fatalf("GobEncode returned error: %v", err)
	}

	decoded := &Schema{}
	if err := decoded.GobDecode(encoded); err != nil {
		t.Fatalf("GobDecode returned error: %v", err)
	}

	if decoded.Identifier != s.Identifier {
		t.Errorf("Identifier = %q, want %q", decoded.Identifier, s.Identifier)
	}
	if got := decoded.IndexedAttributes(); !reflect.DeepEqual(got, []string{"title"}) {
		t.Errorf("IndexedAttributes() = %v", got)
	}
	if got := decoded.DisplayedAttributes(); !reflect.DeepEqual(got, []string{"title"}) {
		t.Errorf("DisplayedAttributes() = %v", got)
	}
}
