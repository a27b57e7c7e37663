package automaton

import (
	"reflect"
	"testing"
)

func TestBuildSetAndKeysRoundTrip(t *testing.T) {
	words := []string{"banana", "apple", "cherry", "apple"}
	raw, err := BuildSet(words)
	if err != nil {
		t.Fatalf("BuildSet returned error: %v", err)
	}

	fst, err := LoadSet(raw)
	if err != nil {
		t.Fatalf("LoadSet returned error: %v", err)
	}

	got, err := Keys(fst)
	if err != nil {
		t.Fatalf("Keys returned error: %v", err)
	}
	want := []string{"apple", "banana", "cherry"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
}

func TestLoadSetWithNilBytesIsEmpty(t *testing.T) {
	fst, err := LoadSet(nil)
	if err != nil {
		t.Fatalf("LoadSet(nil) returned error: %v", err)
	}
	keys, err := Keys(fst)
	if err != nil {
		t.Fatalf("Keys returned error: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("Keys() = %v, want empty", keys)
	}
}

func TestDifference(t *testing.T) {
	got := Difference([]string{"a", "b", "c"}, []string{"b"})
	want := []string{"a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Difference() = %v, want %v", got, want)
	}
}

func TestKeysOnNilFST(t *testing.T) {
	got, err := Keys(nil)
	if err != nil {
		t.Fatalf("Keys(nil) returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("Keys(nil) = %v, want nil", got)
	}
}
