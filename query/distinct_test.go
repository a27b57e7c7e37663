package query

import (
	"testing"

	"github.com/gcbaptista/ftscore/rankedmap"
)

func TestDistinctMapKeepsOnlyLimitPerValue(t *testing.T) {
	rm := rankedmap.New()
	rm.Set(1, 5, rankedmap.FromInt(100))
	rm.Set(2, 5, rankedmap.FromInt(100))
	rm.Set(3, 5, rankedmap.FromInt(100))
	rm.Set(4, 5, rankedmap.FromInt(200))

	docs := []*RawDocument{
		docWithMatches(1, nil),
		docWithMatches(2, nil),
		docWithMatches(3, nil),
		docWithMatches(4, nil),
	}

	distinct := NewDistinctMap(rm, 5, 1)
	filtered := Filter(docs, distinct)

	if len(filtered) != 2 {
		t.Fatalf("len(filtered) = %d, want 2 (one per distinct value)", len(filtered))
	}
	if filtered[0].DocumentID != 1 || filtered[1].DocumentID != 4 {
		t.Fatalf("filtered ids = [%d, %d], want [1, 4]", filtered[0].DocumentID, filtered[1].DocumentID)
	}
}

func TestFilterWithNilDistinctIsNoop(t *testing.T) {
	docs := []*RawDocument{docWithMatches(1, nil), docWithMatches(2, nil)}
	if got := Filter(docs, nil); len(got) != 2 {
		t.Fatalf("Filter with nil distinct changed the slice: %v", got)
	}
}
