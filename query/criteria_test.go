package query

import (
	"testing"

	"github.com/gcbaptista/ftscore/rankedmap"
	"github.com/gcbaptista/ftscore/store"
)

func docWithMatches(id uint64, matches map[int]Match) *RawDocument {
	return &RawDocument{DocumentID: id, Matches: matches}
}

func TestTypoCriterionPrefersFewerTypos(t *testing.T) {
	a := docWithMatches(1, map[int]Match{0: {EditDistance: 2}})
	b := docWithMatches(2, map[int]Match{0: {EditDistance: 0}})

	crit := Typo()
	if !crit.Less(b, a) {
		t.Fatal("expected the exact match (0 typos) to sort before the 2-typo match")
	}
	if crit.Less(a, b) {
		t.Fatal("a should not be Less than b")
	}
}

func TestWordsCriterionPrefersMoreMatches(t *testing.T) {
	a := docWithMatches(1, map[int]Match{0: {}})
	b := docWithMatches(2, map[int]Match{0: {}, 1: {}})

	crit := Words()
	if !crit.Less(b, a) {
		t.Fatal("expected the document matching more query words to sort first (desc)")
	}
}

func TestExactCriterionPrefersMoreExactMatches(t *testing.T) {
	a := docWithMatches(1, map[int]Match{0: {IsExact: false}})
	b := docWithMatches(2, map[int]Match{0: {IsExact: true}})

	crit := Exact()
	if !crit.Less(b, a) {
		t.Fatal("expected the exact match to sort first (desc)")
	}
}

func TestAttributeCriterionPrefersEarlierAttribute(t *testing.T) {
	a := docWithMatches(1, map[int]Match{0: {Entries: []store.DocIndex{{Attribute: 3}}}})
	b := docWithMatches(2, map[int]Match{0: {Entries: []store.DocIndex{{Attribute: 1}}}})

	crit := Attribute()
	if !crit.Less(b, a) {
		t.Fatal("expected the match in the earlier attribute to sort first")
	}
}

func TestAscDescRankedCriteriaOrderNullsLast(t *testing.T) {
	rm := rankedmap.New()
	rm.Set(1, 9, rankedmap.FromInt(10))
	rm.Set(2, 9, rankedmap.FromInt(20))
	// document 3 has no value for field 9: Null.

	a := docWithMatches(1, nil)
	b := docWithMatches(2, nil)
	c := docWithMatches(3, nil)

	asc := Asc(rm, 9)
	if !asc.Less(a, b) {
		t.Error("Asc: expected doc 1 (10) before doc 2 (20)")
	}
	if !asc.Less(b, c) {
		t.Error("Asc: expected doc 2 (a value) before doc 3 (null)")
	}

	desc := Desc(rm, 9)
	if !desc.Less(b, a) {
		t.Error("Desc: expected doc 2 (20) before doc 1 (10)")
	}
	if !desc.Less(b, c) {
		t.Error("Desc: expected doc 2 (a value) before doc 3 (null) even descending")
	}
}

func TestBucketSortRespectsOffsetAndLimit(t *testing.T) {
	docs := []*RawDocument{
		docWithMatches(1, map[int]Match{0: {EditDistance: 2}}),
		docWithMatches(2, map[int]Match{0: {EditDistance: 0}}),
		docWithMatches(3, map[int]Match{0: {EditDistance: 1}}),
	}

	ranked := BucketSort(docs, []Criterion{Typo()}, 0, 2)
	if len(ranked) != 2 {
		t.Fatalf("len(ranked) = %d, want 2", len(ranked))
	}
	if ranked[0].DocumentID != 2 || ranked[1].DocumentID != 3 {
		t.Fatalf("ranked ids = [%d, %d], want [2, 3]", ranked[0].DocumentID, ranked[1].DocumentID)
	}
}

func TestBucketSortOffsetBeyondResultsReturnsNil(t *testing.T) {
	docs := []*RawDocument{docWithMatches(1, nil)}
	if got := BucketSort(docs, DefaultCriteria(), 5, 10); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}
