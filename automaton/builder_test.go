package automaton

import "testing"

func TestBuildSingleTokenIsPrefix(t *testing.T) {
	autos, err := Build([]string{"cat"}, nil, 0)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(autos) != 1 {
		t.Fatalf("len(autos) = %d, want 1", len(autos))
	}
	if autos[0].Query != "cat" || !autos[0].IsPrefix {
		t.Fatalf("got %+v, want query=cat, isPrefix=true", autos[0])
	}
}

func TestBuildMultiTokenAddsPhraseConcatAndRenumbersIndexes(t *testing.T) {
	autos, err := Build([]string{"star", "wars"}, nil, 0)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	var sawPhrase bool
	maxIdx := -1
	for _, a := range autos {
		if a.Query == "starwars" {
			sawPhrase = true
		}
		if a.QueryIndex > maxIdx {
			maxIdx = a.QueryIndex
		}
	}
	if !sawPhrase {
		t.Error("expected a phrase-concat automaton for \"starwars\"")
	}
	if maxIdx != 1 {
		t.Errorf("max QueryIndex = %d, want 1 (two query tokens)", maxIdx)
	}
}

func TestBuildExpandsSynonymsUnderSameQueryIndex(t *testing.T) {
	lookup := func(phrase string) ([]string, error) {
		if phrase == "car" {
			return []string{"automobile"}, nil
		}
		return nil, nil
	}
	autos, err := Build([]string{"car"}, lookup, 0)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	var carIdx, autoIdx = -1, -1
	for _, a := range autos {
		switch a.Query {
		case "car":
			carIdx = a.QueryIndex
		case "automobile":
			autoIdx = a.QueryIndex
		}
	}
	if carIdx == -1 || autoIdx == -1 {
		t.Fatalf("expected both \"car\" and \"automobile\" automatons, got %+v", autos)
	}
	if carIdx != autoIdx {
		t.Errorf("car.QueryIndex=%d, automobile.QueryIndex=%d, want equal", carIdx, autoIdx)
	}
}

func TestBuildRespectsAutomatonCap(t *testing.T) {
	autos, err := Build([]string{"alpha", "beta", "gamma", "delta"}, nil, 2)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(autos) != 2 {
		t.Fatalf("len(autos) = %d, want 2 (capped)", len(autos))
	}
}

func TestCandidatesFindsExactMatch(t *testing.T) {
	raw, err := BuildSet([]string{"cat", "cats", "dog", "hat"})
	if err != nil {
		t.Fatalf("BuildSet returned error: %v", err)
	}
	fst, err := LoadSet(raw)
	if err != nil {
		t.Fatalf("LoadSet returned error: %v", err)
	}

	autos, err := Build([]string{"cat"}, nil, 0)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	words, err := Candidates(fst, autos[0].Automaton, 0)
	if err != nil {
		t.Fatalf("Candidates returned error: %v", err)
	}

	found := make(map[string]bool)
	for _, w := range words {
		found[w] = true
	}
	if !found["cat"] {
		t.Errorf("expected %q to match its own prefix automaton, got %v", "cat", words)
	}
}
