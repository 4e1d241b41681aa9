package fuzzy

import "testing"

func TestMaskToIndices(t *testing.T) {
	mask := []bool{true, true, false, true, false, true, true, true}
	got := maskToIndices(mask, 2)
	want := [][2]int{{0, 1}, {5, 7}}
	if len(got) != len(want) {
		t.Fatalf("maskToIndices = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("maskToIndices = %v, want %v", got, want)
		}
	}

	if got := maskToIndices(mask, 1); len(got) != 3 {
		t.Errorf("with min length 1 expected 3 spans, got %v", got)
	}
}

func TestMergeIndices(t *testing.T) {
	got := mergeIndices([][2]int{{5, 7}, {0, 2}, {3, 4}, {10, 12}})
	want := [][2]int{{0, 7}, {10, 12}}
	if len(got) != len(want) {
		t.Fatalf("mergeIndices = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mergeIndices = %v, want %v", got, want)
		}
	}
}

func TestComputeScore(t *testing.T) {
	o := bitapOptions{distance: 75}
	if s := computeScore(4, 0, 0, 0, o); s != 0 {
		t.Errorf("exact at location should score 0, got %v", s)
	}
	if s := computeScore(4, 1, 0, 0, o); s != 0.25 {
		t.Errorf("one error in four should score 0.25, got %v", s)
	}
	if s := computeScore(4, 0, 15, 0, o); s != 0.2 {
		t.Errorf("15 away with distance 75 should score 0.2, got %v", s)
	}

	o.distance = 0
	if s := computeScore(4, 0, 1, 0, o); s != 1 {
		t.Errorf("zero distance off location should score 1, got %v", s)
	}

	o.ignoreLocation = true
	if s := computeScore(4, 2, 50, 0, o); s != 0.5 {
		t.Errorf("ignoring location only accuracy counts, got %v", s)
	}
}

func TestSearcherExactWholeValue(t *testing.T) {
	s := newSearcher([]rune("billing"), bitapOptions{distance: 75, threshold: 0.4, minMatchCharLength: 2})
	res := s.searchIn([]rune("billing"))
	if !res.isMatch || res.score != 0 {
		t.Fatalf("whole value match should score 0, got %#v", res)
	}
	if len(res.indices) != 1 || res.indices[0] != [2]int{0, 6} {
		t.Errorf("unexpected indices %v", res.indices)
	}
}

func TestShortRunsAreNotMatches(t *testing.T) {
	// A single shared character never forms a run of two.
	s := newSearcher([]rune("xq"), bitapOptions{distance: 75, threshold: 0.4, minMatchCharLength: 2})
	if res := s.searchIn([]rune("abcx")); res.isMatch {
		t.Fatalf("expected no match, got %#v", res)
	}
}
