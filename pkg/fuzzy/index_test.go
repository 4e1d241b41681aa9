package fuzzy

import (
	"errors"
	"strings"
	"testing"
)

type entry struct {
	title       string
	description string
}

func entryField(e entry, key string) string {
	switch key {
	case "title":
		return e.title
	case "description":
		return e.description
	}
	return ""
}

func newTestIndex(t *testing.T, entries []entry) *Index[entry] {
	t.Helper()
	idx, err := New(entries, DefaultOptions([]string{"title", "description"}, entryField))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return idx
}

func TestNewRequiresKeys(t *testing.T) {
	_, err := New([]entry{{title: "Members"}}, Options[entry]{Get: entryField})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}

	_, err = New([]entry{{title: "Members"}}, Options[entry]{Keys: []string{"title"}})
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError for missing getter, got %v", err)
	}
}

func TestEmptyQueryMatchesNothing(t *testing.T) {
	idx := newTestIndex(t, []entry{{title: "Members"}})
	results := idx.Search("")
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", results)
	}
}

func TestPrefixMatchReportsSpan(t *testing.T) {
	idx := newTestIndex(t, []entry{
		{title: "General Settings"},
		{title: "Members"},
		{title: "Billing"},
	})

	results := idx.Search("memb")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d: %#v", len(results), results)
	}
	r := results[0]
	if r.Item.title != "Members" || r.RefIndex != 1 {
		t.Fatalf("unexpected result %#v", r)
	}
	if len(r.Matches) != 1 || r.Matches[0].Key != "title" {
		t.Fatalf("expected a single title match, got %#v", r.Matches)
	}
	if got := r.Matches[0].Indices; len(got) != 1 || got[0] != [2]int{0, 3} {
		t.Fatalf("expected indices [[0 3]], got %v", got)
	}
	if r.Score <= 0 || r.Score >= 0.1 {
		t.Errorf("prefix match score out of range: %v", r.Score)
	}
}

func TestExactMatchRanksFirst(t *testing.T) {
	idx := newTestIndex(t, []entry{
		{title: "Team Members"},
		{title: "Members"},
	})

	results := idx.Search("members")
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Item.title != "Members" {
		t.Fatalf("exact match should rank first, got %q", results[0].Item.title)
	}
	if results[0].Score >= results[1].Score {
		t.Errorf("scores not ascending: %v >= %v", results[0].Score, results[1].Score)
	}
}

func TestTypoTolerance(t *testing.T) {
	idx := newTestIndex(t, []entry{{title: "Members"}})

	exact := idx.Search("members")
	typo := idx.Search("membrs")
	if len(typo) != 1 {
		t.Fatalf("expected typo to match, got %d results", len(typo))
	}
	if typo[0].Score <= exact[0].Score {
		t.Errorf("typo should score worse than exact: %v <= %v", typo[0].Score, exact[0].Score)
	}
}

func TestUnrelatedQueryDoesNotMatch(t *testing.T) {
	idx := newTestIndex(t, []entry{{title: "Billing"}, {title: "Members"}})
	if results := idx.Search("zzzzqx"); len(results) != 0 {
		t.Fatalf("expected no results, got %#v", results)
	}
}

func TestTiesKeepInsertionOrder(t *testing.T) {
	idx := newTestIndex(t, []entry{
		{title: "Alerts"},
		{title: "Alerts"},
		{title: "Alerts"},
	})

	results := idx.Search("alerts")
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.RefIndex != i {
			t.Fatalf("result %d has RefIndex %d, want insertion order", i, r.RefIndex)
		}
	}
}

func TestDescriptionMatch(t *testing.T) {
	idx := newTestIndex(t, []entry{
		{title: "Project Settings", description: "Configure ownership rules"},
	})

	results := idx.Search("ownership")
	if len(results) != 1 {
		t.Fatalf("expected description match, got %d results", len(results))
	}
	if results[0].Matches[0].Key != "description" {
		t.Errorf("expected description key, got %q", results[0].Matches[0].Key)
	}
}

func TestCaseInsensitiveByDefault(t *testing.T) {
	idx := newTestIndex(t, []entry{{title: "BILLING"}})
	if results := idx.Search("billing"); len(results) != 1 {
		t.Fatalf("expected case-insensitive match, got %d", len(results))
	}
}

func TestIgnoreDiacritics(t *testing.T) {
	opts := DefaultOptions([]string{"title"}, entryField)
	opts.IgnoreDiacritics = true
	idx, err := New([]entry{{title: "Café settings"}}, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results := idx.Search("cafe")
	if len(results) != 1 {
		t.Fatalf("expected match ignoring diacritics, got %d", len(results))
	}
	if got := results[0].Matches[0].Indices; len(got) != 1 || got[0] != [2]int{0, 3} {
		t.Errorf("offsets should refer to the original runes, got %v", got)
	}
	if results[0].Matches[0].Value != "Café settings" {
		t.Errorf("match value should be the original string, got %q", results[0].Matches[0].Value)
	}
}

func TestLongPatternIsChunked(t *testing.T) {
	long := strings.Repeat("abcdefghij", 4) // 40 runes, more than one bitap word
	idx := newTestIndex(t, []entry{{title: long + " tail"}, {title: "unrelated"}})

	results := idx.Search(long)
	if len(results) != 1 {
		t.Fatalf("expected chunked pattern to match, got %d", len(results))
	}
	if results[0].RefIndex != 0 {
		t.Errorf("unexpected match %#v", results[0])
	}
}

func TestBlankFieldsAreSkipped(t *testing.T) {
	idx := newTestIndex(t, []entry{{title: "Members", description: "   "}})
	results := idx.Search("members")
	if len(results) != 1 || len(results[0].Matches) != 1 {
		t.Fatalf("blank description must not produce a match, got %#v", results)
	}
}

func TestLen(t *testing.T) {
	idx := newTestIndex(t, []entry{{title: "a"}, {title: "b"}})
	if idx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", idx.Len())
	}
}
