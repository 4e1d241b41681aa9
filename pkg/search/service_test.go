package search

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"testing"

	"github.com/rubiojr/cmdk/pkg/core"
)

type stubSource struct {
	name   string
	report core.Report
	panics bool
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Query(ctx context.Context, q string, sc core.Context) core.Report {
	if s.panics {
		panic("boom")
	}
	return s.report
}

func settled(titlesAndScores ...any) core.Report {
	results := []core.Result{}
	for i := 0; i+1 < len(titlesAndScores); i += 2 {
		results = append(results, core.Result{
			Item:  core.Item{Title: titlesAndScores[i].(string)},
			Score: titlesAndScores[i+1].(float64),
		})
	}
	return core.Report{Results: results}
}

func newService(t *testing.T, sources ...core.Source) *Service {
	t.Helper()
	registry := core.NewRegistry()
	for _, s := range sources {
		if err := registry.Register(s); err != nil {
			t.Fatal(err)
		}
	}
	return NewService(registry, nil)
}

func titles(results []core.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Item.Title
	}
	return out
}

func TestLoadingDominates(t *testing.T) {
	tests := []struct {
		name    string
		reports []core.Report
		loading bool
	}{
		{"all settled", []core.Report{settled("a", 0.1), settled()}, false},
		{"one loading", []core.Report{settled("a", 0.1), core.LoadingReport()}, true},
		{"nil results", []core.Report{settled("a", 0.1), {}}, true},
		{"loading with stale results", []core.Report{{Loading: true, Results: settled("b", 0.2).Results}}, true},
		{"no sources", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sources []core.Source
			for i, r := range tt.reports {
				sources = append(sources, &stubSource{name: fmt.Sprintf("s%d", i), report: r})
			}
			got := newService(t, sources...).Search(context.Background(), "q", core.Context{})
			if got.Loading != tt.loading {
				t.Fatalf("Loading = %v, want %v", got.Loading, tt.loading)
			}
			if tt.loading && (len(got.Results) != 0 || got.HasAnyResults) {
				t.Errorf("loading report must not expose results: %#v", got)
			}
		})
	}
}

func TestStableScoreOrder(t *testing.T) {
	svc := newService(t,
		&stubSource{name: "first", report: settled("f1", 0.3, "f2", 0.1)},
		&stubSource{name: "second", report: settled("s1", 0.1, "s2", 0.05)},
		&stubSource{name: "third", report: settled("t1", 0.3)},
	)

	got := svc.Search(context.Background(), "q", core.Context{})
	want := []string{"s2", "f2", "s1", "f1", "t1"}
	if fmt.Sprint(titles(got.Results)) != fmt.Sprint(want) {
		t.Fatalf("order = %v, want %v", titles(got.Results), want)
	}
	if !got.HasAnyResults {
		t.Error("HasAnyResults should be set")
	}
}

func TestSourceFilter(t *testing.T) {
	svc := newService(t,
		&stubSource{name: "routes", report: settled("r", 0.1)},
		&stubSource{name: "remote", report: core.LoadingReport()},
	)
	got := svc.Search(context.Background(), "q", core.Context{}, "routes")
	if got.Loading || len(got.Results) != 1 {
		t.Fatalf("filtered search should ignore other sources: %#v", got)
	}
}

func TestPanickingSourceIsEmpty(t *testing.T) {
	rep := &countingReporter{}
	registry := core.NewRegistry()
	_ = registry.Register(&stubSource{name: "bad", panics: true})
	_ = registry.Register(&stubSource{name: "good", report: settled("ok", 0.2)})

	got := NewService(registry, rep).Search(context.Background(), "q", core.Context{})
	if got.Loading || len(got.Results) != 1 {
		t.Fatalf("panic should degrade to an empty contribution: %#v", got)
	}
	if rep.n != 1 {
		t.Errorf("expected the panic to be reported once, got %d", rep.n)
	}
}

type countingReporter struct {
	mu sync.Mutex
	n  int
}

func (r *countingReporter) Report(err error, ctx map[string]string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	return ""
}

func TestCancelledSearchIsLoading(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := newService(t, &stubSource{name: "a", report: settled("a", 0.1)})
	if !svc.Search(ctx, "q", core.Context{}).Loading {
		t.Fatal("a cancelled search is superseded and must report loading")
	}
}

func TestParseSearchParams(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected SearchParams
	}{
		{
			name:     "basic query",
			query:    "q=test&page=2&limit=50",
			expected: SearchParams{Query: "test", Page: 2, Limit: 50},
		},
		{
			name:  "with source filters",
			query: "q=search&source=routes&source=forms&page=1&limit=20",
			expected: SearchParams{
				Query:         "search",
				SourceFilters: []string{"routes", "forms"},
				Page:          1,
				Limit:         20,
			},
		},
		{
			name:     "defaults when no params",
			query:    "",
			expected: SearchParams{Page: 1, Limit: 30},
		},
		{
			name:     "invalid limit defaults to 30",
			query:    "q=test&limit=invalid&page=-3",
			expected: SearchParams{Query: "test", Page: 1, Limit: 30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("Failed to parse query string: %v", err)
			}

			params := ParseSearchParams(values)
			if params.Query != tt.expected.Query {
				t.Errorf("Query: expected %q, got %q", tt.expected.Query, params.Query)
			}
			if params.Page != tt.expected.Page {
				t.Errorf("Page: expected %d, got %d", tt.expected.Page, params.Page)
			}
			if params.Limit != tt.expected.Limit {
				t.Errorf("Limit: expected %d, got %d", tt.expected.Limit, params.Limit)
			}
			if fmt.Sprint(params.SourceFilters) != fmt.Sprint(tt.expected.SourceFilters) {
				t.Errorf("SourceFilters: expected %v, got %v", tt.expected.SourceFilters, params.SourceFilters)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	report := Merge([]core.Report{settled("a", 0.1, "b", 0.2, "c", 0.3, "d", 0.4, "e", 0.5)})

	tests := []struct {
		page, limit int
		want        []string
		hasMore     bool
		totalPages  int
	}{
		{1, 2, []string{"a", "b"}, true, 3},
		{3, 2, []string{"e"}, false, 3},
		{4, 2, []string{}, false, 3},
		{1, 10, []string{"a", "b", "c", "d", "e"}, false, 1},
	}
	for _, tt := range tests {
		p := Paginate(report, tt.page, tt.limit)
		if fmt.Sprint(titles(p.Results)) != fmt.Sprint(tt.want) {
			t.Errorf("page %d/%d: got %v, want %v", tt.page, tt.limit, titles(p.Results), tt.want)
		}
		if p.HasMore != tt.hasMore || p.TotalPages != tt.totalPages || p.TotalCount != 5 {
			t.Errorf("page %d/%d: unexpected metadata %#v", tt.page, tt.limit, p)
		}
	}

	if p := Paginate(core.AggregatedReport{Loading: true}, 1, 10); !p.Loading || len(p.Results) != 0 {
		t.Errorf("loading report should paginate to an empty loading page: %#v", p)
	}
}

func ExampleParseSearchParams() {
	values, _ := url.ParseQuery("q=members&source=routes&source=forms&page=2&limit=10")
	params := ParseSearchParams(values)

	fmt.Println("Query:", params.Query)
	fmt.Println("Page:", params.Page)
	fmt.Println("Limit:", params.Limit)
	fmt.Println("Sources:", len(params.SourceFilters))

	// Output:
	// Query: members
	// Page: 2
	// Limit: 10
	// Sources: 2
}
