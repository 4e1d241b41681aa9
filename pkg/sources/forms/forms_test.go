package forms

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rubiojr/cmdk/pkg/core"
	"github.com/rubiojr/cmdk/pkg/store"
)

func testDefinitions() []FormDefinition {
	return []FormDefinition{
		{
			Route: "/settings/:orgId/",
			FormGroups: []FormGroup{{Title: "General", Fields: []Field{
				{Name: "require2FA", Label: "Require Two-Factor Authentication"},
				{Name: "rendered", Label: func() string { return "Rendered Label" }, Help: "Computed label"},
			}}},
		},
		{
			Route: "/settings/:orgId/projects/:projectId/alerts/",
			Fields: map[string]Field{
				"digests min": {Label: "Minimum delivery interval"},
			},
		},
	}
}

func TestFlatten(t *testing.T) {
	items := Flatten(testDefinitions())
	if len(items) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(items))
	}
	if items[0].Group != "General" || items[0].Route != "/settings/:orgId/" {
		t.Errorf("unexpected first field %#v", items[0])
	}
	if items[1].Title != "" || items[1].Description != "Computed label" {
		t.Errorf("non-string labels index as empty text, got %#v", items[1])
	}
	if items[2].Name != "digests min" {
		t.Errorf("map fields take their key as name, got %#v", items[2])
	}
}

func TestConcurrentLoadPublishesOnce(t *testing.T) {
	st := store.New()
	var flattens atomic.Int32
	fm := NewFieldMap(st, func() []FormDefinition {
		flattens.Add(1)
		return testDefinitions()
	})

	var publishes atomic.Int32
	fm.Subscribe(func([]FieldItem) { publishes.Add(1) })

	var wg sync.WaitGroup
	var loaded atomic.Int32
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if fm.Load() {
				loaded.Add(1)
			}
		}()
	}
	wg.Wait()

	if flattens.Load() != 1 || publishes.Load() != 1 || loaded.Load() != 1 {
		t.Fatalf("flattens=%d publishes=%d loaded=%d, want 1 each",
			flattens.Load(), publishes.Load(), loaded.Load())
	}
	if len(fm.Fields()) != 3 {
		t.Errorf("expected published fields, got %d", len(fm.Fields()))
	}

	fm.Reset()
	if fm.Fields() != nil {
		t.Error("Reset should clear the published fields")
	}
	if !fm.Load() || flattens.Load() != 2 {
		t.Error("Load after Reset should flatten again")
	}
}

func TestSourcesShareOneFieldMap(t *testing.T) {
	fm := NewFieldMap(store.New(), testDefinitions)
	first := New(fm)
	defer first.Close()
	second := New(fm)
	defer second.Close()

	sc := core.Context{Params: map[string]string{"orgId": "acme"}}
	for _, s := range []*Source{first, second} {
		report := s.Query(context.Background(), "two-factor", sc)
		if report.Loading || len(report.Results) == 0 {
			t.Fatalf("expected field match, got %#v", report)
		}
		if got := report.Results[0].Item.To; got != "/settings/acme/#require2FA" {
			t.Errorf("To = %q", got)
		}
	}
}

func TestFieldAnchorIsEscaped(t *testing.T) {
	fm := NewFieldMap(store.New(), testDefinitions)
	s := New(fm)
	defer s.Close()

	sc := core.Context{Params: map[string]string{"orgId": "acme", "projectId": "web"}}
	report := s.Query(context.Background(), "delivery interval", sc)
	if len(report.Results) == 0 {
		t.Fatal("expected alerts field")
	}
	want := "/settings/acme/projects/web/alerts/#digests+min"
	if got := report.Results[0].Item.To; got != want {
		t.Errorf("To = %q, want %q", got, want)
	}
	if report.Results[0].Item.SourceType != core.SourceField {
		t.Errorf("unexpected source type %s", report.Results[0].Item.SourceType)
	}
}

func TestSourceFollowsRepublish(t *testing.T) {
	st := store.New()
	fm := NewFieldMap(st, testDefinitions)
	s := New(fm)
	defer s.Close()

	st.Set(KeyFieldMap, []FieldItem{{Route: "/x/", Name: "quota", Title: "Spike Protection"}})
	report := s.Query(context.Background(), "spike", core.Context{})
	if len(report.Results) != 1 || report.Results[0].Item.To != "/x/#quota" {
		t.Fatalf("source should index republished fields, got %#v", report.Results)
	}
}

func TestRegisteredDefinitions(t *testing.T) {
	if len(Registered()) == 0 {
		t.Fatal("built-in definitions should be registered")
	}
}
