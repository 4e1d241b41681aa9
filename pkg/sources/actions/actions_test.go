package actions

import (
	"context"
	"testing"
	"time"

	"github.com/rubiojr/cmdk/pkg/core"
	"github.com/rubiojr/cmdk/pkg/store"
)

func newReadySource(t *testing.T, items []core.Item) *Source {
	t.Helper()
	s := New(items)
	select {
	case <-s.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("index never became ready")
	}
	return s
}

func TestSuperuserActionsAreHidden(t *testing.T) {
	st := store.New()
	s := newReadySource(t, DefaultActions(st))

	report := s.Query(context.Background(), "translation", core.Context{})
	if report.Loading {
		t.Fatal("ready source should not be loading")
	}
	for _, r := range report.Results {
		if r.Item.RequiresSuperuser {
			t.Fatalf("superuser action leaked: %q", r.Item.Title)
		}
	}

	report = s.Query(context.Background(), "translation", core.Context{Superuser: true})
	found := false
	for _, r := range report.Results {
		if r.Item.Title == "Toggle Translation Markers" {
			found = true
		}
	}
	if !found {
		t.Fatalf("superuser should see the translation toggle, got %#v", report.Results)
	}
}

func TestActionsAreTaggedAsCommands(t *testing.T) {
	s := newReadySource(t, DefaultActions(store.New()))
	report := s.Query(context.Background(), "dark mode", core.Context{})
	if len(report.Results) == 0 {
		t.Fatal("expected dark mode action")
	}
	r := report.Results[0]
	if r.Item.SourceType != core.SourceCommand || r.Item.ResultType != core.ResultCommand {
		t.Errorf("unexpected types %s/%s", r.Item.SourceType, r.Item.ResultType)
	}
	if !r.Item.HasAction() {
		t.Error("action items must carry a callback")
	}
}

func TestToggleActionWritesStore(t *testing.T) {
	st := store.New()
	s := newReadySource(t, DefaultActions(st))

	var toggled core.Item
	for _, it := range s.Items() {
		if it.Title == "Toggle dark mode" {
			toggled = it
		}
	}
	if err := toggled.Action(context.Background()); err != nil {
		t.Fatalf("action: %v", err)
	}
	if !st.Bool(KeyDarkMode) {
		t.Error("dark mode should be on after toggling")
	}
}

func TestOpenModalAction(t *testing.T) {
	st := store.New()
	var opened any
	st.Subscribe(KeyModal, func(v any) { opened = v })

	for _, it := range DefaultActions(st) {
		if it.Title == "Open Help Search" {
			_ = it.Action(context.Background())
		}
	}
	if opened != "help-search" {
		t.Errorf("expected help-search modal, got %v", opened)
	}
}

func TestQueryBeforeReadyIsLoading(t *testing.T) {
	s := &Source{ready: make(chan struct{})}
	if !s.Query(context.Background(), "dark", core.Context{}).Loading {
		t.Fatal("source without index must report loading")
	}
}
