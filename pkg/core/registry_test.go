package core

import (
	"context"
	"errors"
	"testing"
)

type mockSource struct {
	name     string
	closed   bool
	closeErr error
}

func (m *mockSource) Name() string { return m.name }
func (m *mockSource) Query(ctx context.Context, q string, sc Context) Report {
	return EmptyReport()
}
func (m *mockSource) Close() error {
	m.closed = true
	return m.closeErr
}

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"routes", "actions", "forms", "api"} {
		if err := registry.Register(&mockSource{name: name}); err != nil {
			t.Fatalf("Failed to register %s: %v", name, err)
		}
	}

	got := registry.ListSources()
	want := []string{"routes", "actions", "forms", "api"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ListSources() = %v, want %v", got, want)
		}
	}

	filtered := registry.Sources("api", "routes")
	if len(filtered) != 2 || filtered[0].Name() != "routes" || filtered[1].Name() != "api" {
		t.Fatalf("Sources(api, routes) should keep registration order, got %v", filtered)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&mockSource{name: "routes"}); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	if err := registry.Register(&mockSource{name: "routes"}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestRegistryRemoveClosesSource(t *testing.T) {
	registry := NewRegistry()
	src := &mockSource{name: "api"}
	_ = registry.Register(src)
	_ = registry.Register(&mockSource{name: "routes"})

	if err := registry.RemoveSource("api"); err != nil {
		t.Fatalf("RemoveSource: %v", err)
	}
	if !src.closed {
		t.Error("removed source should be closed")
	}
	if _, err := registry.GetSource("api"); err == nil {
		t.Error("removed source should not be found")
	}
	if names := registry.ListSources(); len(names) != 1 || names[0] != "routes" {
		t.Errorf("unexpected sources after removal: %v", names)
	}
}

func TestRegistryCloseJoinsErrors(t *testing.T) {
	registry := NewRegistry()
	boom := errors.New("boom")
	_ = registry.Register(&mockSource{name: "a", closeErr: boom})
	_ = registry.Register(&mockSource{name: "b"})

	err := registry.Close()
	if !errors.Is(err, boom) {
		t.Fatalf("Close() = %v, want wrapped boom", err)
	}
	if len(registry.ListSources()) != 0 {
		t.Error("registry should be empty after Close")
	}
}
