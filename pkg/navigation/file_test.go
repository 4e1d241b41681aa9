package navigation

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rubiojr/cmdk/pkg/core"
	"github.com/rubiojr/cmdk/pkg/sources/routes"
)

const runbooks = `
[[group]]
name = "Runbooks"

[[group.item]]
path = "/settings/:orgId/runbooks/"
title = "Runbooks"
description = "Team runbooks"

[[group.item]]
path = "/settings/:orgId/oncall/"
title = "On-call"
access = ["org:admin"]
features = ["oncall"]
`

func TestParse(t *testing.T) {
	def, err := Parse([]byte(runbooks))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	admin := routes.NewNavContext(core.Context{Organization: &core.Organization{
		Slug: "acme", Access: []string{"org:admin"}, Features: []string{"oncall"},
	}})
	if got := len(routes.Flatten([]routes.Definition{def}, admin)); got != 2 {
		t.Errorf("admin with feature should see 2 items, got %d", got)
	}

	member := routes.NewNavContext(core.Context{Organization: &core.Organization{
		Slug: "acme", Access: []string{"org:admin"},
	}})
	items := routes.Flatten([]routes.Definition{def}, member)
	if len(items) != 1 || items[0].Title != "Runbooks" || items[0].Extra != "Runbooks" {
		t.Errorf("member without feature should only see Runbooks, got %#v", items)
	}
}

func TestParseRejectsIncompleteItems(t *testing.T) {
	cases := map[string]string{
		"unnamed group": "[[group]]\n",
		"no title":      "[[group]]\nname = \"x\"\n[[group.item]]\npath = \"/a/\"\n",
		"bad toml":      "[[group",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDefinitionsWithoutFile(t *testing.T) {
	defs, err := Definitions(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if len(defs) != len(Builtin()) {
		t.Errorf("expected only built-ins, got %d definitions", len(defs))
	}
}

func TestBuiltinRespectsAccess(t *testing.T) {
	nc := routes.NewNavContext(core.Context{Organization: &core.Organization{Slug: "acme"}})
	for _, it := range routes.Flatten(Builtin(), nc) {
		if it.Title == "Audit Log" {
			t.Fatal("audit log requires org:write")
		}
	}

	nc = routes.NewNavContext(core.Context{})
	for _, it := range routes.Flatten(Builtin(), nc) {
		if it.Extra != "Account" && it.Extra != "API" {
			t.Fatalf("organization routes without an organization: %#v", it)
		}
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navigation.toml")
	if err := os.WriteFile(path, []byte(runbooks), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan []routes.Definition, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(defs []routes.Definition) { reloaded <- defs })
	}()

	// Give the watcher a moment to register the file.
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(path, []byte(runbooks+"\n[[group]]\nname = \"Empty\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case defs := <-reloaded:
		if len(defs) != len(Builtin())+1 {
			t.Errorf("unexpected definition count %d", len(defs))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never reloaded")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}
