package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rubiojr/cmdk/pkg/core"
)

const testNavigation = `
[[group]]
name = "Widgets"

[[group.item]]
path = "/widgets/:orgId/quarterly/"
title = "Quarterly Widgets"
description = "Widget reports per quarter"

[[group.item]]
path = "https://widgets.example.com/"
title = "Widget Store"
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := `
storage_dir = "` + filepath.Join(dir, "data") + `"

[organization]
slug = "acme"

[search]
navigation_file = "navigation.toml"
`
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "navigation.toml"), []byte(testNavigation), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSearchPaletteNavigates(t *testing.T) {
	path := writeTestConfig(t)

	var out bytes.Buffer
	err := searchPalette(context.Background(), &out, path, "quarterly widgets", searchOptions{
		sources: []string{"routes"},
		selectI: 0,
	})
	if err != nil {
		t.Fatalf("searchPalette: %v", err)
	}
	if !strings.Contains(out.String(), "score") {
		t.Errorf("results missing from output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "navigate /widgets/acme/quarterly/") {
		t.Errorf("selection should navigate to the resolved path:\n%s", out.String())
	}
}

func TestSearchPaletteOrgOverride(t *testing.T) {
	path := writeTestConfig(t)

	var out bytes.Buffer
	err := searchPalette(context.Background(), &out, path, "quarterly widgets", searchOptions{
		sources: []string{"routes"},
		org:     "globex",
		selectI: 0,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "navigate /widgets/globex/quarterly/") {
		t.Errorf("org flag should override the configured org:\n%s", out.String())
	}
}

func TestSearchPaletteOpensExternalLinks(t *testing.T) {
	path := writeTestConfig(t)

	var out bytes.Buffer
	err := searchPalette(context.Background(), &out, path, "widget store", searchOptions{
		sources: []string{"routes"},
		selectI: 0,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "open https://widgets.example.com/") {
		t.Errorf("external link should be opened:\n%s", out.String())
	}
}

func TestSearchPaletteBadIndex(t *testing.T) {
	path := writeTestConfig(t)

	var out bytes.Buffer
	err := searchPalette(context.Background(), &out, path, "zzzzqqq", searchOptions{selectI: 3})
	if err == nil {
		t.Fatal("selecting past the visible results should fail")
	}
	if !strings.Contains(out.String(), "No results found") {
		t.Errorf("expected the empty message:\n%s", out.String())
	}
}

func TestWithOverrides(t *testing.T) {
	sc := core.Context{
		Params:       map[string]string{"orgId": "acme", "teamId": "core"},
		Organization: &core.Organization{Slug: "acme", Access: []string{"org:read"}},
	}

	got := withOverrides(sc, "globex", "api")
	if got.Params["orgId"] != "globex" || got.Params["projectId"] != "api" || got.Params["teamId"] != "core" {
		t.Errorf("params = %v", got.Params)
	}
	if len(got.Organization.Access) != 1 {
		t.Error("access scopes should be kept when overriding the slug")
	}
	if sc.Params["orgId"] != "acme" || sc.Organization.Slug != "acme" {
		t.Error("the original context must not be modified")
	}
}

func TestInitConfigRefusesOverwrite(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := initConfig(path, false); err != nil {
		t.Fatalf("initConfig: %v", err)
	}
	if err := initConfig(path, false); err == nil {
		t.Error("second init without force should fail")
	}
	if err := initConfig(path, true); err != nil {
		t.Errorf("init with force: %v", err)
	}
}

func TestHighlightIgnoresBadRanges(t *testing.T) {
	if got := highlight("Members", nil); got != "Members" {
		t.Errorf("got %q", got)
	}
	if got := highlight("Members", [][2]int{{3, 20}}); got != "Members" {
		t.Errorf("out of range spans should be skipped, got %q", got)
	}
}
