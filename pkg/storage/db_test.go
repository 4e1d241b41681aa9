package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cmdk.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndListReports(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	reports := []ErrorReport{
		{ID: "a", Message: "first", Context: map[string]string{"url": "/organizations/:orgId/teams/"}, CreatedAt: base},
		{ID: "b", Message: "second", CreatedAt: base.Add(time.Minute)},
	}
	for _, r := range reports {
		if err := db.RecordReport(r); err != nil {
			t.Fatalf("RecordReport: %v", err)
		}
	}

	got, err := db.RecentReports(10)
	if err != nil {
		t.Fatalf("RecentReports: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(got))
	}
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("expected newest first, got %s, %s", got[0].ID, got[1].ID)
	}
	if got[1].Context["url"] != "/organizations/:orgId/teams/" {
		t.Errorf("context not round-tripped: %v", got[1].Context)
	}
	if !got[1].CreatedAt.Equal(base) {
		t.Errorf("created_at = %v, want %v", got[1].CreatedAt, base)
	}

	limited, err := db.RecentReports(1)
	if err != nil {
		t.Fatalf("RecentReports: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit not applied, got %d", len(limited))
	}
}

func TestSettingsUpsert(t *testing.T) {
	db := openTestDB(t)

	if err := db.SaveSetting("theme.dark", "true"); err != nil {
		t.Fatalf("SaveSetting: %v", err)
	}
	if err := db.SaveSetting("theme.dark", "false"); err != nil {
		t.Fatalf("SaveSetting: %v", err)
	}

	settings, err := db.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if len(settings) != 1 || settings["theme.dark"] != "false" {
		t.Errorf("unexpected settings %v", settings)
	}
}

func TestMigrationsAppliedOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmdk.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.SaveSetting("theme.dark", "true"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	// Reopening must not re-run migrations nor lose data.
	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	status, err := db.MigrationStatus()
	if err != nil {
		t.Fatalf("MigrationStatus: %v", err)
	}
	if len(status) < 2 {
		t.Fatalf("expected embedded migrations, got %d", len(status))
	}
	for i, m := range status {
		if m.AppliedAt == nil {
			t.Errorf("migration %d (%s) not applied", m.Version, m.Name)
		}
		if i > 0 && status[i-1].Version >= m.Version {
			t.Errorf("migrations out of order: %d before %d", status[i-1].Version, m.Version)
		}
	}

	settings, err := db.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if settings["theme.dark"] != "true" {
		t.Errorf("settings lost across reopen: %v", settings)
	}
}
