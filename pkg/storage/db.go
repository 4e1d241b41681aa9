package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ErrorReport is a persisted error report.
type ErrorReport struct {
	ID        string            `json:"id"`
	Message   string            `json:"message"`
	Context   map[string]string `json:"context"`
	CreatedAt time.Time         `json:"created_at"`
}

// DB persists error reports and palette settings in a single sqlite file.
type DB struct {
	db *sql.DB
}

// Open opens (and creates if needed) the database at dbPath.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA temp_store = memory",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// RecordReport stores an error report.
func (d *DB) RecordReport(r ErrorReport) error {
	ctx := r.Context
	if ctx == nil {
		ctx = map[string]string{}
	}
	data, err := json.Marshal(ctx)
	if err != nil {
		return fmt.Errorf("marshaling report context: %w", err)
	}

	_, err = d.db.Exec(
		`INSERT INTO error_reports (id, message, context, created_at) VALUES (?, ?, ?, ?)`,
		r.ID, r.Message, string(data), r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting error report: %w", err)
	}
	return nil
}

// RecentReports returns up to limit reports, newest first.
func (d *DB) RecentReports(limit int) ([]ErrorReport, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.db.Query(
		`SELECT id, message, context, created_at FROM error_reports ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying error reports: %w", err)
	}
	defer rows.Close()

	reports := []ErrorReport{}
	for rows.Next() {
		var (
			r         ErrorReport
			rawCtx    string
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.Message, &rawCtx, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning error report: %w", err)
		}
		if err := json.Unmarshal([]byte(rawCtx), &r.Context); err != nil {
			return nil, fmt.Errorf("unmarshaling report context: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing report time: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// SaveSetting upserts a setting.
func (d *DB) SaveSetting(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving setting %s: %w", key, err)
	}
	return nil
}

// LoadSettings returns every stored setting.
func (d *DB) LoadSettings() (map[string]string, error) {
	rows, err := d.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}
