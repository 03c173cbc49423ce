package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"

	"ibrox-analytics/matchdata"
)

// EditEntry is one row of the admin edit log.
type EditEntry struct {
	ID        string
	Action    string
	Row       int
	Label     string
	CreatedAt time.Time
}

// EditLog records every admin write to the match table in sqlite.
type EditLog struct {
	db *sql.DB
}

// openEditLog opens (creating if needed) the edit log database at path.
// ":memory:" gives a private in-memory log.
func openEditLog(ctx context.Context, path string) (*EditLog, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One connection keeps ":memory:" a single database and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `
    CREATE TABLE IF NOT EXISTS match_edits (
        seq INTEGER PRIMARY KEY AUTOINCREMENT,
        id TEXT NOT NULL UNIQUE,
        action TEXT NOT NULL,
        row_index INTEGER,
        label TEXT,
        created_at TEXT NOT NULL
    );`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create match_edits: %w", err)
	}
	return &EditLog{db: db}, nil
}

// RecordEdit implements matchdata.EditRecorder.
func (l *EditLog) RecordEdit(ctx context.Context, e matchdata.Edit) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO match_edits (id, action, row_index, label, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), e.Action, e.Row, e.Label, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record %s edit: %w", e.Action, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *EditLog) Recent(ctx context.Context, limit int) ([]EditEntry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, action, row_index, label, created_at FROM match_edits ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EditEntry
	for rows.Next() {
		var (
			e       EditEntry
			label   sql.NullString
			created string
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.Row, &label, &created); err != nil {
			return nil, err
		}
		e.Label = label.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database.
func (l *EditLog) Close() error {
	return l.db.Close()
}
