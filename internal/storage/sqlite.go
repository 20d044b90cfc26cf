package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dohr-michael/taskflow/internal/scheduler"
	"github.com/dohr-michael/taskflow/internal/tasks"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
	id       INTEGER PRIMARY KEY,
	position INTEGER NOT NULL,
	data     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	created_at    TEXT NOT NULL,
	duration_kind TEXT NOT NULL,
	calendar      TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS run_entries (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	task_id     INTEGER NOT NULL,
	title       TEXT NOT NULL,
	resource_id TEXT NOT NULL,
	start_h     REAL NOT NULL,
	end_h       REAL NOT NULL,
	starts_at   TEXT,
	ends_at     TEXT,
	PRIMARY KEY (run_id, position)
);
`

// SQLiteBackend keeps snapshots and runs in a single SQLite database.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps :memory: databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// LoadSnapshot reads the saved tasks. Returns nil, nil before the first save.
func (b *SQLiteBackend) LoadSnapshot() (*Snapshot, error) {
	var next, savedAt string
	err := b.db.QueryRow(`SELECT value FROM meta WHERE key = 'next_task_id'`).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}
	_ = b.db.QueryRow(`SELECT value FROM meta WHERE key = 'saved_at'`).Scan(&savedAt)

	snap := &Snapshot{Tasks: []*tasks.Task{}}
	if snap.NextTaskID, err = strconv.Atoi(next); err != nil {
		return nil, fmt.Errorf("parse next_task_id: %w", err)
	}
	snap.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)

	rows, err := b.db.Query(`SELECT data FROM tasks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		var t tasks.Task
		if err := json.Unmarshal([]byte(data), &t); err != nil {
			return nil, fmt.Errorf("unmarshal task: %w", err)
		}
		snap.Tasks = append(snap.Tasks, &t)
	}
	return snap, rows.Err()
}

// SaveSnapshot replaces the saved tasks in one transaction.
func (b *SQLiteBackend) SaveSnapshot(snap *Snapshot) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	for i, t := range snap.Tasks {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal task %d: %w", t.ID, err)
		}
		if _, err := tx.Exec(`INSERT INTO tasks (id, position, data) VALUES (?, ?, ?)`, t.ID, i, string(data)); err != nil {
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
	}

	meta := map[string]string{
		"next_task_id": strconv.Itoa(snap.NextTaskID),
		"saved_at":     snap.SavedAt.UTC().Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return fmt.Errorf("write meta %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// SaveRun inserts a run and its entries.
func (b *SQLiteBackend) SaveRun(run *Run) error {
	if run.ID == "" {
		run.ID = GenerateRunID()
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs (id, created_at, duration_kind, calendar) VALUES (?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339Nano), string(run.DurationKind), run.Calendar); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for i, e := range run.Entries {
		if _, err := tx.Exec(`INSERT INTO run_entries
			(run_id, position, task_id, title, resource_id, start_h, end_h, starts_at, ends_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, e.TaskID, e.Title, e.ResourceID, e.Start, e.End,
			formatTime(e.StartsAt), formatTime(e.EndsAt)); err != nil {
			return fmt.Errorf("insert run entry %d: %w", e.TaskID, err)
		}
	}
	return tx.Commit()
}

// GetRun reads a run and its entries.
func (b *SQLiteBackend) GetRun(id string) (*Run, error) {
	var run Run
	var created, kind string
	err := b.db.QueryRow(`SELECT id, created_at, duration_kind, calendar FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &created, &kind, &run.Calendar)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	run.DurationKind = scheduler.DurationKind(kind)

	if run.Entries, err = b.loadEntries(id); err != nil {
		return nil, err
	}
	return &run, nil
}

func (b *SQLiteBackend) loadEntries(runID string) ([]RunEntry, error) {
	rows, err := b.db.Query(`SELECT task_id, title, resource_id, start_h, end_h, starts_at, ends_at
		FROM run_entries WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run entries: %w", err)
	}
	defer rows.Close()

	entries := []RunEntry{}
	for rows.Next() {
		var e RunEntry
		var startsAt, endsAt sql.NullString
		if err := rows.Scan(&e.TaskID, &e.Title, &e.ResourceID, &e.Start, &e.End, &startsAt, &endsAt); err != nil {
			return nil, fmt.Errorf("scan run entry: %w", err)
		}
		e.StartsAt = parseTime(startsAt)
		e.EndsAt = parseTime(endsAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListRuns returns all runs, newest first.
func (b *SQLiteBackend) ListRuns() ([]*Run, error) {
	rows, err := b.db.Query(`SELECT id FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var runs []*Run
	for _, id := range ids {
		run, err := b.GetRun(id)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}
