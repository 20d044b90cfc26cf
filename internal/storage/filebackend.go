package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dohr-michael/taskflow/internal/scheduler"
	"github.com/dohr-michael/taskflow/internal/storage/dirstore"
)

const runEntriesFile = "entries.jsonl"

// FileBackend keeps the snapshot in tasks.json and every run in its own
// directory under runs/: a meta.json header and one JSONL line per entry.
type FileBackend struct {
	mu   sync.RWMutex
	dir  string
	runs *dirstore.DirStore
}

// runMeta is the meta.json header of a saved run.
type runMeta struct {
	ID           string                 `json:"id"`
	CreatedAt    time.Time              `json:"created_at"`
	DurationKind scheduler.DurationKind `json:"duration_kind"`
	Calendar     string                 `json:"calendar,omitempty"`
}

// NewFileBackend creates a FileBackend rooted at dir.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{
		dir:  dir,
		runs: dirstore.NewDirStore(filepath.Join(dir, "runs"), "run"),
	}
}

func (fb *FileBackend) snapshotPath() string {
	return filepath.Join(fb.dir, "tasks.json")
}

// LoadSnapshot reads tasks.json. Returns nil, nil when it does not exist.
func (fb *FileBackend) LoadSnapshot() (*Snapshot, error) {
	fb.mu.RLock()
	defer fb.mu.RUnlock()

	data, err := os.ReadFile(fb.snapshotPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read tasks.json: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal tasks.json: %w", err)
	}
	return &snap, nil
}

// SaveSnapshot atomically rewrites tasks.json.
func (fb *FileBackend) SaveSnapshot(snap *Snapshot) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	return WriteJSON(fb.snapshotPath(), snap)
}

// SaveRun writes runs/<id>/meta.json and runs/<id>/entries.jsonl.
func (fb *FileBackend) SaveRun(run *Run) error {
	fb.runs.Lock()
	defer fb.runs.Unlock()

	if run.ID == "" {
		run.ID = GenerateRunID()
	}
	if err := fb.runs.EnsureDir(run.ID); err != nil {
		return err
	}
	if err := dirstore.WriteJSONL(fb.runs, run.ID, runEntriesFile, run.Entries); err != nil {
		return err
	}
	return fb.runs.WriteMeta(run.ID, runMeta{
		ID:           run.ID,
		CreatedAt:    run.CreatedAt,
		DurationKind: run.DurationKind,
		Calendar:     run.Calendar,
	})
}

// GetRun reads a run by ID.
func (fb *FileBackend) GetRun(id string) (*Run, error) {
	fb.runs.RLock()
	defer fb.runs.RUnlock()

	return fb.loadRun(id)
}

func (fb *FileBackend) loadRun(id string) (*Run, error) {
	var meta runMeta
	if err := fb.runs.ReadMeta(id, &meta); err != nil {
		if errors.Is(err, dirstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, err
	}
	entries, err := dirstore.LoadJSONL[RunEntry](fb.runs, id, runEntriesFile)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []RunEntry{}
	}
	return &Run{
		ID:           meta.ID,
		CreatedAt:    meta.CreatedAt,
		DurationKind: meta.DurationKind,
		Calendar:     meta.Calendar,
		Entries:      entries,
	}, nil
}

// ListRuns returns all runs, newest first.
func (fb *FileBackend) ListRuns() ([]*Run, error) {
	fb.runs.RLock()
	defer fb.runs.RUnlock()

	ids, err := fb.runs.ListDirs()
	if err != nil {
		return nil, err
	}

	var runs []*Run
	for _, id := range ids {
		run, err := fb.loadRun(id)
		if err != nil {
			slog.Warn("skipping unreadable run", "run_id", id, "error", err)
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// Close is a no-op.
func (fb *FileBackend) Close() error { return nil }
