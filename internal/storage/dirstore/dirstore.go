// Package dirstore lays entities out one directory each: a meta.json header
// plus JSONL companion files.
package dirstore

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned by ReadMeta when the entity has no meta.json.
var ErrNotFound = errors.New("not found")

// DirStore provides common primitives for directory-based file stores.
type DirStore struct {
	mu         sync.RWMutex
	baseDir    string
	entityName string // for error messages: "run"
}

// NewDirStore creates a DirStore rooted at baseDir.
func NewDirStore(baseDir, entityName string) *DirStore {
	return &DirStore{baseDir: baseDir, entityName: entityName}
}

func (ds *DirStore) Lock()    { ds.mu.Lock() }
func (ds *DirStore) Unlock()  { ds.mu.Unlock() }
func (ds *DirStore) RLock()   { ds.mu.RLock() }
func (ds *DirStore) RUnlock() { ds.mu.RUnlock() }

// Dir returns the directory of an entity.
func (ds *DirStore) Dir(id string) string {
	return filepath.Join(ds.baseDir, id)
}

// FilePath returns the path to a named file within an entity's directory.
func (ds *DirStore) FilePath(id, name string) string {
	return filepath.Join(ds.baseDir, id, name)
}

// EnsureDir creates the entity directory (and parents) if it doesn't exist.
func (ds *DirStore) EnsureDir(id string) error {
	if err := os.MkdirAll(ds.Dir(id), 0o755); err != nil {
		return fmt.Errorf("create %s dir: %w", ds.entityName, err)
	}
	return nil
}

// ListDirs returns the names of all entity directories.
func (ds *DirStore) ListDirs() ([]string, error) {
	entries, err := os.ReadDir(ds.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %ss dir: %w", ds.entityName, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// WriteMeta atomically writes meta.json.
func (ds *DirStore) WriteMeta(id string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s meta: %w", ds.entityName, err)
	}
	return ds.writeAtomic(id, "meta.json", data)
}

// ReadMeta unmarshals meta.json into out. A missing entity wraps ErrNotFound.
func (ds *DirStore) ReadMeta(id string, out any) error {
	data, err := os.ReadFile(ds.FilePath(id, "meta.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s %s: %w", ds.entityName, id, ErrNotFound)
		}
		return fmt.Errorf("read %s meta: %w", ds.entityName, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal %s meta: %w", ds.entityName, err)
	}
	return nil
}

// WriteJSONL atomically replaces filename with one JSON line per item.
func WriteJSONL[T any](ds *DirStore, id, filename string, items []T) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("marshal %s: %w", filename, err)
		}
	}
	return ds.writeAtomic(id, filename, buf.Bytes())
}

// LoadJSONL reads all JSON lines from a file, deserializing each into type T.
// Corrupted lines are skipped; a missing file yields nothing.
func LoadJSONL[T any](ds *DirStore, id, filename string) ([]T, error) {
	f, err := os.Open(ds.FilePath(id, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()

	var items []T
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var item T
		if err := json.Unmarshal(line, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", filename, err)
	}
	return items, nil
}

func (ds *DirStore) writeAtomic(id, filename string, content []byte) error {
	path := ds.FilePath(id, filename)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write %s tmp: %w", filename, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", filename, err)
	}
	return nil
}
