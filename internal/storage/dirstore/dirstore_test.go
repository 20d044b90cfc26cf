package dirstore

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

type testMeta struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type testLine struct {
	N int `json:"n"`
}

func TestWriteReadMeta(t *testing.T) {
	ds := NewDirStore(t.TempDir(), "run")
	id := "run_abc123"

	if err := ds.EnsureDir(id); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}

	want := testMeta{Name: "hello", Value: 42}
	if err := ds.WriteMeta(id, want); err != nil {
		t.Fatalf("WriteMeta: %v", err)
	}

	var got testMeta
	if err := ds.ReadMeta(id, &got); err != nil {
		t.Fatalf("ReadMeta: %v", err)
	}
	if got != want {
		t.Errorf("ReadMeta = %+v, want %+v", got, want)
	}

	if _, err := os.Stat(ds.FilePath(id, "meta.json.tmp")); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestReadMetaNotFound(t *testing.T) {
	ds := NewDirStore(t.TempDir(), "run")

	var out testMeta
	err := ds.ReadMeta("run_missing", &out)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if want := "run run_missing: not found"; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestListDirs(t *testing.T) {
	base := t.TempDir()
	ds := NewDirStore(base, "run")

	for _, name := range []string{"run_a", "run_b", "run_c"} {
		if err := os.MkdirAll(filepath.Join(base, name), 0o755); err != nil {
			t.Fatalf("MkdirAll %s: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(base, "not_a_dir.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	dirs, err := ds.ListDirs()
	if err != nil {
		t.Fatalf("ListDirs: %v", err)
	}

	sort.Strings(dirs)
	want := []string{"run_a", "run_b", "run_c"}
	if len(dirs) != len(want) {
		t.Fatalf("ListDirs = %v, want %v", dirs, want)
	}
	for i, d := range dirs {
		if d != want[i] {
			t.Errorf("dirs[%d] = %q, want %q", i, d, want[i])
		}
	}
}

func TestListDirsMissingBase(t *testing.T) {
	ds := NewDirStore(filepath.Join(t.TempDir(), "nope"), "run")
	dirs, err := ds.ListDirs()
	if err != nil {
		t.Fatalf("ListDirs: %v", err)
	}
	if len(dirs) != 0 {
		t.Errorf("ListDirs = %v, want empty", dirs)
	}
}

func TestWriteLoadJSONL(t *testing.T) {
	ds := NewDirStore(t.TempDir(), "run")
	id := "run_1"
	if err := ds.EnsureDir(id); err != nil {
		t.Fatal(err)
	}

	if err := WriteJSONL(ds, id, "entries.jsonl", []testLine{{1}, {2}, {3}}); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	// A second write replaces the file.
	if err := WriteJSONL(ds, id, "entries.jsonl", []testLine{{4}, {5}}); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}

	got, err := LoadJSONL[testLine](ds, id, "entries.jsonl")
	if err != nil {
		t.Fatalf("LoadJSONL: %v", err)
	}
	if len(got) != 2 || got[0].N != 4 || got[1].N != 5 {
		t.Errorf("LoadJSONL = %+v", got)
	}
}

func TestLoadJSONLSkipsCorruptedLines(t *testing.T) {
	ds := NewDirStore(t.TempDir(), "run")
	id := "run_1"
	if err := ds.EnsureDir(id); err != nil {
		t.Fatal(err)
	}
	content := "{\"n\": 1}\nnot json\n\n{\"n\": 2}\n"
	if err := os.WriteFile(ds.FilePath(id, "entries.jsonl"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadJSONL[testLine](ds, id, "entries.jsonl")
	if err != nil {
		t.Fatalf("LoadJSONL: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("LoadJSONL = %+v, want 2 lines", got)
	}

	missing, err := LoadJSONL[testLine](ds, id, "other.jsonl")
	if err != nil || missing != nil {
		t.Errorf("missing file: got %v, %v", missing, err)
	}
}
