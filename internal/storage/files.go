// Package storage loads task definitions from files and persists task
// snapshots and schedule runs between invocations.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/dohr-michael/taskflow/internal/scheduler"
	"github.com/dohr-michael/taskflow/internal/tasks"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// TaskFile is the document shape of a task definition file. A bare list of
// tasks is accepted as well.
type TaskFile struct {
	NextTaskID int            `json:"next_task_id,omitempty" yaml:"next_task_id,omitempty"`
	Tasks      []tasks.Record `json:"tasks" yaml:"tasks"`
}

// AllocationFile is the document shape of an allocation file. A bare list
// of allocations is accepted as well.
type AllocationFile struct {
	Allocations []scheduler.Allocation `json:"allocations" yaml:"allocations"`
}

// decode unmarshals data as JSON or YAML depending on the file extension.
func decode(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Unmarshal(data, v)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// isList reports whether a document is a top-level sequence.
func isList(path string, data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return bytes.HasPrefix(trimmed, []byte("["))
	}
	var node yaml.Node
	if err := yaml.Unmarshal(trimmed, &node); err != nil || len(node.Content) == 0 {
		return false
	}
	return node.Content[0].Kind == yaml.SequenceNode
}

// LoadTaskFile reads task records from a JSON or YAML file.
func LoadTaskFile(path string) (*TaskFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}

	var tf TaskFile
	if isList(path, data) {
		err = decode(path, data, &tf.Tasks)
	} else {
		err = decode(path, data, &tf)
	}
	if err != nil {
		return nil, fmt.Errorf("decode tasks %s: %w", path, err)
	}
	return &tf, nil
}

// LoadTree reads a nested breakdown tree from a JSON or YAML file.
func LoadTree(path string) (tasks.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tasks.Node{}, fmt.Errorf("read tree: %w", err)
	}
	var root tasks.Node
	if err := decode(path, data, &root); err != nil {
		return tasks.Node{}, fmt.Errorf("decode tree %s: %w", path, err)
	}
	return root, nil
}

// LoadAllocations reads task-to-resource allocations from a JSON or YAML file.
func LoadAllocations(path string) ([]scheduler.Allocation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read allocations: %w", err)
	}

	var af AllocationFile
	if isList(path, data) {
		err = decode(path, data, &af.Allocations)
	} else {
		err = decode(path, data, &af)
	}
	if err != nil {
		return nil, fmt.Errorf("decode allocations %s: %w", path, err)
	}
	if af.Allocations == nil {
		af.Allocations = []scheduler.Allocation{}
	}
	return af.Allocations, nil
}

// Discover expands a glob pattern (with ** support) into the sorted list of
// task files it matches. Only JSON and YAML files are returned.
func Discover(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	var out []string
	for _, m := range matches {
		switch strings.ToLower(filepath.Ext(m)) {
		case ".json", ".yaml", ".yml":
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// LoadRecords loads and concatenates the records of every file matching
// pattern, in file name order.
func LoadRecords(pattern string) ([]tasks.Record, error) {
	paths, err := Discover(pattern)
	if err != nil {
		return nil, err
	}
	var out []tasks.Record
	for _, p := range paths {
		tf, err := LoadTaskFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, tf.Tasks...)
	}
	return out, nil
}

// writeFileAtomic writes content to path through a temp file + rename.
func writeFileAtomic(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write %s tmp: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteJSON atomically writes v as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// WriteYAML atomically writes v as YAML.
func WriteYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return writeFileAtomic(path, data)
}
