package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dohr-michael/taskflow/internal/storage"
)

// cliEnv isolates a CLI run under a temporary TASKFLOW_PATH.
type cliEnv struct {
	t    *testing.T
	home string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("TASKFLOW_PATH", home)
	t.Setenv("TASKFLOW_STORAGE", "")
	return &cliEnv{t: t, home: home}
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	var buf bytes.Buffer
	cmd := NewRootCommand()
	cmd.Writer = &buf
	full := append([]string{"taskflow", "--config", filepath.Join(e.home, "config.jsonc"), "--now", "2026-10-15T12:00:00Z"}, args...)
	err := cmd.Run(context.Background(), full)
	return buf.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "taskflow %s", strings.Join(args, " "))
	return out
}

func TestTaskLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("add", "--priority", "5", "--deadline", "2026-10-16", "Design")
	assert.Contains(t, out, "Created task 1: Design")

	out = env.mustRun("add", "--parent", "1", "--depends", "1", "--depends", "99", "Build")
	assert.Contains(t, out, "Created task 2: Build")

	out = env.mustRun("list")
	assert.Contains(t, out, "Design")
	assert.Contains(t, out, "  Build")

	out = env.mustRun("conflicts")
	assert.Contains(t, out, "Build depends on unknown task 99")

	out = env.mustRun("commit", "Task 2: coding done, Task 7: testing done")
	assert.Contains(t, out, "Task 2: Coding done")
	assert.NotContains(t, out, "Task 7")

	out = env.mustRun("show", "2")
	assert.Contains(t, out, "Status:      in_progress")
	assert.Contains(t, out, "[x] Coding")

	env.mustRun("assign", "2", "alice")
	env.mustRun("done", "1")

	out = env.mustRun("show", "1")
	assert.Contains(t, out, "Status:      completed")

	_, err := env.run("done", "42")
	assert.Error(t, err)
	_, err = env.run("step", "2", "Lunch")
	assert.Error(t, err)
}

func TestPrioritizeJSON(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("add", "--priority", "2", "Later")
	env.mustRun("add", "--priority", "5", "--deadline", "2026-10-15", "Now")

	out := env.mustRun("prioritize", "--json")
	var rows []priorityRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].ID)
	assert.InDelta(t, 0.6*5+0.4*1, rows[0].Score, 1e-9)
	assert.Equal(t, 1, rows[1].ID)
}

func TestClassifyJSON(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("add", "--priority", "5", "--deadline", "2026-10-15", "Fire")
	env.mustRun("add", "Someday")

	out := env.mustRun("classify", "--json")
	var m map[string][]int
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, []int{1}, m["do_now"])
	assert.Equal(t, []int{2}, m["eliminate"])
	assert.Empty(t, m["schedule"])
}

func TestWBSAndLevel(t *testing.T) {
	env := newCLIEnv(t)
	dir := t.TempDir()
	tree := filepath.Join(dir, "tree.yaml")
	alloc := filepath.Join(dir, "alloc.json")

	out := env.mustRun("wbs", "--output", tree, "--add", "Shop")
	assert.Contains(t, out, "Wrote 10 nodes")
	assert.Contains(t, out, "Added 10 tasks (root 1)")

	require.NoError(t, os.WriteFile(alloc, []byte(`[
		{"task_id": 3, "role": "dev"},
		{"task_id": 4, "role": "dev"},
		{"task_id": 404, "role": "dev"}
	]`), 0o644))

	out = env.mustRun("level", "--json", tree, alloc)
	var run storage.Run
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	require.Len(t, run.Entries, 2)
	assert.Equal(t, 4.0, run.Entries[1].Start)
	assert.Equal(t, 12.0, run.Entries[1].End)
	require.NotNil(t, run.Entries[0].StartsAt)
	assert.Equal(t, time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC), run.Entries[0].StartsAt.UTC())

	out = env.mustRun("runs", "list")
	assert.Contains(t, out, run.ID)

	_, err := env.run("level", "--kind", "eventually", tree, alloc)
	assert.Error(t, err)
}

func TestFlatten(t *testing.T) {
	env := newCLIEnv(t)
	tree := filepath.Join(t.TempDir(), "tree.json")
	require.NoError(t, os.WriteFile(tree, []byte(`{"id": 1, "title": "r", "subtasks": [{"id": 2, "title": "c"}]}`), 0o644))

	out := env.mustRun("flatten", tree)
	assert.Contains(t, out, `"parent_id": 1`)
}

func TestHistoryAfterCommands(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("add", "Journaled")

	out := env.mustRun("history", "--type", "task.created")
	assert.Contains(t, out, "task.created")
	assert.Contains(t, out, "title=Journaled")
}

func TestSQLiteDriver(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("TASKFLOW_STORAGE", "sqlite")

	env.mustRun("add", "Persisted")
	out := env.mustRun("show", "1")
	assert.Contains(t, out, "Persisted")

	_, err := os.Stat(filepath.Join(env.home, "data", "taskflow.db"))
	assert.NoError(t, err)
}

func TestReportEmpty(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun("report")
	assert.Contains(t, out, "No tasks yet.")
}

func TestConfigReportsDotenvChanges(t *testing.T) {
	env := newCLIEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.home, ".env"), []byte("TASKFLOW_STORAGE=sqlite\n"), 0o600))

	out := env.mustRun("config")
	assert.Contains(t, out, "# storage driver changed from file to sqlite")
	assert.Contains(t, out, `"driver": "sqlite"`)
	assert.Contains(t, out, `"working_hours": "0 9-16 * * 1-5"`)
}
