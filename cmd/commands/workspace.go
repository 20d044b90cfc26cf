package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskflow/internal/config"
	"github.com/dohr-michael/taskflow/internal/events"
	"github.com/dohr-michael/taskflow/internal/scheduler"
	"github.com/dohr-michael/taskflow/internal/scoring"
	"github.com/dohr-michael/taskflow/internal/storage"
	"github.com/dohr-michael/taskflow/internal/tasks"
)

// workspace is the state one CLI invocation works on: the restored task
// store, the persistence backend and the event bus feeding the journal.
type workspace struct {
	reloader *config.Reloader
	backend  storage.Backend
	store    *tasks.Store
	bus      *events.Bus
	journal  *storage.EventLogger
	out      io.Writer
	now      time.Time
}

func openWorkspace(cmd *cli.Command) (*workspace, error) {
	configPath := cmd.String("config")
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	now := time.Now()
	if v := cmd.String("now"); v != "" {
		ref := tasks.ParseDeadline(v)
		if ref == nil {
			return nil, fmt.Errorf("invalid --now %q", v)
		}
		now = *ref
	}

	backend, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Dir)
	if err != nil {
		return nil, err
	}
	snap, err := backend.LoadSnapshot()
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	store, err := snap.Store()
	if err != nil {
		backend.Close()
		return nil, err
	}

	w := &workspace{
		reloader: config.NewReloader(configPath, config.DotenvPath(), cfg),
		backend:  backend,
		store:    store,
		bus:      events.NewBus(cfg.Events.BufferSize),
		out:      output(cmd),
		now:      now,
	}
	if cfg.Events.JournalEnabled() {
		w.journal = storage.NewEventLogger(cfg.Events.LogDir, w.bus)
	}

	slog.Debug("workspace opened",
		"driver", cfg.Storage.Driver,
		"dir", cfg.Storage.Dir,
		"tasks", store.Len(),
	)
	return w, nil
}

// Close flushes pending events to the journal and releases the backend.
func (w *workspace) Close() {
	w.bus.Close()
	for _, e := range w.bus.History(w.config().Events.BufferSize) {
		slog.Debug("event", "type", e.Type, "task_id", e.TaskID, "id", e.ID)
	}
	if w.journal != nil {
		w.journal.Close()
	}
	if err := w.backend.Close(); err != nil {
		slog.Warn("close backend", "error", err)
	}
}

func (w *workspace) config() *config.Config {
	return w.reloader.Current()
}

func (w *workspace) save() error {
	if err := w.backend.SaveSnapshot(storage.SnapshotOf(w.store)); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

func (w *workspace) publish(e events.Event) {
	if err := w.bus.Publish(e); err != nil {
		slog.Warn("publish event", "type", e.Type, "error", err)
	}
}

func (w *workspace) engine() *scoring.Engine {
	sc := w.config().Scoring
	return &scoring.Engine{
		Window:         sc.ClassifyWindow.Duration(),
		ProgressWindow: sc.ProgressWindow.Duration(),
		Thresholds: scoring.Thresholds{
			Urgency:    sc.Thresholds.Urgency,
			Importance: sc.Thresholds.Importance,
		},
		Weights: scoring.Weights{
			Importance: sc.Weights.Importance,
			Urgency:    sc.Weights.Urgency,
		},
		Propagate: sc.Propagate,
	}
}

func (w *workspace) calendar() (*scheduler.Calendar, error) {
	sc := w.config().Scheduler
	start := time.Date(w.now.Year(), w.now.Month(), w.now.Day(), 0, 0, 0, 0, w.now.Location())
	if sc.CalendarStart != "" {
		ref := tasks.ParseDeadline(sc.CalendarStart)
		if ref == nil {
			return nil, fmt.Errorf("invalid calendar_start %q", sc.CalendarStart)
		}
		start = *ref
	}
	return scheduler.NewCalendar(sc.WorkingHours, start)
}

// withWorkspace opens the workspace around a command action.
func withWorkspace(fn func(ctx context.Context, cmd *cli.Command, w *workspace) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		w, err := openWorkspace(cmd)
		if err != nil {
			return err
		}
		defer w.Close()
		return fn(ctx, cmd, w)
	}
}

func output(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// taskIDArg parses the i-th positional argument as a task id.
func taskIDArg(cmd *cli.Command, i int, usage string) (int, error) {
	arg := cmd.Args().Get(i)
	if arg == "" {
		return 0, fmt.Errorf("usage: taskflow %s", usage)
	}
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}

func (w *workspace) task(id int) (*tasks.Task, error) {
	t, ok := w.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("task %d not found", id)
	}
	return t, nil
}
