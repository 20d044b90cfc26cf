package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskflow/internal/events"
	"github.com/dohr-michael/taskflow/internal/scheduler"
	"github.com/dohr-michael/taskflow/internal/storage"
	"github.com/dohr-michael/taskflow/internal/tasks"
)

// NewWBSCommand returns the wbs subcommand.
func NewWBSCommand() *cli.Command {
	return &cli.Command{
		Name:      "wbs",
		Usage:     "Expand an idea into a work breakdown",
		ArgsUsage: "<idea>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write the tree to a .json or .yaml file"},
			&cli.BoolFlag{Name: "add", Usage: "Add the breakdown to the task store"},
		},
		Action: withWorkspace(runWBS),
	}
}

func runWBS(_ context.Context, cmd *cli.Command, w *workspace) error {
	idea := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if idea == "" {
		return fmt.Errorf("usage: taskflow wbs <idea>")
	}
	root := tasks.GenerateWBS(idea)

	if path := cmd.String("output"); path != "" {
		if err := writeByExt(path, root); err != nil {
			return err
		}
		fmt.Fprintf(w.out, "Wrote %d nodes to %s\n", root.Count(), path)
	} else {
		printTree(w.out, root, 0)
	}

	if cmd.Bool("add") {
		created := w.store.AddTree(root)
		for _, t := range created {
			w.publish(events.NewTaskEvent(events.EventTaskCreated, t.ID, map[string]any{"title": t.Title}))
		}
		if err := w.save(); err != nil {
			return err
		}
		fmt.Fprintf(w.out, "Added %d tasks (root %d).\n", len(created), created[0].ID)
	}
	return nil
}

func printTree(out io.Writer, n tasks.Node, depth int) {
	est := ""
	if n.NormalHours != nil {
		est = fmt.Sprintf(" (%s)", formatEstimate(n))
	}
	fmt.Fprintf(out, "%s%d. %s%s\n", strings.Repeat("  ", depth), n.ID, n.Title, est)
	for _, c := range n.Subtasks {
		printTree(out, c, depth+1)
	}
}

func formatEstimate(n tasks.Node) string {
	h := func(v *float64) string {
		if v == nil {
			return "?"
		}
		return fmt.Sprintf("%g", *v)
	}
	return fmt.Sprintf("%s/%s/%sh", h(n.OptimisticHours), h(n.NormalHours), h(n.PessimisticHours))
}

func writeByExt(path string, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return storage.WriteYAML(path, v)
	case ".json":
		return storage.WriteJSON(path, v)
	}
	return fmt.Errorf("%w: %s", storage.ErrUnsupportedFormat, path)
}

// NewFlattenCommand returns the flatten subcommand.
func NewFlattenCommand() *cli.Command {
	return &cli.Command{
		Name:      "flatten",
		Usage:     "Flatten a nested task tree into records with parent ids",
		ArgsUsage: "<tree-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write the records to a .json or .yaml file"},
		},
		Action: runFlatten,
	}
}

func runFlatten(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: taskflow flatten <tree-file>")
	}
	root, err := storage.LoadTree(path)
	if err != nil {
		return err
	}
	flat := scheduler.Flatten(root)

	if out := cmd.String("output"); out != "" {
		return writeByExt(out, flat)
	}
	return writeJSON(output(cmd), flat)
}

// NewLevelCommand returns the level subcommand.
func NewLevelCommand() *cli.Command {
	return &cli.Command{
		Name:      "level",
		Usage:     "Level resources over a task tree",
		ArgsUsage: "<tree-file> <allocations-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Usage: "Duration estimate: optimistic, normal, pessimistic"},
			&cli.BoolFlag{Name: "no-calendar", Usage: "Only print hour offsets"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Do not save the run"},
			jsonFlag(),
		},
		Action: withWorkspace(runLevel),
	}
}

func runLevel(_ context.Context, cmd *cli.Command, w *workspace) error {
	treePath, allocPath := cmd.Args().Get(0), cmd.Args().Get(1)
	if treePath == "" || allocPath == "" {
		return fmt.Errorf("usage: taskflow level <tree-file> <allocations-file>")
	}

	kindName := w.config().Scheduler.DurationKind
	if cmd.IsSet("kind") {
		kindName = cmd.String("kind")
	}
	kind, err := scheduler.ParseDurationKind(kindName)
	if err != nil {
		return err
	}

	root, err := storage.LoadTree(treePath)
	if err != nil {
		return err
	}
	allocations, err := storage.LoadAllocations(allocPath)
	if err != nil {
		return err
	}

	var cal *scheduler.Calendar
	if !cmd.Bool("no-calendar") {
		if cal, err = w.calendar(); err != nil {
			return err
		}
	}

	flat := scheduler.Flatten(root)
	sched := scheduler.NewLeveler(kind).Level(flat, allocations)
	run := storage.NewRun(kind, sched, flat, cal)

	if !cmd.Bool("dry-run") {
		if err := w.backend.SaveRun(run); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
	}
	w.publish(events.NewEvent(events.EventScheduleLeveled, map[string]any{
		"run_id":   run.ID,
		"kind":     string(kind),
		"entries":  len(run.Entries),
		"makespan": sched.Makespan(),
	}))

	if cmd.Bool("json") {
		return writeJSON(w.out, run)
	}
	printRun(w.out, run)
	fmt.Fprintf(w.out, "\nMakespan: %gh\n", sched.Makespan())
	return nil
}

func printRun(out io.Writer, run *storage.Run) {
	fmt.Fprintf(out, "Run %s (%s", run.ID, run.DurationKind)
	if run.Calendar != "" {
		fmt.Fprintf(out, ", calendar %q", run.Calendar)
	}
	fmt.Fprintln(out, ")")

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RESOURCE\tTASK\tSTART\tEND\tFROM\tTO\tTITLE")
	for _, e := range run.Entries {
		from, to := "-", "-"
		if e.StartsAt != nil && e.EndsAt != nil {
			from = e.StartsAt.Format("Mon 2006-01-02 15:04")
			to = e.EndsAt.Format("Mon 2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%d\t%g\t%g\t%s\t%s\t%s\n", e.ResourceID, e.TaskID, e.Start, e.End, from, to, e.Title)
	}
	tw.Flush()
}

// NewSlotsCommand returns the slots subcommand.
func NewSlotsCommand() *cli.Command {
	return &cli.Command{
		Name:   "slots",
		Usage:  "Place prioritized tasks into sequential slots per hierarchy",
		Flags:  []cli.Flag{jsonFlag()},
		Action: withWorkspace(runSlots),
	}
}

func runSlots(_ context.Context, cmd *cli.Command, w *workspace) error {
	ordered := w.engine().PrioritizeStore(w.store, w.now)
	slots := scheduler.AssignSlots(w.store, ordered)
	w.publish(events.NewEvent(events.EventSlotsAssigned, map[string]any{"slots": len(slots)}))

	if cmd.Bool("json") {
		return writeJSON(w.out, slots)
	}
	tw := tabwriter.NewWriter(w.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOT\tSLOT\tTASK\tTITLE")
	for _, s := range slots {
		t, _ := w.store.Get(s.TaskID)
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", s.RootID, s.Slot, s.TaskID, t.Title)
	}
	return tw.Flush()
}

// NewRunsCommand returns the runs subcommand.
func NewRunsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Inspect saved leveling runs",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List saved runs",
				Action: withWorkspace(runRunsList),
			},
			{
				Name:      "show",
				Usage:     "Show a saved run",
				ArgsUsage: "<run_id>",
				Action:    withWorkspace(runRunsShow),
			},
		},
		DefaultCommand: "list",
	}
}

func runRunsList(_ context.Context, _ *cli.Command, w *workspace) error {
	runs, err := w.backend.ListRuns()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w.out, "No runs found.")
		return nil
	}
	tw := tabwriter.NewWriter(w.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tKIND\tENTRIES")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.DurationKind, len(r.Entries))
	}
	return tw.Flush()
}

func runRunsShow(_ context.Context, cmd *cli.Command, w *workspace) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: taskflow runs show <run_id>")
	}
	run, err := w.backend.GetRun(id)
	if err != nil {
		return err
	}
	printRun(w.out, run)
	return nil
}
