package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskflow/internal/events"
	"github.com/dohr-michael/taskflow/internal/storage"
	"github.com/dohr-michael/taskflow/internal/tasks"
)

// NewAddCommand returns the add subcommand.
func NewAddCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a task",
		ArgsUsage: "<title>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Task description"},
			&cli.StringFlag{Name: "deadline", Usage: "Deadline (ISO-8601 date or date-time)"},
			&cli.FloatFlag{Name: "priority", Aliases: []string{"p"}, Usage: "Priority, 1 (low) to 5 (high)"},
			&cli.IntFlag{Name: "parent", Usage: "Parent task id"},
			&cli.IntSliceFlag{Name: "depends", Usage: "Ids of tasks this one depends on"},
			&cli.StringSliceFlag{Name: "assign", Usage: "Assignees"},
		},
		Action: withWorkspace(runAdd),
	}
}

func runAdd(_ context.Context, cmd *cli.Command, w *workspace) error {
	title := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if title == "" {
		return fmt.Errorf("usage: taskflow add <title>")
	}

	var opts []tasks.CreateOption
	if d := cmd.String("description"); d != "" {
		opts = append(opts, tasks.WithDescription(d))
	}
	if v := cmd.String("deadline"); v != "" {
		deadline := tasks.ParseDeadline(v)
		if deadline == nil {
			fmt.Fprintf(os.Stderr, "warning: ignoring unparsable deadline %q\n", v)
		} else {
			opts = append(opts, tasks.WithDeadline(*deadline))
		}
	}
	if cmd.IsSet("priority") {
		opts = append(opts, tasks.WithPriority(cmd.Float("priority")))
	}
	if cmd.IsSet("parent") {
		opts = append(opts, tasks.WithParent(cmd.Int("parent")))
	}
	if deps := cmd.IntSlice("depends"); len(deps) > 0 {
		opts = append(opts, tasks.WithDependencies(deps...))
	}
	if names := cmd.StringSlice("assign"); len(names) > 0 {
		opts = append(opts, tasks.WithAssignees(names...))
	}

	t := w.store.Create(title, opts...)
	w.publish(events.NewTaskEvent(events.EventTaskCreated, t.ID, map[string]any{"title": t.Title}))
	if err := w.save(); err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Created task %d: %s\n", t.ID, t.Title)
	return nil
}

// NewListCommand returns the list subcommand.
func NewListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List tasks as a tree",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Usage: "Only show tasks with this status"},
		},
		Action: withWorkspace(runList),
	}
}

func runList(_ context.Context, cmd *cli.Command, w *workspace) error {
	if w.store.Len() == 0 {
		fmt.Fprintln(w.out, "No tasks found.")
		return nil
	}
	status := tasks.Status(cmd.String("status"))

	tw := tabwriter.NewWriter(w.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPROGRESS\tDEADLINE\tASSIGNED\tTITLE")
	for _, t := range treeOrder(w.store) {
		if status != "" && t.Status != status {
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%.0f%%\t%s\t%s\t%s%s\n",
			t.ID,
			t.Status,
			tasks.ProgressPercentage(t),
			formatDeadline(t),
			orDash(strings.Join(t.AssignedTo, ",")),
			strings.Repeat("  ", w.store.Depth(t.ID)),
			t.Title,
		)
	}
	return tw.Flush()
}

// treeOrder lists roots in creation order, each followed by its descendants.
// Tasks stranded by a parent cycle are appended at the end.
func treeOrder(s *tasks.Store) []*tasks.Task {
	seen := make(map[int]bool, s.Len())
	var out []*tasks.Task
	var walk func(t *tasks.Task)
	walk = func(t *tasks.Task) {
		if seen[t.ID] {
			return
		}
		seen[t.ID] = true
		out = append(out, t)
		for _, c := range s.Children(t.ID) {
			walk(c)
		}
	}
	for _, r := range s.Roots() {
		walk(r)
	}
	for _, t := range s.All() {
		walk(t)
	}
	return out
}

// NewShowCommand returns the show subcommand.
func NewShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show task details",
		ArgsUsage: "<task_id>",
		Action:    withWorkspace(runShow),
	}
}

func runShow(_ context.Context, cmd *cli.Command, w *workspace) error {
	id, err := taskIDArg(cmd, 0, "show <task_id>")
	if err != nil {
		return err
	}
	t, err := w.task(id)
	if err != nil {
		return err
	}
	printTask(w.out, w, t)
	return nil
}

func printTask(out io.Writer, w *workspace, t *tasks.Task) {
	fmt.Fprintf(out, "ID:          %d\n", t.ID)
	fmt.Fprintf(out, "Title:       %s\n", t.Title)
	fmt.Fprintf(out, "Status:      %s\n", t.Status)
	fmt.Fprintf(out, "Deadline:    %s\n", formatDeadline(t))
	if t.Priority != nil {
		fmt.Fprintf(out, "Priority:    %g\n", *t.Priority)
	}
	if t.ParentID != nil {
		fmt.Fprintf(out, "Parent:      %d\n", *t.ParentID)
	}
	if len(t.Dependencies) > 0 {
		fmt.Fprintf(out, "Depends on:  %s\n", joinInts(t.Dependencies))
	}
	if t.IsAssigned() {
		fmt.Fprintf(out, "Assigned:    %s\n", strings.Join(t.AssignedTo, ", "))
	}
	if t.Urgency != nil && t.Importance != nil {
		fmt.Fprintf(out, "Scores:      urgency %.2f, importance %.2f\n", *t.Urgency, *t.Importance)
	}
	fmt.Fprintf(out, "Progress:    %.2f\n", w.engine().Extended(t, w.now))
	fmt.Fprintf(out, "Created:     %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))

	if t.Description != "" {
		fmt.Fprintf(out, "\nDescription:\n%s\n", t.Description)
	}

	fmt.Fprintf(out, "\nWorkflow (%.0f%%):\n", tasks.ProgressPercentage(t))
	for _, step := range tasks.StepNames {
		mark := " "
		if t.WorkflowSteps[step] {
			mark = "x"
		}
		fmt.Fprintf(out, "  [%s] %s\n", mark, step)
	}

	if children := w.store.Children(t.ID); len(children) > 0 {
		fmt.Fprintln(out, "\nSubtasks:")
		for _, c := range children {
			fmt.Fprintf(out, "  %d. [%s] %s\n", c.ID, c.Status, c.Title)
		}
	}
}

// NewDoneCommand returns the done subcommand.
func NewDoneCommand() *cli.Command {
	return &cli.Command{
		Name:      "done",
		Usage:     "Mark a task completed",
		ArgsUsage: "<task_id>",
		Action:    withWorkspace(runDone),
	}
}

func runDone(_ context.Context, cmd *cli.Command, w *workspace) error {
	id, err := taskIDArg(cmd, 0, "done <task_id>")
	if err != nil {
		return err
	}
	if !w.store.MarkTaskCompleted(id) {
		return fmt.Errorf("task %d not found", id)
	}
	w.publish(events.NewTaskEvent(events.EventTaskCompleted, id, nil))
	if err := w.save(); err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Task %d completed.\n", id)
	return nil
}

// NewAssignCommand returns the assign subcommand.
func NewAssignCommand() *cli.Command {
	return &cli.Command{
		Name:      "assign",
		Usage:     "Assign a task to someone",
		ArgsUsage: "<task_id> <assignee>",
		Action:    withWorkspace(runAssign),
	}
}

func runAssign(_ context.Context, cmd *cli.Command, w *workspace) error {
	id, err := taskIDArg(cmd, 0, "assign <task_id> <assignee>")
	if err != nil {
		return err
	}
	assignee := strings.TrimSpace(cmd.Args().Get(1))
	if assignee == "" {
		return fmt.Errorf("usage: taskflow assign <task_id> <assignee>")
	}
	if !w.store.AssignTask(id, assignee) {
		return fmt.Errorf("task %d not found", id)
	}
	w.publish(events.NewTaskEvent(events.EventTaskAssigned, id, map[string]any{"assignee": assignee}))
	if err := w.save(); err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Task %d assigned to %s.\n", id, assignee)
	return nil
}

// NewStepCommand returns the step subcommand.
func NewStepCommand() *cli.Command {
	return &cli.Command{
		Name:      "step",
		Usage:     "Mark a workflow step of a task completed",
		ArgsUsage: "<task_id> <step>",
		Description: "Steps: " + strings.Join(tasks.StepNames, ", ") +
			". Names are matched case-insensitively.",
		Action: withWorkspace(runStep),
	}
}

func runStep(_ context.Context, cmd *cli.Command, w *workspace) error {
	id, err := taskIDArg(cmd, 0, "step <task_id> <step>")
	if err != nil {
		return err
	}
	step := strings.TrimSpace(strings.Join(cmd.Args().Slice()[1:], " "))
	t, err := w.task(id)
	if err != nil {
		return err
	}
	if err := tasks.MarkStepCompleted(t, step); err != nil {
		return err
	}
	w.store.Touch(id)
	w.publishStep(t, step)
	if err := w.save(); err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Task %d: %s done (%.0f%%).\n", id, step, tasks.ProgressPercentage(t))
	return nil
}

func (w *workspace) publishStep(t *tasks.Task, step string) {
	if canonical, ok := tasks.CanonicalStep(step); ok {
		step = canonical
	}
	w.publish(events.NewTaskEvent(events.EventStepCompleted, t.ID, map[string]any{"step": step}))
	if tasks.IsCompleted(t) {
		w.publish(events.NewTaskEvent(events.EventTaskCompleted, t.ID, nil))
	}
}

// NewCommitCommand returns the commit subcommand.
func NewCommitCommand() *cli.Command {
	return &cli.Command{
		Name:      "commit",
		Usage:     "Apply \"Task <id>: <step> done\" markers from a commit message",
		ArgsUsage: "[message]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"F"}, Usage: "Read the message from a file (- for stdin)"},
		},
		Action: withWorkspace(runCommit),
	}
}

func runCommit(_ context.Context, cmd *cli.Command, w *workspace) error {
	message := strings.Join(cmd.Args().Slice(), " ")
	switch path := cmd.String("file"); path {
	case "":
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		message = string(data)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}
		message = string(data)
	}

	applied := tasks.UpdateFromCommitMessage(w.store, message)
	for _, in := range applied {
		t, _ := w.store.Get(in.TaskID)
		w.publishStep(t, in.Step)
	}
	w.publish(events.NewEvent(events.EventCommitApplied, map[string]any{"applied": len(applied)}))

	if len(applied) == 0 {
		fmt.Fprintln(w.out, "No workflow steps updated.")
		return nil
	}
	if err := w.save(); err != nil {
		return err
	}
	for _, in := range applied {
		fmt.Fprintf(w.out, "Task %d: %s done\n", in.TaskID, in.Step)
	}
	return nil
}

// NewImportCommand returns the import subcommand.
func NewImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import task records from JSON or YAML files",
		ArgsUsage: "[glob...]",
		Description: "Records keep their ids; the next created task gets the highest id plus one. " +
			"Without arguments the configured task glob is used.",
		Action: withWorkspace(runImport),
	}
}

func runImport(_ context.Context, cmd *cli.Command, w *workspace) error {
	patterns := cmd.Args().Slice()
	if len(patterns) == 0 {
		patterns = []string{w.config().Storage.TaskGlob}
	}

	var records []tasks.Record
	for _, p := range patterns {
		rs, err := storage.LoadRecords(p)
		if err != nil {
			return err
		}
		records = append(records, rs...)
	}

	imported, err := w.store.Import(records)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	for _, t := range imported {
		w.publish(events.NewTaskEvent(events.EventTaskCreated, t.ID, map[string]any{"title": t.Title, "imported": true}))
	}
	if err := w.save(); err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Imported %d tasks (next id %d).\n", len(imported), w.store.NextID())
	return nil
}

// NewConflictsCommand returns the conflicts subcommand.
func NewConflictsCommand() *cli.Command {
	return &cli.Command{
		Name:   "conflicts",
		Usage:  "Report dependencies on unknown tasks",
		Action: withWorkspace(runConflicts),
	}
}

func runConflicts(_ context.Context, _ *cli.Command, w *workspace) error {
	conflicts := tasks.DetectConflicts(w.store)
	if len(conflicts) == 0 {
		fmt.Fprintln(w.out, "No conflicts found.")
		return nil
	}
	for _, c := range conflicts {
		fmt.Fprintln(w.out, c)
	}
	return nil
}

func formatDeadline(t *tasks.Task) string {
	if t.Deadline == nil {
		return "-"
	}
	return t.Deadline.Format("2006-01-02")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
