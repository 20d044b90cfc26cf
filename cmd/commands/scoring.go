package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskflow/internal/events"
	"github.com/dohr-michael/taskflow/internal/scoring"
	"github.com/dohr-michael/taskflow/internal/tasks"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"}
}

// NewScoreCommand returns the score subcommand.
func NewScoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "score",
		Usage: "Compute urgency and importance for every task",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "propagate", Usage: "Raise parents to the urgency of their most urgent descendant"},
			jsonFlag(),
		},
		Action: withWorkspace(runScore),
	}
}

// scoreRow is one line of the score report.
type scoreRow struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	Urgency    float64 `json:"urgency"`
	Importance float64 `json:"importance"`
	Progress   float64 `json:"progress"`
}

func runScore(_ context.Context, cmd *cli.Command, w *workspace) error {
	engine := w.engine()
	if cmd.IsSet("propagate") {
		engine.Propagate = cmd.Bool("propagate")
	}
	engine.CalculateScores(w.store, w.now, scoring.Cache{})
	w.publish(events.NewEvent(events.EventScoresCalculated, map[string]any{
		"tasks":     w.store.Len(),
		"propagate": engine.Propagate,
	}))
	if err := w.save(); err != nil {
		return err
	}

	rows := make([]scoreRow, 0, w.store.Len())
	for _, t := range w.store.All() {
		rows = append(rows, scoreRow{
			ID:         t.ID,
			Title:      t.Title,
			Urgency:    *t.Urgency,
			Importance: *t.Importance,
			Progress:   engine.Extended(t, w.now),
		})
	}
	if cmd.Bool("json") {
		return writeJSON(w.out, rows)
	}

	tw := tabwriter.NewWriter(w.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tURGENCY\tIMPORTANCE\tPROGRESS\tTITLE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.2f\t%s\n", r.ID, r.Urgency, r.Importance, r.Progress, r.Title)
	}
	return tw.Flush()
}

// NewClassifyCommand returns the classify subcommand.
func NewClassifyCommand() *cli.Command {
	return &cli.Command{
		Name:   "classify",
		Usage:  "Sort tasks into the Eisenhower matrix",
		Flags:  []cli.Flag{jsonFlag()},
		Action: withWorkspace(runClassify),
	}
}

var quadrants = []struct {
	q     scoring.Quadrant
	title string
}{
	{scoring.QuadrantDoNow, "Do now (urgent, important)"},
	{scoring.QuadrantSchedule, "Schedule (important)"},
	{scoring.QuadrantDelegate, "Delegate (urgent)"},
	{scoring.QuadrantEliminate, "Eliminate"},
}

func runClassify(_ context.Context, cmd *cli.Command, w *workspace) error {
	m := w.engine().ClassifyStore(w.store, w.now)
	if cmd.Bool("json") {
		return writeJSON(w.out, matrixIDs(m))
	}
	printMatrix(w.out, m, func(s string) string { return s })
	return nil
}

func printMatrix(out io.Writer, m scoring.Matrix, heading func(string) string) {
	for i, q := range quadrants {
		if i > 0 {
			fmt.Fprintln(out)
		}
		list := m.Quadrant(q.q)
		fmt.Fprintln(out, heading(fmt.Sprintf("%s: %d", q.title, len(list))))
		for _, t := range list {
			fmt.Fprintf(out, "  %d. %s\n", t.ID, t.Title)
		}
	}
}

// matrixIDs reduces the matrix to task ids per quadrant.
func matrixIDs(m scoring.Matrix) map[scoring.Quadrant][]int {
	out := make(map[scoring.Quadrant][]int, len(quadrants))
	for _, q := range quadrants {
		ids := []int{}
		for _, t := range m.Quadrant(q.q) {
			ids = append(ids, t.ID)
		}
		out[q.q] = ids
	}
	return out
}

// NewPrioritizeCommand returns the prioritize subcommand.
func NewPrioritizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "prioritize",
		Usage: "Order tasks by weighted importance and urgency",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "open", Usage: "Skip completed tasks"},
			jsonFlag(),
		},
		Action: withWorkspace(runPrioritize),
	}
}

// priorityRow is one line of the prioritized list.
type priorityRow struct {
	Rank  int     `json:"rank"`
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

func runPrioritize(_ context.Context, cmd *cli.Command, w *workspace) error {
	engine := w.engine()
	ordered := engine.PrioritizeStore(w.store, w.now)

	rows := []priorityRow{}
	for _, t := range ordered {
		if cmd.Bool("open") && t.Status == tasks.StatusCompleted {
			continue
		}
		rows = append(rows, priorityRow{
			Rank:  len(rows) + 1,
			ID:    t.ID,
			Title: t.Title,
			Score: scoring.Combined(t, engine.Weights),
		})
	}
	if cmd.Bool("json") {
		return writeJSON(w.out, rows)
	}

	tw := tabwriter.NewWriter(w.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tSCORE\tTITLE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%.2f\t%s\n", r.Rank, r.ID, r.Score, r.Title)
	}
	return tw.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
