package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"charm.land/lipgloss/v2"
	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskflow/internal/scoring"
	"github.com/dohr-michael/taskflow/internal/tasks"
)

const (
	colorHeading = "#7C3AED"
	colorWarning = "#F59E0B"
	colorMuted   = "#6B7280"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorHeading))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorWarning))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorMuted)).
			Italic(true)
)

// NewReportCommand returns the report subcommand.
func NewReportCommand() *cli.Command {
	return &cli.Command{
		Name:   "report",
		Usage:  "Print a progress report: matrix, priorities, conflicts and workflow progress",
		Action: withWorkspace(runReport),
	}
}

func runReport(_ context.Context, _ *cli.Command, w *workspace) error {
	engine := w.engine()
	engine.CalculateScores(w.store, w.now, scoring.Cache{})

	out := w.out
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Task report, %s", w.now.Format("2006-01-02 15:04"))))
	fmt.Fprintln(out)

	if w.store.Len() == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No tasks yet."))
		return nil
	}

	writeSummary(out, w.store)

	fmt.Fprintln(out)
	fmt.Fprintln(out, sectionStyle.Render("Conflicts"))
	if conflicts := tasks.DetectConflicts(w.store); len(conflicts) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("none"))
	} else {
		for _, c := range conflicts {
			fmt.Fprintln(out, warningStyle.Render("! "+c))
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, sectionStyle.Render("Eisenhower matrix"))
	printMatrix(out, scoring.Classify(w.store.All(), engine.Thresholds), func(s string) string {
		return titleStyle.Render(s)
	})

	fmt.Fprintln(out)
	fmt.Fprintln(out, sectionStyle.Render("Next up"))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tSCORE\tPROGRESS\tTITLE")
	rank := 0
	for _, t := range scoring.Prioritize(w.store.All(), engine.Weights) {
		if t.Status == tasks.StatusCompleted {
			continue
		}
		rank++
		fmt.Fprintf(tw, "%d\t%d\t%.2f\t%.0f%%\t%s\n",
			rank, t.ID, scoring.Combined(t, engine.Weights), tasks.ProgressPercentage(t), t.Title)
		if rank == 10 {
			break
		}
	}
	return tw.Flush()
}

func writeSummary(out io.Writer, s *tasks.Store) {
	counts := map[tasks.Status]int{}
	var steps, totalSteps int
	for _, t := range s.All() {
		counts[t.Status]++
		steps += t.WorkflowSteps.Completed()
		totalSteps += len(tasks.StepNames)
	}

	fmt.Fprintln(out, sectionStyle.Render("Summary"))
	fmt.Fprintf(out, "Tasks:        %d (%d roots)\n", s.Len(), len(s.Roots()))
	fmt.Fprintf(out, "Pending:      %d\n", counts[tasks.StatusPending])
	fmt.Fprintf(out, "In progress:  %d\n", counts[tasks.StatusInProgress])
	fmt.Fprintf(out, "Completed:    %d\n", counts[tasks.StatusCompleted])
	if other := s.Len() - counts[tasks.StatusPending] - counts[tasks.StatusInProgress] - counts[tasks.StatusCompleted]; other > 0 {
		fmt.Fprintf(out, "Other:        %d\n", other)
	}
	fmt.Fprintf(out, "Workflow:     %d/%d steps (%.0f%%)\n", steps, totalSteps, 100*float64(steps)/float64(totalSteps))
}
