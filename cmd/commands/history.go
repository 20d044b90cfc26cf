package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskflow/internal/config"
	"github.com/dohr-michael/taskflow/internal/events"
	"github.com/dohr-michael/taskflow/internal/storage"
)

// NewHistoryCommand returns the history subcommand.
func NewHistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show journaled task events for a day",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "Day to show, YYYY-MM-DD in UTC (default: today)"},
			&cli.StringFlag{Name: "type", Usage: "Only show events of this type"},
			&cli.IntFlag{Name: "limit", Value: 50, Usage: "Show at most the last N events"},
		},
		Action: runHistory,
	}
}

func runHistory(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadOrDefault(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	out := output(cmd)

	day := cmd.String("date")
	if day == "" {
		day = time.Now().UTC().Format("2006-01-02")
	}
	list, err := storage.LoadJournal(filepath.Join(cfg.Events.LogDir, day+".jsonl"))
	if err != nil {
		return err
	}

	if typ := cmd.String("type"); typ != "" {
		filtered := list[:0]
		for _, e := range list {
			if string(e.Type) == typ {
				filtered = append(filtered, e)
			}
		}
		list = filtered
	}
	if limit := cmd.Int("limit"); limit > 0 && len(list) > limit {
		list = list[len(list)-limit:]
	}

	if len(list) == 0 {
		fmt.Fprintln(out, "No events found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTYPE\tTASK\tDETAILS")
	for _, e := range list {
		task := "-"
		if e.TaskID != 0 {
			task = fmt.Sprint(e.TaskID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Timestamp.Format("15:04:05"), e.Type, task, formatPayload(e))
	}
	return tw.Flush()
}

func formatPayload(e events.Event) string {
	if len(e.Payload) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(e.Payload))
	for k := range e.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, e.Payload[k])
	}
	return strings.Join(parts, " ")
}
