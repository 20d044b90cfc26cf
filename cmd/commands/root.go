package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskflow/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "taskflow",
		Usage: "Prioritize tasks and level resources across a work breakdown",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.StringFlag{
				Name:  "now",
				Usage: "Reference time for scoring (default: current time)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			NewAddCommand(),
			NewListCommand(),
			NewShowCommand(),
			NewDoneCommand(),
			NewAssignCommand(),
			NewStepCommand(),
			NewCommitCommand(),
			NewImportCommand(),
			NewConflictsCommand(),
			NewScoreCommand(),
			NewClassifyCommand(),
			NewPrioritizeCommand(),
			NewWBSCommand(),
			NewFlattenCommand(),
			NewLevelCommand(),
			NewSlotsCommand(),
			NewRunsCommand(),
			NewReportCommand(),
			NewHistoryCommand(),
			NewConfigCommand(),
		},
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := slog.LevelWarn
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return ctx, nil
}
