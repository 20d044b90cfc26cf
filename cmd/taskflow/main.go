// Command taskflow prioritizes tasks and levels their schedule across
// resources.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dohr-michael/taskflow/cmd/commands"
	"github.com/dohr-michael/taskflow/internal/config"
)

func main() {
	// .env is read before flags so TASKFLOW_* variables reach the config.
	if err := config.LoadDotenv(config.DotenvPath()); err != nil {
		slog.Warn("skipping .env", "path", config.DotenvPath(), "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.NewRootCommand().Run(ctx, os.Args); err != nil {
		slog.Error("taskflow failed", "error", err)
		stop()
		os.Exit(1)
	}
}
