package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskflow/internal/config"
)

// NewConfigCommand returns the config subcommand.
func NewConfigCommand() *cli.Command {
	return &cli.Command{
		Name:   "config",
		Usage:  "Print the effective configuration, defaults included",
		Action: withWorkspace(runConfig),
	}
}

func runConfig(_ context.Context, cmd *cli.Command, w *workspace) error {
	// Re-read .env with override so the printed values match a fresh shell.
	w.reloader.OnReload(func(prev, next *config.Config) {
		if prev.Storage.Driver != next.Storage.Driver {
			fmt.Fprintf(w.out, "# storage driver changed from %s to %s, this run used %s\n",
				prev.Storage.Driver, next.Storage.Driver, prev.Storage.Driver)
		}
	})
	if err := w.reloader.Reload(); err != nil {
		fmt.Fprintf(w.out, "# %s not loaded: %v\n", cmd.String("config"), err)
	}
	return writeJSON(w.out, w.config())
}
