package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/stackup/internal/config"
	"github.com/shinji-kodama/stackup/internal/docker"
	"github.com/shinji-kodama/stackup/internal/logging"
	"github.com/shinji-kodama/stackup/internal/model"
)

// downFlags holds the flag values for the down command.
type downFlags struct {
	dir    string
	config string
	dryRun bool
}

// NewDownCommand creates the "down" cobra command.
func NewDownCommand() *cobra.Command {
	flags := &downFlags{}

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Stop and remove the project's containers",
		Long: `Run docker compose down for the project directory. Volumes (database
data) are kept, so a later "docker compose up" or "stackup init" reuses them.

Examples:
  stackup down
  stackup down --dir ~/dev/shop`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDown(cmd.Context(), flags, defaultEnvironment())
		},
	}

	cmd.Flags().StringVar(&flags.dir, "dir", ".", "Project directory")
	cmd.Flags().StringVar(&flags.config, "config", "", "Settings file")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the docker command instead of running it")

	return cmd
}

// runDown is the main logic function for the down command.
func runDown(ctx context.Context, flags *downFlags, env *environment) error {
	dir, err := filepath.Abs(flags.dir)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to resolve project directory", err)
	}
	settings, err := config.Load(dir, flags.config)
	if err != nil {
		return err
	}

	runner := env.runner
	if flags.dryRun {
		runner = &docker.DryRunner{Out: logging.Stdout()}
	}

	logging.UserInfo("Stopping containers in %s...", dir)
	if err := docker.NewCompose(runner, dir, settings.ComposeFile).Down(ctx); err != nil {
		return err
	}
	logging.UserSuccess("Containers stopped")
	return nil
}
