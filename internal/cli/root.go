// Package cli implements the cobra-based CLI commands for stackup.
//
// Each subcommand (init, ports, list, down) is defined in its own file
// within this package. This file defines the root command that serves as
// the parent for all subcommands and handles global flags.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/stackup/internal/logging"
	"github.com/shinji-kodama/stackup/internal/model"
)

// Global flag variables shared across all subcommands.
var (
	// jsonOutput switches command results, errors and log records to JSON.
	jsonOutput bool

	// verbose enables debug logging on stderr.
	verbose bool
)

// Build information, injected from the main package.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// errOut is where JSON errors and logs are written. Tests replace it.
var errOut io.Writer = os.Stderr

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself does not perform any action. It only provides
// help text and global flags.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stackup",
		Short: "Scaffold a Docker development environment for Laravel, Vue or Nuxt",
		Long: `stackup asks a few questions, writes a Dockerfile, nginx config and
compose environment into the current directory, starts the containers and
bootstraps the selected framework inside the app container.

Host ports are resolved at startup: when a default port is already in use,
the next free port in the service's range is proposed instead.`,

		// Errors are printed by Execute, in text or JSON.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbose, jsonOutput, errOut)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewPortsCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewDownCommand())

	return rootCmd
}

// Execute runs the root command and exits with the code carried by the
// returned error.
// Ctrl+C cancels the command context.
func Execute(rootCmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		cliErr := classify(err)
		printError(cliErr.Message, cliErr.Err)
		os.Exit(int(cliErr.Code))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// stdout is reserved for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(errOut, string(data))
		return
	}

	if underlying != nil {
		logging.UserError("Error: %s: %v", message, underlying)
	} else {
		logging.UserError("Error: %s", message)
	}
}

// VerboseLog writes a debug record, shown only with --verbose.
func VerboseLog(format string, args ...interface{}) {
	logging.Debugf(format, args...)
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(logging.Stdout(), string(data))
	return err
}

// asCLIError returns err as a *model.CLIError when it is one.
func asCLIError(err error) (*model.CLIError, bool) {
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return cliErr, true
	}
	return nil, false
}
