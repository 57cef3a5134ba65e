package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/stackup/internal/config"
	"github.com/shinji-kodama/stackup/internal/logging"
	"github.com/shinji-kodama/stackup/internal/model"
	"github.com/shinji-kodama/stackup/internal/port"
)

// portsFlags holds the flag values for the ports command.
type portsFlags struct {
	dir    string
	config string
}

// NewPortsCommand creates the "ports" cobra command.
func NewPortsCommand() *cobra.Command {
	flags := &portsFlags{}

	cmd := &cobra.Command{
		Use:   "ports",
		Short: "Show the host ports init would propose",
		Long: `Resolve the host port of every service without asking any questions.

Each service gets its preferred port when nothing listens on it, otherwise
the first free port of its range. The test database is resolved after the
primary database, starting one above it.

Exits with code 4 when a service's range is exhausted.

Examples:
  stackup ports
  stackup ports --config stackup.yaml --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPorts(cmd.Context(), flags, defaultEnvironment())
		},
	}

	cmd.Flags().StringVar(&flags.dir, "dir", ".", "Project directory (settings lookup)")
	cmd.Flags().StringVar(&flags.config, "config", "", "Settings file")

	return cmd
}

// portsResult is the JSON output of the ports command.
type portsResult struct {
	Ports    model.Ports       `json:"ports"`
	Services []port.Resolution `json:"services"`
}

// runPorts is the main logic function for the ports command.
func runPorts(_ context.Context, flags *portsFlags, env *environment) error {
	dir, err := filepath.Abs(flags.dir)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to resolve directory", err)
	}
	settings, err := config.Load(dir, flags.config)
	if err != nil {
		return err
	}

	prober := env.prober
	if prober == nil {
		prober = port.NewScanner(settings.ProbeTimeout)
	}

	ports, resolutions, err := port.ResolveAll(port.NewResolver(prober, settings.Host), settings.Plan)
	if err != nil {
		return model.WrapCLIError(model.ExitPortAllocationFailed, "port allocation failed", err)
	}
	VerboseLog("Resolved %d services on %s", len(resolutions), settings.Host)

	if IsJSONOutput() {
		return printJSON(portsResult{Ports: ports, Services: resolutions})
	}
	return printPortsTable(logging.Stdout(), resolutions)
}

// printPortsTable writes one row per resolution.
//
//	SERVICE     PORT  PREFERRED  RANGE      NOTE
//	MySQL       3308  3306       3306-3399  default in use
func printPortsTable(w io.Writer, resolutions []port.Resolution) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tPORT\tPREFERRED\tRANGE\tNOTE")
	for _, r := range resolutions {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n",
			r.Request.Name, r.Port, r.Request.Preferred, FormatRange(r.Request), resolutionNote(r))
	}
	return tw.Flush()
}

// FormatRange renders a request's scan range as "min-max", or "-" when it
// is empty.
func FormatRange(req port.Request) string {
	if req.RangeMin > req.RangeMax {
		return "-"
	}
	return fmt.Sprintf("%d-%d", req.RangeMin, req.RangeMax)
}

func resolutionNote(r port.Resolution) string {
	if r.UsedFallback {
		return "default in use"
	}
	return ""
}
