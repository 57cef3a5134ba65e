package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/stackup/internal/docker"
	"github.com/shinji-kodama/stackup/internal/logging"
	"github.com/shinji-kodama/stackup/internal/model"
)

// NewListCommand creates the "list" cobra command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects created by stackup",
		Long: `List every project whose containers were created from a compose file
generated by stackup, with its container status and recorded host ports.

Examples:
  stackup list
  stackup list --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), defaultEnvironment())
		},
	}

	return cmd
}

// projectSummary is one row of the list output.
type projectSummary struct {
	Name       string            `json:"name"`
	Type       model.ProjectType `json:"type,omitempty"`
	PHPVersion model.PHPVersion  `json:"phpVersion,omitempty"`
	Running    int               `json:"running"`
	Containers int               `json:"containers"`
	Ports      model.Ports       `json:"ports"`
}

// Status returns "running", "stopped" or "partial".
func (s projectSummary) Status() string {
	switch s.Running {
	case 0:
		return "stopped"
	case s.Containers:
		return "running"
	default:
		return "partial"
	}
}

// runList is the main logic function for the list command.
func runList(ctx context.Context, env *environment) error {
	// Step 1: Connect to Docker and verify the daemon is available.
	api, err := env.connect()
	if err != nil {
		return err
	}
	defer func() { _ = api.Close() }()

	if err := api.Ping(ctx); err != nil {
		return err
	}

	// Step 2: List every stackup-managed container.
	containers, err := docker.ManagedContainers(ctx, api)
	if err != nil {
		return err
	}
	VerboseLog("Found %d managed containers", len(containers))

	// Step 3: Summarize per project.
	summaries := summarizeProjects(docker.GroupContainersByProject(containers))

	if IsJSONOutput() {
		return printJSON(map[string]interface{}{"projects": summaries})
	}
	return printListTable(logging.Stdout(), summaries)
}

// summarizeProjects builds one summary per project, sorted by name.
func summarizeProjects(groups map[string][]model.ContainerInfo) []projectSummary {
	summaries := make([]projectSummary, 0, len(groups))
	for name, containers := range groups {
		s := projectSummary{Name: name, Containers: len(containers)}
		for _, c := range containers {
			if c.IsRunning() {
				s.Running++
			}
			if s.Type != "" {
				continue
			}
			project, err := docker.ParseLabels(c.Labels)
			if err != nil {
				VerboseLog("Warning: container %s: %v", c.ContainerName, err)
				continue
			}
			s.Type = project.Type
			s.PHPVersion = project.PHPVersion
			s.Ports = project.Ports
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})
	return summaries
}

// printListTable writes the project table.
//
//	NAME   TYPE     STATUS   CONTAINERS  PORTS
//	shop   laravel  running  5/5         8081,9000,3308,3309,6379
func printListTable(w io.Writer, summaries []projectSummary) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "No stackup projects found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tSTATUS\tCONTAINERS\tPORTS")
	for _, s := range summaries {
		typ := string(s.Type)
		if typ == "" {
			typ = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\n",
			s.Name, typ, s.Status(), s.Running, s.Containers, FormatPortsList(s.Ports))
	}
	return tw.Flush()
}

// FormatPortsList renders the non-zero host ports in service order
// (Nginx first, as it is the one opened in a browser), or "-" when none
// are recorded.
//
// Example:
//
//	{Nginx: 8081, PHP: 9000} → "8081,9000"
//	{}                       → "-"
func FormatPortsList(ports model.Ports) string {
	ordered := []int{ports.Nginx, ports.PHP, ports.MySQL, ports.MySQLTest, ports.Redis}

	parts := make([]string, 0, len(ordered))
	for _, p := range ordered {
		if p != 0 {
			parts = append(parts, strconv.Itoa(p))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
