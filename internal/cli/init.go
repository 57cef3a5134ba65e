package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shinji-kodama/stackup/internal/config"
	"github.com/shinji-kodama/stackup/internal/docker"
	"github.com/shinji-kodama/stackup/internal/installer"
	"github.com/shinji-kodama/stackup/internal/logging"
	"github.com/shinji-kodama/stackup/internal/model"
	"github.com/shinji-kodama/stackup/internal/port"
	"github.com/shinji-kodama/stackup/internal/prompt"
	"github.com/shinji-kodama/stackup/internal/render"
	"github.com/shinji-kodama/stackup/internal/session"
	"github.com/shinji-kodama/stackup/internal/wait"
)

// initFlags holds the flag values for the init command.
type initFlags struct {
	dir       string // --dir: project directory
	config    string // --config: settings file
	dryRun    bool   // --dry-run: print docker commands instead of running them
	noInstall bool   // --no-install: skip the framework installer
}

// dockerAPI is the Docker Engine surface init uses. *docker.Client
// satisfies it.
type dockerAPI interface {
	docker.ContainerLister
	Ping(ctx context.Context) error
	Close() error
}

// environment bundles the side-effecting collaborators of a command so
// tests can substitute them.
type environment struct {
	asker   prompt.Asker
	prober  port.Prober // nil selects a TCP scanner
	connect func() (dockerAPI, error)
	runner  docker.Runner
}

// defaultEnvironment wires the real terminal, network and Docker.
func defaultEnvironment() *environment {
	var asker prompt.Asker
	if term.IsTerminal(int(os.Stdin.Fd())) {
		asker = prompt.NewSurveyAsker(os.Stdin, os.Stdout, os.Stderr)
	} else {
		asker = prompt.NewLineAsker(os.Stdin, os.Stdout)
	}

	return &environment{
		asker: asker,
		connect: func() (dockerAPI, error) {
			return docker.NewClient()
		},
		runner: newExecRunner(),
	}
}

// newExecRunner returns the process runner; with --verbose every docker
// command is echoed to the log stream first.
func newExecRunner() *docker.ExecRunner {
	runner := docker.NewExecRunner()
	if verbose {
		runner.Echo = errOut
	}
	return runner
}

// NewInitCommand creates the "init" cobra command.
func NewInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a development environment and bootstrap a project",
		Long: `Interactively create a Docker development environment in the project
directory and bootstrap a Laravel, Vue or Nuxt project inside it.

The command:
  - Asks for the project type, name and (Laravel) PHP version
  - Resolves a free host port for PHP, MySQL, the test database, Redis and Nginx
  - Writes docker/php/Dockerfile, docker/nginx/default.conf, .env.setup and .env
  - Generates docker-compose.yml when the directory has none
  - Starts the containers and waits for the app container
  - Runs the framework installer inside the app container

Examples:
  stackup init
  stackup init --dir ~/dev/shop
  stackup init --config stackup.yaml --dry-run`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.Context(), flags, defaultEnvironment())
		},
	}

	cmd.Flags().StringVar(&flags.dir, "dir", ".", "Project directory")
	cmd.Flags().StringVar(&flags.config, "config", "", "Settings file (default: stackup.{yaml,yml,toml,json,jsonc} in --dir)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print docker commands instead of running them")
	cmd.Flags().BoolVar(&flags.noInstall, "no-install", false, "Start the containers but skip the framework installer")

	return cmd
}

// initResult is the JSON output of the init command.
type initResult struct {
	Project *model.Project `json:"project"`
	Files   *render.Result `json:"files"`
	DryRun  bool           `json:"dryRun"`
}

// runInit is the main logic function for the init command.
func runInit(ctx context.Context, flags *initFlags, env *environment) error {
	// Step 1: Resolve the project directory and load settings.
	dir, err := filepath.Abs(flags.dir)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to resolve project directory", err)
	}
	settings, err := config.Load(dir, flags.config)
	if err != nil {
		return err
	}
	if settings.Source != "" {
		VerboseLog("Loaded settings from %s", settings.Source)
	}

	ws, err := render.NewWorkspace(dir)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to open project directory", err)
	}

	// Step 2: Ask the questions and confirm every host port.
	prober := env.prober
	if prober == nil {
		prober = port.NewScanner(settings.ProbeTimeout)
	}
	sess := session.New(env.asker, port.NewResolver(prober, settings.Host), settings.Plan)

	project, err := sess.Run(ctx, dir)
	if err != nil {
		return err
	}
	logging.WithFields(map[string]interface{}{
		"project": project.Name,
		"type":    project.Type,
		"php":     project.PHPVersion,
	}).Debug("session complete")

	// Step 3: Write the environment files.
	files, err := render.WriteAll(ws, project, settings.ComposeFile, docker.BuildLabels(project))
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to write environment files", err)
	}
	for _, path := range files.Written {
		logging.UserSuccess("Created %s", path)
	}
	for _, path := range files.Skipped {
		logging.UserInfo("Keeping existing %s", path)
	}
	if verbose {
		printEnvSetup(ws)
	}

	// Step 4: Start the containers.
	compose := docker.NewCompose(env.runner, dir, settings.ComposeFile)
	if flags.dryRun {
		compose = docker.NewCompose(&docker.DryRunner{Out: logging.Stdout()}, dir, settings.ComposeFile)
	}
	if err := startContainers(ctx, flags, env, settings, compose, project); err != nil {
		return err
	}

	// Step 5: Bootstrap the framework.
	if !flags.noInstall {
		inst, err := installer.For(project.Type, installer.Deps{
			Exec:           compose,
			Workspace:      ws,
			LaravelOptions: sess.LaravelOptions,
			DryRun:         flags.dryRun,
		})
		if err != nil {
			return err
		}
		if err := inst.Install(ctx, project); err != nil {
			return err
		}
	}

	// Step 6: Output results.
	if IsJSONOutput() {
		return printJSON(initResult{Project: project, Files: files, DryRun: flags.dryRun})
	}
	logging.UserInfo("Note: The .env.setup file contains your Docker configuration")
	return nil
}

// startContainers replaces any running containers of the project and
// waits for the app container. Dry runs only print the compose commands.
func startContainers(ctx context.Context, flags *initFlags, env *environment, settings *config.Settings, compose *docker.Compose, project *model.Project) error {
	if flags.dryRun {
		logging.UserInfo("Starting Docker containers...")
		return compose.Up(ctx)
	}

	api, err := env.connect()
	if err != nil {
		return err
	}
	defer func() { _ = api.Close() }()

	if err := api.Ping(ctx); err != nil {
		return err
	}
	VerboseLog("Connected to Docker daemon")

	existing, err := docker.ProjectContainers(ctx, api, project.Name)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logging.UserInfo("Stopping existing containers...")
		if err := compose.Down(ctx); err != nil {
			return err
		}
	}

	logging.UserInfo("Starting Docker containers...")
	if err := compose.Up(ctx); err != nil {
		return err
	}
	logging.UserSuccess("Docker containers are starting up")
	logging.UserInfo("Project name: %s", project.Name)

	logging.UserInfo("Waiting for containers to be ready...")
	what := fmt.Sprintf("container %s-%s", project.Name, render.AppService)
	probe := func(ctx context.Context) (bool, error) {
		return docker.ServiceRunning(ctx, api, project.Name, render.AppService)
	}
	notify := func(attempt int, err error) {
		if !errors.Is(err, wait.ErrNotReady) {
			VerboseLog("readiness probe failed: %v", err)
		}
		logging.UserInfo("Attempt %d/%d: Container not ready yet...", attempt, settings.Wait.MaxAttempts)
	}
	if err := wait.Wait(ctx, settings.Wait, what, probe, notify); err != nil {
		return err
	}
	logging.UserSuccess("Containers are ready")
	return nil
}

// printEnvSetup echoes the generated .env.setup for debugging.
func printEnvSetup(ws *render.Workspace) {
	data, err := ws.ReadFile(render.EnvSetupPath)
	if err != nil {
		VerboseLog("failed to read %s: %v", render.EnvSetupPath, err)
		return
	}
	out := logging.Stdout()
	fmt.Fprintln(out, "--- .env.setup content ---")
	_, _ = io.WriteString(out, string(data))
	fmt.Fprintln(out, "--- end .env.setup content ---")
}
