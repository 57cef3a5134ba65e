package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Command is one external process invocation.
type Command struct {
	// Dir is the working directory; docker compose resolves relative paths
	// in the compose file against it.
	Dir string

	// Name is the executable, e.g. "docker".
	Name string

	// Args are passed verbatim, without a shell.
	Args []string

	// Stdin feeds the process; nil means no input.
	Stdin io.Reader
}

// String renders the command as a copy-pasteable shell line.
func (c Command) String() string {
	return shellquote.Join(append([]string{c.Name}, c.Args...)...)
}

// Runner executes commands. ExecRunner is the real implementation; tests
// record commands instead.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExitError reports a non-zero exit of a command.
type ExitError struct {
	Command Command
	Code    int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
}

// ExecRunner runs commands as child processes, streaming their output.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer

	// Echo, when set, receives "+ <command>" before each run.
	Echo io.Writer
}

// NewExecRunner returns an ExecRunner wired to the process streams.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	if r.Echo != nil {
		fmt.Fprintf(r.Echo, "+ %s\n", c)
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Command: c, Code: exitErr.ExitCode()}
	}
	return fmt.Errorf("failed to run %s: %w", c.Name, err)
}

// DryRunner prints commands instead of running them.
type DryRunner struct {
	Out io.Writer
}

// Run implements Runner.
func (r *DryRunner) Run(_ context.Context, c Command) error {
	line := c.String()
	if c.Stdin != nil {
		line += " <<EOF ... EOF"
	}
	fmt.Fprintf(r.Out, "+ %s\n", strings.TrimSpace(line))
	return nil
}
