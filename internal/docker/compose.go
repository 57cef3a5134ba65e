package docker

import (
	"context"
	"io"
)

// Compose runs docker compose against one project directory.
type Compose struct {
	runner Runner
	dir    string
	files  []string
}

// NewCompose creates a Compose for the project in dir. files are passed as
// -f flags in order; none means the compose default lookup.
func NewCompose(runner Runner, dir string, files ...string) *Compose {
	return &Compose{runner: runner, dir: dir, files: files}
}

// command builds "docker compose [-f file]... args...".
func (c *Compose) command(args ...string) Command {
	full := make([]string, 0, len(c.files)*2+len(args)+1)
	full = append(full, "compose")
	for _, f := range c.files {
		full = append(full, "-f", f)
	}
	full = append(full, args...)
	return Command{Dir: c.dir, Name: "docker", Args: full}
}

// Down stops and removes the project's containers and networks.
func (c *Compose) Down(ctx context.Context) error {
	return c.runner.Run(ctx, c.command("down"))
}

// Up builds the images and starts every service in the background.
func (c *Compose) Up(ctx context.Context) error {
	return c.runner.Run(ctx, c.command("up", "-d", "--build"))
}

// Exec runs script with bash inside the running service container. No
// TTY is allocated, so it also works when stdin is a pipe.
func (c *Compose) Exec(ctx context.Context, service, script string) error {
	return c.runner.Run(ctx, c.command("exec", "-T", service, "bash", "-c", script))
}

// ExecWithInput is Exec with stdin fed from input, for tools that ask
// their own questions.
func (c *Compose) ExecWithInput(ctx context.Context, service, script string, input io.Reader) error {
	cmd := c.command("exec", "-T", service, "bash", "-c", script)
	cmd.Stdin = input
	return c.runner.Run(ctx, cmd)
}
