package installer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shinji-kodama/stackup/internal/logging"
	"github.com/shinji-kodama/stackup/internal/model"
	"github.com/shinji-kodama/stackup/internal/render"
)

// Execer runs shell scripts inside a compose service. *docker.Compose
// satisfies it.
type Execer interface {
	Exec(ctx context.Context, service, script string) error
	ExecWithInput(ctx context.Context, service, script string, input io.Reader) error
}

// Installer creates the framework project inside the app container.
type Installer interface {
	Install(ctx context.Context, project *model.Project) error
}

// OptionsFunc supplies the Laravel options. It is called after the
// skeleton exists, so the questions follow the long-running composer step.
type OptionsFunc func(ctx context.Context, project *model.Project) (model.LaravelOptions, error)

// Deps are the collaborators shared by every installer.
type Deps struct {
	Exec      Execer
	Workspace *render.Workspace

	// LaravelOptions is required for Laravel projects.
	LaravelOptions OptionsFunc

	// DryRun skips local file edits that depend on container output.
	DryRun bool
}

// Error reports a failed installation step.
type Error struct {
	Step string
	Hint string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Step, e.Err)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// For returns the installer for project type t.
func For(t model.ProjectType, deps Deps) (Installer, error) {
	switch t {
	case model.ProjectLaravel:
		if deps.LaravelOptions == nil {
			return nil, fmt.Errorf("laravel installer requires an options source")
		}
		return &Laravel{deps: deps}, nil
	case model.ProjectVue:
		return &NodeStarter{deps: deps, Title: "Vue", Script: "npm create vue@latest .", Answers: 5}, nil
	case model.ProjectNuxt:
		return &NodeStarter{deps: deps, Title: "Nuxt", Script: "npm create nuxt@latest .", Answers: 4}, nil
	default:
		return nil, fmt.Errorf("no installer for project type %q", t)
	}
}

// NodeStarter runs an npm create starter, accepting its default answers.
type NodeStarter struct {
	deps Deps

	Title  string
	Script string

	// Answers is the number of prompts the starter asks; each receives an
	// empty line (the default).
	Answers int
}

// Install implements Installer.
func (n *NodeStarter) Install(ctx context.Context, project *model.Project) error {
	logging.UserInfo("Creating new %s project...", n.Title)

	input := strings.NewReader(strings.Repeat("\n", n.Answers))
	if err := n.deps.Exec.ExecWithInput(ctx, render.AppService, n.Script, input); err != nil {
		return &Error{Step: "create " + n.Title + " project", Hint: "check logs: docker compose logs app", Err: err}
	}

	logging.UserSuccess("%s project %s created successfully!", n.Title, project.Name)
	logging.UserInfo("Next steps:")
	logging.UserInfo("1. Install dependencies: docker compose exec app npm install")
	logging.UserInfo("2. Start development server: docker compose exec app npm run dev")
	return nil
}
