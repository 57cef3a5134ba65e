package installer

import (
	"context"

	"github.com/shinji-kodama/stackup/internal/logging"
	"github.com/shinji-kodama/stackup/internal/model"
	"github.com/shinji-kodama/stackup/internal/render"
)

// Scripts run to create and relocate the Laravel skeleton. Composer refuses
// to create a project in a non-empty directory, so it is created in temp/
// and moved up, hidden files included.
var skeletonScripts = []string{
	"composer create-project laravel/laravel temp --prefer-dist",
	"mv temp/* . 2>/dev/null || true",
	"mv temp/.[!.]* . 2>/dev/null || true",
	"rm -rf temp",
}

// Laravel installs a Laravel project with optional auth and Pest.
type Laravel struct {
	deps Deps
}

// Install implements Installer.
func (l *Laravel) Install(ctx context.Context, project *model.Project) error {
	logging.UserInfo("Creating new Laravel project...")

	// Step 1: Create the skeleton in temp/.
	if err := l.deps.Exec.Exec(ctx, render.AppService, skeletonScripts[0]); err != nil {
		return &Error{Step: "create Laravel project", Hint: "check logs: docker compose logs app", Err: err}
	}
	logging.UserInfo("Laravel app created in temp folder")

	// Step 2: Move it to the project root.
	for _, script := range skeletonScripts[1:] {
		if err := l.deps.Exec.Exec(ctx, render.AppService, script); err != nil {
			return &Error{Step: "move Laravel app to project root", Err: err}
		}
	}
	logging.UserInfo("Laravel app moved to project root")

	// Step 3: Ask for the starter kit and test framework.
	opts, err := l.deps.LaravelOptions(ctx, project)
	if err != nil {
		return err
	}
	logging.WithFields(map[string]interface{}{
		"auth":    opts.Auth,
		"testing": opts.Testing,
	}).Debug("laravel options")

	// Step 4: Install the selected features.
	for _, script := range OptionScripts(opts) {
		if err := l.deps.Exec.Exec(ctx, render.AppService, script); err != nil {
			return &Error{Step: "install Laravel features", Err: err}
		}
	}

	// Step 5: Point .env at the provisioned services.
	if l.deps.DryRun {
		logging.UserInfo("Dry run: skipping .env and .gitignore updates")
	} else {
		if err := render.ConfigureLaravel(l.deps.Workspace, project); err != nil {
			return &Error{Step: "configure Laravel .env", Err: err}
		}
		logging.UserInfo("Added custom entries to .gitignore")
	}

	logging.UserSuccess("Laravel project created and configured successfully!")
	logging.Header("Environment configured with:")
	logging.UserInfo("- App URL: %s", project.AppURL())
	logging.UserInfo("- Database: %s", project.DatabaseName())
	logging.UserInfo("- DB User: %s", project.DatabaseUser())
	logging.UserInfo("- Redis Port: %d", project.Ports.Redis)
	return nil
}

// OptionScripts returns the container scripts for opts, in run order.
func OptionScripts(opts model.LaravelOptions) []string {
	var scripts []string

	switch opts.Auth {
	case model.AuthBreeze:
		install := "php artisan breeze:install " + opts.BreezeStack
		if opts.DarkMode {
			install += " --dark"
		}
		scripts = append(scripts, "composer require laravel/breeze --dev", install)
		// The API stack has no frontend to build.
		if opts.BreezeStack != "api" {
			scripts = append(scripts, "npm install && npm run build")
		}

	case model.AuthJetstream:
		install := "php artisan jetstream:install " + opts.JetstreamStack
		if opts.Teams {
			install += " --teams"
		}
		scripts = append(scripts, "composer require laravel/jetstream", install, "npm install && npm run build")
	}

	if opts.Testing == model.TestPest {
		scripts = append(scripts, "composer require pestphp/pest --dev --with-all-dependencies && php artisan pest:install")
	}
	return scripts
}
