// Package installer drives the framework starters inside the running app
// container.
//
// Each project type has an Installer. All commands run through an Execer
// (docker compose exec), so tests can record the exact scripts:
//
//	laravel  composer create-project into temp/, move up, optional
//	         Breeze or Jetstream, optional Pest, then .env/.gitignore edits
//	vue      npm create vue@latest . with default answers
//	nuxt     npm create nuxt@latest . with default answers
package installer
