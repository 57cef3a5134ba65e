// Package render produces the files of a stackup development environment.
//
// Artifacts are written relative to the project directory:
//
//	docker/php/Dockerfile       app image (php:<version>-fpm, composer, node)
//	docker/nginx/default.conf   web server forwarding PHP to app:9000
//	.env.setup                  ports and credentials, copied to .env
//	docker-compose.yml          generated only when absent
//
// Every path goes through a Workspace, which resolves it with
// filepath-securejoin so nothing can be written outside the project
// directory, even through symlinks.
package render
