package model

import (
	"fmt"
	"regexp"
	"strings"
)

// ProjectType identifies which framework starter is bootstrapped inside
// the app container after the environment comes up.
type ProjectType string

const (
	// ProjectLaravel runs composer create-project and the optional
	// authentication/testing installers.
	ProjectLaravel ProjectType = "laravel"

	// ProjectVue runs `npm create vue@latest` with default answers.
	ProjectVue ProjectType = "vue"

	// ProjectNuxt runs `npm create nuxt@latest` with default answers.
	ProjectNuxt ProjectType = "nuxt"
)

// ProjectTypes lists the supported starters in menu order. The menu shown
// to the operator is numbered from 1 in this order.
var ProjectTypes = []ProjectType{ProjectLaravel, ProjectVue, ProjectNuxt}

// String returns the string representation of ProjectType.
func (t ProjectType) String() string {
	return string(t)
}

// Title returns the display name used in menus and summaries.
func (t ProjectType) Title() string {
	switch t {
	case ProjectLaravel:
		return "Laravel"
	case ProjectVue:
		return "Vue"
	case ProjectNuxt:
		return "Nuxt"
	default:
		return string(t)
	}
}

// IsValid checks whether the ProjectType value is one of the supported starters.
func (t ProjectType) IsValid() bool {
	switch t {
	case ProjectLaravel, ProjectVue, ProjectNuxt:
		return true
	default:
		return false
	}
}

// ParseProjectType converts a string to a ProjectType (case-insensitive).
func ParseProjectType(s string) (ProjectType, error) {
	t := ProjectType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid project type: %q (valid: laravel, vue, nuxt)", s)
	}
	return t, nil
}

// PHPVersion is the tag of the php:<version>-fpm base image used for the
// app container.
type PHPVersion string

// DefaultPHPVersion is used for Vue and Nuxt projects, which never ask for
// a PHP version but still build the shared app image.
const DefaultPHPVersion PHPVersion = "8.2"

// PHPVersions lists the selectable versions in menu order.
var PHPVersions = []PHPVersion{"7.3", "7.4", "8.1", "8.2", "8.3"}

// String returns the string representation of PHPVersion.
func (v PHPVersion) String() string {
	return string(v)
}

// Major returns the major component of the version ("8.2" -> 8).
// Unparseable versions report 0.
func (v PHPVersion) Major() int {
	major := 0
	for _, r := range string(v) {
		if r < '0' || r > '9' {
			break
		}
		major = major*10 + int(r-'0')
	}
	return major
}

// CompatibilityWarnings returns the Laravel compatibility notes for the
// version. Versions 8.2 and 8.3 have no warnings.
func (v PHPVersion) CompatibilityWarnings() []string {
	switch v {
	case "8.1":
		return []string{
			"Warning: PHP 8.1",
			"  - Laravel 11+ requires PHP 8.2 or higher",
			"  - Laravel Breeze 2+ requires PHP 8.2 or higher",
			"  - Some packages may require PHP 8.2",
		}
	case "7.4":
		return []string{
			"Warning: PHP 7.4",
			"  - Laravel 9+ requires PHP 8.0 or higher",
			"  - Laravel 8.x will be used",
			"  - Many packages may have compatibility issues",
		}
	case "7.3":
		return []string{
			"Warning: PHP 7.3",
			"  - Laravel 8+ requires PHP 7.4 or higher",
			"  - Laravel 7.x will be used",
			"  - Many packages may have compatibility issues",
		}
	case "8.2", "8.3":
		return nil
	default:
		return []string{fmt.Sprintf("Warning: PHP version %s might have compatibility issues with Laravel", v)}
	}
}

// Service names a logical service whose host port is resolved at startup.
type Service string

const (
	ServicePHP       Service = "PHP"
	ServiceMySQL     Service = "MySQL"
	ServiceMySQLTest Service = "MySQL Test"
	ServiceRedis     Service = "Redis"
	ServiceNginx     Service = "Nginx"
)

// Ports holds the confirmed host port for every service.
type Ports struct {
	PHP       int `json:"php"`
	MySQL     int `json:"mysql"`
	MySQLTest int `json:"mysqlTest"`
	Redis     int `json:"redis"`
	Nginx     int `json:"nginx"`
}

// Set stores port under the field for service. Unknown services are ignored.
func (p *Ports) Set(service Service, port int) {
	switch service {
	case ServicePHP:
		p.PHP = port
	case ServiceMySQL:
		p.MySQL = port
	case ServiceMySQLTest:
		p.MySQLTest = port
	case ServiceRedis:
		p.Redis = port
	case ServiceNginx:
		p.Nginx = port
	}
}

// Get returns the port stored for service, or 0 if unknown.
func (p Ports) Get(service Service) int {
	switch service {
	case ServicePHP:
		return p.PHP
	case ServiceMySQL:
		return p.MySQL
	case ServiceMySQLTest:
		return p.MySQLTest
	case ServiceRedis:
		return p.Redis
	case ServiceNginx:
		return p.Nginx
	default:
		return 0
	}
}

// Project is the populated configuration produced by the interactive
// session. It is the single input to rendering, orchestration and the
// framework installers.
type Project struct {
	// Type selects the framework starter.
	Type ProjectType `json:"type"`

	// Name is used as COMPOSE_PROJECT_NAME and as the prefix of database
	// names and users.
	Name string `json:"name"`

	// PHPVersion selects the app image base. Always set; Vue/Nuxt use
	// DefaultPHPVersion.
	PHPVersion PHPVersion `json:"phpVersion"`

	// Ports holds the confirmed host ports.
	Ports Ports `json:"ports"`

	// Dir is the absolute project directory all artifacts are written to.
	Dir string `json:"dir"`
}

// DatabaseName returns the primary database name for the project.
func (p *Project) DatabaseName() string { return p.Name + "_db" }

// DatabaseUser returns the primary database user for the project.
func (p *Project) DatabaseUser() string { return p.Name + "_user" }

// TestDatabaseName returns the test database name for the project.
func (p *Project) TestDatabaseName() string { return p.Name + "_test_db" }

// TestDatabaseUser returns the test database user for the project.
func (p *Project) TestDatabaseUser() string { return p.Name + "_test_user" }

// AppURL returns the URL the nginx container is published on.
func (p *Project) AppURL() string {
	return fmt.Sprintf("http://localhost:%d", p.Ports.Nginx)
}

// NamePattern matches valid project names: lowercase letters, digits and
// hyphens.
var NamePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidateName checks if the given name is a valid project name.
func ValidateName(name string) error {
	if !NamePattern.MatchString(name) {
		return fmt.Errorf("project name must be lowercase, and can only contain letters, numbers, and hyphens")
	}
	return nil
}

// ExitCode defines the CLI exit codes. Scripts can rely on these to tell
// failure classes apart.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitInvalidConfig indicates the settings file could not be loaded
	// or failed validation.
	ExitInvalidConfig ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 3

	// ExitPortAllocationFailed indicates a port range was exhausted or two
	// services ended up on the same port.
	ExitPortAllocationFailed ExitCode = 4

	// ExitProvisionFailed indicates docker compose or a framework
	// installer command failed.
	ExitProvisionFailed ExitCode = 5

	// ExitNotReady indicates the app container did not become ready
	// within the wait policy.
	ExitNotReady ExitCode = 6

	// ExitUserCancelled indicates the user cancelled an interactive prompt.
	ExitUserCancelled ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// ContainerInfo holds the information about a single Docker container that
// belongs to a stackup environment. It decouples the rest of the
// application from the Docker SDK types.
type ContainerInfo struct {
	// ContainerID is the Docker container ID.
	ContainerID string `json:"containerId"`

	// ContainerName is the container name without the leading "/".
	ContainerName string `json:"containerName"`

	// ServiceName is the Compose service name (e.g., "app", "mysql").
	ServiceName string `json:"serviceName"`

	// Status is the Docker container state ("running", "exited", ...).
	Status string `json:"status"`

	// Labels holds all Docker labels on the container.
	Labels map[string]string `json:"labels,omitempty"`
}

// IsRunning reports whether the container state is "running".
func (c ContainerInfo) IsRunning() bool {
	return c.Status == "running"
}

// AuthKind selects the Laravel authentication starter kit.
type AuthKind string

const (
	// AuthNone skips authentication scaffolding.
	AuthNone AuthKind = "none"

	// AuthBreeze installs Laravel Breeze.
	AuthBreeze AuthKind = "breeze"

	// AuthJetstream installs Laravel Jetstream.
	AuthJetstream AuthKind = "jetstream"
)

// TestFramework selects the Laravel test runner.
type TestFramework string

const (
	// TestPHPUnit keeps the PHPUnit setup Laravel ships with.
	TestPHPUnit TestFramework = "phpunit"

	// TestPest installs Pest.
	TestPest TestFramework = "pest"
)

// BreezeStacks lists the Breeze stacks in menu order.
var BreezeStacks = []string{"blade", "livewire", "react", "vue", "api"}

// JetstreamStacks lists the Jetstream stacks in menu order.
var JetstreamStacks = []string{"livewire", "inertia"}

// LaravelOptions holds the post-skeleton choices for a Laravel project.
type LaravelOptions struct {
	Auth AuthKind `json:"auth"`

	// BreezeStack is one of BreezeStacks when Auth is AuthBreeze.
	BreezeStack string `json:"breezeStack,omitempty"`

	// DarkMode adds --dark to breeze:install. Only offered on PHP 8+.
	DarkMode bool `json:"darkMode,omitempty"`

	// JetstreamStack is one of JetstreamStacks when Auth is AuthJetstream.
	JetstreamStack string `json:"jetstreamStack,omitempty"`

	// Teams adds --teams to jetstream:install.
	Teams bool `json:"teams,omitempty"`

	Testing TestFramework `json:"testing"`
}

// DefaultLaravelOptions returns no authentication and PHPUnit.
func DefaultLaravelOptions() LaravelOptions {
	return LaravelOptions{Auth: AuthNone, Testing: TestPHPUnit}
}
