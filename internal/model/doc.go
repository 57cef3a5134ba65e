// Package model defines the domain types and value objects for the
// stackup CLI.
//
// This package contains pure data structures with no external dependencies:
// the starter catalogue (ProjectType, PHPVersion), the per-service port
// table (Ports) and the populated Project that drives rendering,
// orchestration and installation.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
