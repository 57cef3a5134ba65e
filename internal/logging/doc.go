// Package logging provides the two output channels of stackup.
//
// Debug logging goes through logrus and is controlled by --verbose and
// --json:
//
//	logging.Log.WithField("service", "app").Debug("waiting for container")
//
// Operator-facing messages are short lines with a styled status glyph:
//
//	logging.UserInfo("Starting Docker containers...")
//	logging.UserSuccess("Laravel project created successfully")
//	logging.UserWarning("Default port %d for %s is in use", 3306, "MySQL")
//	logging.UserError("Setup failed: %v", err)
//
// UserInfo and UserSuccess write to stdout; UserWarning and UserError
// write to stderr. SetUserOutput redirects both for tests.
package logging
