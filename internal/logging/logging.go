package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide debug logger. Setup configures it once from the
// global CLI flags.
var Log = logrus.New()

// Verbose reports whether debug output is enabled.
var Verbose bool

// Setup configures Log. verbose lowers the level to debug; jsonFormat
// switches to the logrus JSON formatter so machine consumers of --json
// get structured diagnostics on w.
func Setup(verbose, jsonFormat bool, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	Verbose = verbose

	Log.SetOutput(w)
	if jsonFormat {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}

	if verbose {
		Log.SetLevel(logrus.DebugLevel)
	} else {
		Log.SetLevel(logrus.WarnLevel)
	}
}

// Debugf logs a formatted debug message.
func Debugf(format string, args ...interface{}) {
	Log.Debugf(format, args...)
}

// WithFields returns an entry carrying fields, for structured debug lines.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}
