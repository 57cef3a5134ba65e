package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Glyph styles.
var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	// headerStyle renders section titles such as the final summary.
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

// SetUserOutput redirects user-facing output. nil keeps the current writer.
func SetUserOutput(out, errOut io.Writer) {
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

// Stdout returns the writer UserInfo and UserSuccess print to.
func Stdout() io.Writer { return stdout }

// UserInfo prints an info message to stdout.
func UserInfo(format string, args ...interface{}) {
	fmt.Fprintf(stdout, "%s %s\n", infoStyle.Render("ℹ"), fmt.Sprintf(format, args...))
}

// UserSuccess prints a success message to stdout.
func UserSuccess(format string, args ...interface{}) {
	fmt.Fprintf(stdout, "%s %s\n", successStyle.Render("✓"), fmt.Sprintf(format, args...))
}

// UserWarning prints a warning message to stderr.
func UserWarning(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "%s %s\n", warningStyle.Render("⚠"), fmt.Sprintf(format, args...))
}

// UserError prints an error message to stderr.
func UserError(format string, args ...interface{}) {
	fmt.Fprintf(stderr, "%s %s\n", errorStyle.Render("✗"), fmt.Sprintf(format, args...))
}

// Header prints a styled section title to stdout.
func Header(title string) {
	fmt.Fprintln(stdout, headerStyle.Render(title))
}
