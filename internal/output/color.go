package output

import (
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorScheme provides color functions for different output elements
type ColorScheme struct {
	// ClusterName colors cluster names
	ClusterName func(format string, a ...interface{}) string

	// Success colors success status and green health
	Success func(format string, a ...interface{}) string

	// Error colors error messages and red health
	Error func(format string, a ...interface{}) string

	// Warning colors warning messages and yellow health
	Warning func(format string, a ...interface{}) string

	// Header colors table headers
	Header func(format string, a ...interface{}) string

	// Duration colors duration values
	Duration func(format string, a ...interface{}) string

	// Disabled indicates if colors are disabled
	Disabled bool
}

// NewColorScheme creates a new color scheme. Colors need a terminal writer;
// noColor and the NO_COLOR environment variable turn them off.
func NewColorScheme(w io.Writer, noColor bool) *ColorScheme {
	if noColor || os.Getenv("NO_COLOR") != "" || !isTTY(w) {
		plain := color.New().Sprintf
		return &ColorScheme{
			ClusterName: plain,
			Success:     plain,
			Error:       plain,
			Warning:     plain,
			Header:      plain,
			Duration:    plain,
			Disabled:    true,
		}
	}

	return &ColorScheme{
		ClusterName: color.New(color.FgCyan, color.Bold).Sprintf,
		Success:     color.New(color.FgGreen).Sprintf,
		Error:       color.New(color.FgRed, color.Bold).Sprintf,
		Warning:     color.New(color.FgYellow).Sprintf,
		Header:      color.New(color.FgWhite, color.Bold).Sprintf,
		Duration:    color.New(color.FgBlue).Sprintf,
	}
}

// isTTY checks if the writer is a TTY
func isTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// StatusColor returns an appropriate color function based on error status
func (cs *ColorScheme) StatusColor(hasError bool) func(format string, a ...interface{}) string {
	if hasError {
		return cs.Error
	}
	return cs.Success
}

// Health colors a cluster or index health value. Other values are returned unchanged.
func (cs *ColorScheme) Health(status string) string {
	if cs.Disabled {
		return status
	}
	switch strings.ToLower(status) {
	case "green":
		return cs.Success("%s", status)
	case "yellow":
		return cs.Warning("%s", status)
	case "red":
		return cs.Error("%s", status)
	default:
		return status
	}
}
