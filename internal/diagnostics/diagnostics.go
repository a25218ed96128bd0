// Package diagnostics formats binary load/install outcomes for CLI output,
// following the teacher CLI's color-gated formatter pattern.
package diagnostics

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Formatter formats load/install outcomes for CLI output.
type Formatter struct {
	// UseColor enables colored output for terminals.
	UseColor bool

	successColor *color.Color
	errorColor   *color.Color
	dryRunColor  *color.Color
}

// NewFormatter creates a new diagnostics formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{
		UseColor:     useColor,
		successColor: color.New(color.FgGreen),
		errorColor:   color.New(color.FgRed, color.Bold),
		dryRunColor:  color.New(color.FgCyan),
	}
}

// formatMessage applies severity-based coloring to message, toggling
// color.NoColor only for the duration of this call so it never leaks to
// unrelated color.Color users.
func (f *Formatter) formatMessage(c *color.Color, message string) string {
	if !f.UseColor {
		return message
	}
	oldNoColor := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = oldNoColor }()
	return c.Sprint(message)
}

// PrintLoaded reports a binary that was successfully loaded or installed.
func (f *Formatter) PrintLoaded(w io.Writer, name, providerName, abspath, version string) {
	msg := fmt.Sprintf("%s -> %s (%s, %s)", name, abspath, providerName, version)
	fmt.Fprintln(w, f.formatMessage(f.successColor, msg)) //nolint:errcheck
}

// PrintFailed reports a binary that no provider could load or install.
func (f *Formatter) PrintFailed(w io.Writer, name string, err error) {
	msg := fmt.Sprintf("%s: %v", name, err)
	fmt.Fprintln(w, f.formatMessage(f.errorColor, msg)) //nolint:errcheck
}

// PrintDryRun reports a dry-run outcome. The literal "DRY RUN" prefix is
// also emitted by provider.BaseProvider.Exec itself; this is a CLI-level
// summary line for a dry-run install. The cmd/binprovider commands do not
// call it.
func (f *Formatter) PrintDryRun(w io.Writer, name string) {
	msg := fmt.Sprintf("DRY RUN: %s not installed", name)
	fmt.Fprintln(w, f.formatMessage(f.dryRunColor, msg)) //nolint:errcheck
}

// Summarize renders a one-line summary of how many binaries resolved versus
// failed, in the style of the teacher's SummarizeDiagnostics.
func Summarize(resolved, failed int) string {
	if failed == 0 {
		return fmt.Sprintf("%d binar(ies) resolved", resolved)
	}
	return fmt.Sprintf("%d resolved, %d failed", resolved, failed)
}
