package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/tensorflow/tfhub.dev/internal/domain/execution"
	"github.com/tensorflow/tfhub.dev/internal/domain/validation"
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

const ruleWidth = 80

// TableFormatter formats validation results as a human-readable report.
type TableFormatter struct {
	writer    io.Writer
	truncator execution.MessageTruncator
	styles    tableStyles
	verbose   bool
	maxWidth  int
}

type tableStyles struct {
	bold  lipgloss.Style
	muted lipgloss.Style
	pass  lipgloss.Style
	fail  lipgloss.Style
	warn  lipgloss.Style
	skip  lipgloss.Style
}

// NewTableFormatter creates a new table formatter. Colors are enabled when
// color is nil and w is a terminal.
func NewTableFormatter(w io.Writer, verbose bool, color *bool, maxWidth int) *TableFormatter {
	enabled := isTerminal(w)
	if color != nil {
		enabled = *color
	}
	return &TableFormatter{
		writer:    w,
		truncator: &execution.FirstLineTruncator{},
		styles:    newTableStyles(w, enabled),
		verbose:   verbose,
		maxWidth:  maxWidth,
	}
}

func newTableStyles(w io.Writer, color bool) tableStyles {
	profile := termenv.Ascii
	if color {
		profile = termenv.ANSI256
	}
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)

	return tableStyles{
		bold:  r.NewStyle().Bold(true),
		muted: r.NewStyle().Foreground(lipgloss.Color("245")),
		pass:  r.NewStyle().Foreground(lipgloss.Color("34")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("196")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("214")),
		skip:  r.NewStyle().Foreground(lipgloss.Color("39")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Format writes the validation result as a table.
//
//nolint:errcheck // best-effort terminal output
func (f *TableFormatter) Format(result *execution.ValidationResult) error {
	rule := f.styles.muted.Render(strings.Repeat("─", ruleWidth))

	fmt.Fprintln(f.writer, rule)
	fmt.Fprintf(f.writer, "Docs: %s\n", f.styles.bold.Render(result.DocsDir))
	fmt.Fprintf(f.writer, "Executed: %s\n", result.StartTime.Format(time.RFC3339))
	fmt.Fprintf(f.writer, "Duration: %s\n", result.Duration.Round(time.Millisecond))
	if result.SmokeTested {
		fmt.Fprintln(f.writer, "Smoke test: enabled")
	}
	fmt.Fprintln(f.writer)

	if len(result.Files) == 0 {
		fmt.Fprintln(f.writer, "No documents validated.")
		return nil
	}

	shown := 0
	for _, fr := range result.Files {
		if fr.Status == values.StatusPass && !f.verbose {
			continue
		}
		if shown == 0 {
			fmt.Fprintln(f.writer, f.styles.bold.Render("Documents:"))
			fmt.Fprintln(f.writer, rule)
		}
		f.formatFile(fr)
		shown++
	}
	if shown > 0 {
		fmt.Fprintln(f.writer, rule)
		fmt.Fprintln(f.writer)
	}

	f.formatSummary(result.Summary)
	return nil
}

//nolint:errcheck
func (f *TableFormatter) formatFile(fr execution.FileResult) {
	symbol, style := f.statusInfo(fr.Status)
	fmt.Fprintf(f.writer, "%s %s", style.Render(symbol), fr.Path)
	if fr.HandleID != "" {
		fmt.Fprintf(f.writer, " %s", f.styles.muted.Render("("+fr.HandleID+")"))
	}
	fmt.Fprintln(f.writer)

	switch {
	case fr.Status == values.StatusSkipped && fr.SkipReason != "":
		fmt.Fprintf(f.writer, "  %s\n", f.styles.muted.Render(fr.SkipReason))
	case fr.Message != "":
		msg, _ := f.truncator.Truncate(fr.Message, f.maxWidth)
		if fr.ErrorKind != "" {
			fmt.Fprintf(f.writer, "  %s ", style.Render("["+string(fr.ErrorKind)+"]"))
		} else {
			fmt.Fprint(f.writer, "  ")
		}
		fmt.Fprintln(f.writer, indentContinuation(msg, "    "))
	}
}

//nolint:errcheck
func (f *TableFormatter) formatSummary(s execution.ResultSummary) {
	fmt.Fprintln(f.writer, f.styles.bold.Render("Summary:"))
	fmt.Fprintf(f.writer, "  Total:   %d\n", s.Total)
	fmt.Fprintf(f.writer, "  %s  %d\n", f.styles.pass.Render("Passed:"), s.Passed)
	if s.Failed > 0 {
		fmt.Fprintf(f.writer, "  %s  %d\n", f.styles.fail.Render("Failed:"), s.Failed)
	}
	if s.Errored > 0 {
		fmt.Fprintf(f.writer, "  %s  %d\n", f.styles.warn.Render("Errors:"), s.Errored)
	}
	if s.Skipped > 0 {
		fmt.Fprintf(f.writer, "  %s %d\n", f.styles.skip.Render("Skipped:"), s.Skipped)
	}

	if len(s.ErrorsByKind) == 0 {
		return
	}
	kinds := make([]validation.Kind, 0, len(s.ErrorsByKind))
	for k := range s.ErrorsByKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	fmt.Fprintln(f.writer)
	fmt.Fprintln(f.writer, f.styles.bold.Render("Failures by kind:"))
	for _, k := range kinds {
		fmt.Fprintf(f.writer, "  %-22s %d\n", k, s.ErrorsByKind[k])
	}
}

func (f *TableFormatter) statusInfo(status values.Status) (string, lipgloss.Style) {
	switch status {
	case values.StatusPass:
		return "✓", f.styles.pass
	case values.StatusFail:
		return "✗", f.styles.fail
	case values.StatusError:
		return "⚠", f.styles.warn
	case values.StatusSkipped:
		return "⊘", f.styles.skip
	default:
		return "?", f.styles.muted
	}
}

func indentContinuation(msg, prefix string) string {
	return strings.ReplaceAll(msg, "\n", "\n"+prefix)
}
