// Package output provides consistent CLI output formatting for search matches,
// symbol reports and index statistics.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/Aman-CERP/codesift/internal/index"
	"github.com/Aman-CERP/codesift/internal/symbols"
)

// Color palette.
const (
	ColorLime   = "154"
	ColorGray   = "245"
	ColorRed    = "196"
	ColorYellow = "220"
)

type styles struct {
	header  lipgloss.Style
	path    lipgloss.Style
	score   lipgloss.Style
	label   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		path:    lipgloss.NewStyle().Bold(true),
		score:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
	}
}

// Writer provides formatted output for CLI.
type Writer struct {
	out      io.Writer
	useColor bool
	styles   styles
}

// New creates a Writer that colours output only when out is a terminal
// and NO_COLOR is unset.
func New(out io.Writer) *Writer {
	return NewWithColor(out, IsTTY(out) && !DetectNoColor())
}

// NewWithColor creates a Writer with colour explicitly on or off.
func NewWithColor(out io.Writer, useColor bool) *Writer {
	return &Writer{
		out:      out,
		useColor: useColor,
		styles:   defaultStyles(),
	}
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DetectNoColor checks if the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

func (w *Writer) render(style lipgloss.Style, s string) string {
	if !w.useColor {
		return s
	}
	return style.Render(s)
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status(w.render(w.styles.success, "✓"), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.render(w.styles.warning, "!"), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.render(w.styles.err, "✗"), msg)
}

// JSON writes v as indented JSON followed by a newline.
func (w *Writer) JSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// BuildStats prints the counters of one indexing pass.
func (w *Writer) BuildStats(stats index.BuildStats) {
	w.Successf("Indexed %d files (%d skipped, %d errors, %d total)",
		stats.Indexed, stats.Skipped, stats.Errors, stats.TotalFiles)
}

// Matches prints ranked search matches, one block per match.
func (w *Writer) Matches(query string, matches []index.Match) {
	if len(matches) == 0 {
		w.Warningf("No matches for %q", query)
		return
	}

	_, _ = fmt.Fprintln(w.out, w.render(w.styles.header, fmt.Sprintf("%d matches for %q", len(matches), query)))
	for i, m := range matches {
		_, _ = fmt.Fprintf(w.out, "\n%2d. %s  %s\n",
			i+1,
			w.render(w.styles.path, m.Path),
			w.render(w.styles.score, fmt.Sprintf("%.4f", m.Score)))
		if m.Snippet != "" {
			_, _ = fmt.Fprintf(w.out, "    %s\n", m.Snippet)
		}
	}
}

// Analysis prints the symbols found in one file, skipping empty buckets.
func (w *Writer) Analysis(path string, result symbols.Result) {
	header := path
	if result.Language != "" {
		header = fmt.Sprintf("%s (%s)", path, result.Language)
	}
	_, _ = fmt.Fprintln(w.out, w.render(w.styles.header, header))
	_, _ = fmt.Fprintf(w.out, "%s %d  %s %d\n",
		w.render(w.styles.label, "lines:"), result.LineCount,
		w.render(w.styles.label, "chars:"), result.CharCount)

	found := 0
	for _, c := range symbols.Categories {
		names := result.Symbols.Get(c)
		if len(names) == 0 {
			continue
		}
		found += len(names)
		_, _ = fmt.Fprintf(w.out, "%s %s\n",
			w.render(w.styles.label, fmt.Sprintf("%-10s", string(c)+":")),
			strings.Join(names, ", "))
	}
	if found == 0 {
		_, _ = fmt.Fprintln(w.out, w.render(w.styles.label, "no symbols found"))
	}
}
