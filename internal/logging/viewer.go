package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// LogEntry represents a parsed JSON log line.
type LogEntry struct {
	Time    time.Time
	Level   string
	Msg     string
	Attrs   map[string]any
	Raw     string
	IsValid bool
}

// ViewerConfig configures the log viewer.
type ViewerConfig struct {
	Level   string         // Filter by minimum level (debug, info, warn, error)
	Pattern *regexp.Regexp // Filter by pattern on the raw line
	NoColor bool
}

// Viewer tails and follows codesift log files.
type Viewer struct {
	config ViewerConfig
	out    io.Writer
}

var levelStyles = map[string]lipgloss.Style{
	"debug": lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	"info":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	"warn":  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	"error": lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
}

// NewViewer creates a new log viewer.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	return &Viewer{config: cfg, out: out}
}

// Tail returns the matching entries among the last n lines of the file at path.
func (v *Viewer) Tail(path string, n int) ([]LogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Ring of the last n lines; log lines can be long.
	lines := make([]string, 0, n)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if n <= 0 {
			continue
		}
		if len(lines) == n {
			lines = lines[1:]
		}
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var entries []LogEntry
	for _, line := range lines {
		entry := v.parseLine(line)
		if v.matchesFilter(entry) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Follow sends entries appended to the file at path until ctx is cancelled.
func (v *Viewer) Follow(ctx context.Context, path string, entries chan<- LogEntry) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	reader := bufio.NewReader(file)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var partial string
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		for {
			chunk, err := reader.ReadString('\n')
			partial += chunk
			if err != nil {
				break
			}

			line := strings.TrimSuffix(partial, "\n")
			partial = ""
			if line == "" {
				continue
			}

			entry := v.parseLine(line)
			if !v.matchesFilter(entry) {
				continue
			}
			select {
			case entries <- entry:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// FormatEntry formats a log entry for display. Attributes are sorted by key.
func (v *Viewer) FormatEntry(entry LogEntry) string {
	if !entry.IsValid {
		return entry.Raw
	}

	keys := make([]string, 0, len(entry.Attrs))
	for k := range entry.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(entry.Time.Format("15:04:05.000"))
	sb.WriteString(" ")
	sb.WriteString(v.formatLevel(entry.Level))
	sb.WriteString(" ")
	sb.WriteString(entry.Msg)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf(" %s=%v", k, entry.Attrs[k]))
	}
	return sb.String()
}

// Print writes entries to the output, one per line.
func (v *Viewer) Print(entries []LogEntry) {
	for _, entry := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(entry))
	}
}

// parseLine parses a slog JSON line. Non-JSON lines are kept raw.
func (v *Viewer) parseLine(line string) LogEntry {
	entry := LogEntry{Raw: line}

	var data map[string]any
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return entry
	}
	entry.IsValid = true

	if t, ok := data["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			entry.Time = parsed
		}
	}
	if l, ok := data["level"].(string); ok {
		entry.Level = l
	}
	if m, ok := data["msg"].(string); ok {
		entry.Msg = m
	}

	entry.Attrs = make(map[string]any)
	for k, val := range data {
		if k != "time" && k != "level" && k != "msg" {
			entry.Attrs[k] = val
		}
	}
	return entry
}

func (v *Viewer) matchesFilter(entry LogEntry) bool {
	if v.config.Level != "" && entry.IsValid {
		if LevelFromString(entry.Level) < LevelFromString(v.config.Level) {
			return false
		}
	}
	if v.config.Pattern != nil && !v.config.Pattern.MatchString(entry.Raw) {
		return false
	}
	return true
}

// formatLevel pads the level to five columns and colours it unless disabled.
func (v *Viewer) formatLevel(level string) string {
	label := strings.ToUpper(level)
	if len(label) > 5 {
		label = label[:5]
	}
	label = fmt.Sprintf("%-5s", label)

	if v.config.NoColor {
		return label
	}
	style, ok := levelStyles[strings.ToLower(level)]
	if !ok {
		return label
	}
	return style.Render(label)
}
