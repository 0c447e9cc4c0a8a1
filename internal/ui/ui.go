// Package ui renders indexing progress for the one-shot commands, either as a
// live bubbletea view on a terminal or as plain lines for pipes and CI.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/Aman-CERP/codesift/internal/index"
	"github.com/Aman-CERP/codesift/internal/output"
)

// Renderer displays the progress of one BuildIndex call.
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// UpdateProgress records a progress event. Safe for concurrent use.
	UpdateProgress(p index.Progress)

	// Complete shows the final counters.
	Complete(stats index.BuildStats, elapsed time.Duration)

	// Stop releases the terminal. It is safe to call more than once.
	Stop() error
}

// Config configures a renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
}

// ConfigOption modifies a Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain line output even on a terminal.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables colour in the live view.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// NewConfig creates a Config writing to out.
func NewConfig(out io.Writer, opts ...ConfigOption) Config {
	cfg := Config{Output: out}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewRenderer returns the live view for interactive terminals and the plain
// renderer for pipes, CI, or when plain output is forced.
func NewRenderer(cfg Config) Renderer {
	if cfg.ForcePlain || !output.IsTTY(cfg.Output) || DetectCI() {
		return NewPlainRenderer(cfg)
	}

	tui, err := NewTUIRenderer(cfg)
	if err != nil {
		return NewPlainRenderer(cfg)
	}
	return tui
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"} {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}

// phaseIcon returns the short tag used by the plain renderer.
func phaseIcon(p index.Phase) string {
	switch p {
	case index.PhaseScanning:
		return "SCAN"
	case index.PhaseReading:
		return "READ"
	default:
		return "???"
	}
}
