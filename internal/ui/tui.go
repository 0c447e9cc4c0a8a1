package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/Aman-CERP/codesift/internal/index"
	"github.com/Aman-CERP/codesift/internal/output"
)

// TUIRenderer draws a spinner and a progress bar with bubbletea.
//
// The program reads no input and installs no signal handler, so Ctrl+C still
// reaches the command's own signal context.
type TUIRenderer struct {
	mu      sync.Mutex
	cfg     Config
	model   *progressModel
	program *tea.Program
	done    chan struct{}
}

// NewTUIRenderer creates a live renderer. It fails when the output is not a terminal.
func NewTUIRenderer(cfg Config) (*TUIRenderer, error) {
	if !output.IsTTY(cfg.Output) {
		return nil, errors.New("output is not a TTY")
	}
	return &TUIRenderer{
		cfg:   cfg,
		model: newProgressModel(cfg.NoColor || output.DetectNoColor()),
		done:  make(chan struct{}),
	}, nil
}

// Start implements Renderer.
func (r *TUIRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program != nil {
		return nil
	}

	r.program = tea.NewProgram(r.model,
		tea.WithContext(ctx),
		tea.WithOutput(r.cfg.Output),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	go func() {
		defer close(r.done)
		if _, err := r.program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			slog.Debug("progress_view_failed", slog.String("error", err.Error()))
		}
	}()
	return nil
}

// UpdateProgress implements Renderer.
func (r *TUIRenderer) UpdateProgress(p index.Progress) {
	if prog := r.running(); prog != nil {
		prog.Send(progressMsg(p))
	}
}

// Complete implements Renderer.
func (r *TUIRenderer) Complete(stats index.BuildStats, elapsed time.Duration) {
	if prog := r.running(); prog != nil {
		prog.Send(completeMsg{stats: stats, elapsed: elapsed})
	}
}

// Stop implements Renderer.
func (r *TUIRenderer) Stop() error {
	prog := r.running()
	if prog == nil {
		return nil
	}

	prog.Send(stopMsg{})
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		prog.Kill()
	}
	return nil
}

func (r *TUIRenderer) running() *tea.Program {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.program
}

var _ Renderer = (*TUIRenderer)(nil)

type progressMsg index.Progress

type completeMsg struct {
	stats   index.BuildStats
	elapsed time.Duration
}

type stopMsg struct{}

type viewStyles struct {
	active lipgloss.Style
	dim    lipgloss.Style
	done   lipgloss.Style
}

// progressModel is the bubbletea model behind TUIRenderer.
type progressModel struct {
	spinner spinner.Model
	bar     progress.Model
	styles  viewStyles

	phase   index.Phase
	path    string
	current int
	total   int

	complete bool
	stopped  bool
	stats    index.BuildStats
	elapsed  time.Duration
}

func newProgressModel(noColor bool) *progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	styles := viewStyles{
		active: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(output.ColorLime)),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color(output.ColorGray)),
		done:   lipgloss.NewStyle().Foreground(lipgloss.Color(output.ColorLime)),
	}
	barOpts := []progress.Option{
		progress.WithSolidFill(output.ColorLime),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	}
	if noColor {
		styles = viewStyles{active: lipgloss.NewStyle(), dim: lipgloss.NewStyle(), done: lipgloss.NewStyle()}
		barOpts[0] = progress.WithColorProfile(termenv.Ascii)
	} else {
		s.Style = styles.active
	}

	return &progressModel{
		spinner: s,
		bar:     progress.New(barOpts...),
		styles:  styles,
	}
}

// Init implements tea.Model.
func (m *progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-30, 10), 60)

	case progressMsg:
		m.apply(index.Progress(msg))

	case completeMsg:
		m.complete = true
		m.stats = msg.stats
		m.elapsed = msg.elapsed
		return m, tea.Quit

	case stopMsg:
		m.stopped = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// apply folds p into the model. Reads finish out of order, so the count only grows.
func (m *progressModel) apply(p index.Progress) {
	if p.Phase != m.phase || p.Total != m.total {
		m.phase = p.Phase
		m.total = p.Total
		m.current = 0
	}
	m.path = p.Path
	if p.Current > m.current {
		m.current = p.Current
	}
}

// View implements tea.Model.
func (m *progressModel) View() string {
	if m.complete {
		return fmt.Sprintf("%s Indexed %d files (%d skipped, %d errors, %d total) in %s\n",
			m.styles.done.Render("✓"),
			m.stats.Indexed, m.stats.Skipped, m.stats.Errors, m.stats.TotalFiles,
			m.elapsed.Round(time.Millisecond))
	}
	if m.stopped {
		return ""
	}

	var b strings.Builder
	switch m.phase {
	case index.PhaseScanning:
		fmt.Fprintf(&b, "%s %s %s\n", m.spinner.View(), m.styles.active.Render("Scanning"), m.path)
	case index.PhaseReading:
		percent := 0.0
		if m.total > 0 {
			percent = float64(m.current) / float64(m.total)
		}
		fmt.Fprintf(&b, "%s %s %s  %d/%d files\n",
			m.spinner.View(), m.styles.active.Render("Reading"), m.bar.ViewAs(percent), m.current, m.total)
		if m.path != "" {
			fmt.Fprintf(&b, "  %s\n", m.styles.dim.Render(m.path))
		}
	}
	return b.String()
}
