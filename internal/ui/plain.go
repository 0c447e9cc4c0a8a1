package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Aman-CERP/codesift/internal/index"
	"github.com/Aman-CERP/codesift/internal/output"
)

// PlainRenderer prints one line per scanned directory and per finished batch.
type PlainRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{out: cfg.Output}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(context.Context) error {
	return nil
}

// UpdateProgress implements Renderer. Per-file reads are folded into a single
// line once the batch is complete.
func (r *PlainRenderer) UpdateProgress(p index.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case p.Phase == index.PhaseScanning:
		_, _ = fmt.Fprintf(r.out, "[%s] %s\n", phaseIcon(p.Phase), p.Path)
	case p.Total > 0 && p.Current == p.Total:
		_, _ = fmt.Fprintf(r.out, "[%s] %d/%d files\n", phaseIcon(p.Phase), p.Current, p.Total)
	}
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats index.BuildStats, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	output.NewWithColor(r.out, false).BuildStats(stats)
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}

var _ Renderer = (*PlainRenderer)(nil)
