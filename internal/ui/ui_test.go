package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/codesift/internal/index"
)

func TestNewRenderer_FallsBackToPlain(t *testing.T) {
	tests := []struct {
		name string
		opts []ConfigOption
	}{
		{name: "buffer output"},
		{name: "forced plain", opts: []ConfigOption{WithForcePlain(true)}},
		{name: "no color", opts: []ConfigOption{WithNoColor(true)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(NewConfig(&bytes.Buffer{}, tt.opts...))
			assert.IsType(t, &PlainRenderer{}, r)
		})
	}
}

func TestNewTUIRenderer_RejectsNonTTY(t *testing.T) {
	r, err := NewTUIRenderer(NewConfig(&bytes.Buffer{}))
	assert.Error(t, err)
	assert.Nil(t, r)
}

func TestDetectCI(t *testing.T) {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"} {
		t.Setenv(v, "")
	}
	// t.Setenv cannot unset, so only the positive case is checked.
	assert.True(t, DetectCI())
}

func TestPlainRenderer_Lines(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))
	require.NoError(t, r.Start(context.Background()))

	r.UpdateProgress(index.Progress{Phase: index.PhaseScanning, Path: "/src"})
	r.UpdateProgress(index.Progress{Phase: index.PhaseReading, Path: "/src/a.rs", Current: 1, Total: 3})
	r.UpdateProgress(index.Progress{Phase: index.PhaseReading, Path: "/src/c.rs", Current: 3, Total: 3})
	r.UpdateProgress(index.Progress{Phase: index.PhaseReading, Path: "/src/b.rs", Current: 2, Total: 3})
	r.Complete(index.BuildStats{Indexed: 2, Skipped: 1, TotalFiles: 2}, time.Second)
	require.NoError(t, r.Stop())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"[SCAN] /src",
		"[READ] 3/3 files",
		"✓ Indexed 2 files (1 skipped, 0 errors, 2 total)",
	}, lines)
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestProgressModel_View(t *testing.T) {
	m := newProgressModel(true)

	m.Update(progressMsg{Phase: index.PhaseScanning, Path: "/repo"})
	assert.Contains(t, m.View(), "Scanning /repo")

	m.Update(progressMsg{Phase: index.PhaseReading, Path: "/repo/b.go", Current: 2, Total: 4})
	m.Update(progressMsg{Phase: index.PhaseReading, Path: "/repo/a.go", Current: 1, Total: 4})
	view := m.View()
	assert.Contains(t, view, "Reading")
	assert.Contains(t, view, "2/4 files", "count never goes backwards")
	assert.Contains(t, view, "/repo/a.go")

	m.Update(progressMsg{Phase: index.PhaseReading, Current: 1, Total: 1})
	assert.Contains(t, m.View(), "1/1 files", "a new batch resets the count")
}

func TestProgressModel_Complete(t *testing.T) {
	m := newProgressModel(true)

	_, cmd := m.Update(completeMsg{
		stats:   index.BuildStats{Indexed: 5, Errors: 1, TotalFiles: 5},
		elapsed: 1500 * time.Millisecond,
	})
	require.NotNil(t, cmd)
	assert.Equal(t, "✓ Indexed 5 files (0 skipped, 1 errors, 5 total) in 1.5s\n", m.View())
}

func TestProgressModel_StopClearsView(t *testing.T) {
	m := newProgressModel(true)
	m.Update(progressMsg{Phase: index.PhaseScanning, Path: "/repo"})

	_, cmd := m.Update(stopMsg{})
	require.NotNil(t, cmd)
	assert.Empty(t, m.View())
}
