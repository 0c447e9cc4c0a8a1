package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sifterrors "github.com/Aman-CERP/codesift/internal/errors"
	"github.com/Aman-CERP/codesift/internal/scanner"
	"github.com/Aman-CERP/codesift/internal/store"
)

func newTestCollector(t *testing.T) (*Collector, *store.Index) {
	t.Helper()
	ix, err := store.NewIndex(store.Options{SplitIdentifiers: true})
	require.NoError(t, err)
	return NewCollector(ix, Options{ReadWorkers: 2}), ix
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		fullPath := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}
}

// realDir resolves symlinks in a temp dir so paths compare equal on every platform.
func realDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestCollector_OnlyDeniedDirectories(t *testing.T) {
	c, _ := newTestCollector(t)
	root := realDir(t)
	writeTree(t, root, map[string]string{
		"node_modules/lib/index.js": "module.exports = 1",
		".git/objects/readme.txt":   "git internals",
		"target/debug/main.rs":      "fn main() {}",
	})

	stats, err := c.BuildIndex(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, BuildStats{Indexed: 0, Skipped: 0, Errors: 0, TotalFiles: 0}, stats)
}

func TestCollector_MissingPathCountsErrorAndContinues(t *testing.T) {
	c, _ := newTestCollector(t)
	root := realDir(t)
	writeTree(t, root, map[string]string{
		"a.go": "package a\nfunc Alpha() {}",
		"b.py": "def beta():\n    pass",
	})

	stats, err := c.BuildIndex(context.Background(), []string{
		filepath.Join(root, "does-not-exist"),
		root,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 2, stats.Indexed)
	assert.Equal(t, 2, stats.TotalFiles)
}

func TestCollector_SearchBeforeBuild(t *testing.T) {
	c, _ := newTestCollector(t)

	_, err := c.Search(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sifterrors.IndexNotBuilt()))

	// A build that indexes nothing still leaves the index unbuilt.
	_, err = c.BuildIndex(context.Background(), []string{realDir(t)})
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "anything", 5)
	assert.True(t, errors.Is(err, sifterrors.IndexNotBuilt()))
}

func TestCollector_SkipsUndecodableAndOversizedFiles(t *testing.T) {
	ix, err := store.NewIndex(store.Options{})
	require.NoError(t, err)
	c := NewCollector(ix, Options{MaxFileSize: 64})

	root := realDir(t)
	writeTree(t, root, map[string]string{
		"ok.txt":    "plain words",
		"large.txt": strings.Repeat("x", 100),
	})
	require.NoError(t, os.WriteFile(filepath.Join(root, "blob.txt"), []byte{0xff, 0xfe, 0xfd}, 0o644))

	stats, err := c.BuildIndex(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Indexed)
	assert.Equal(t, 2, stats.Skipped)
	assert.Zero(t, stats.Errors)
	assert.Equal(t, 1, stats.TotalFiles)
}

func TestCollector_ExplicitFileBypassesEligibility(t *testing.T) {
	c, ix := newTestCollector(t)
	root := realDir(t)
	writeTree(t, root, map[string]string{
		".hidden.cfg":            "secret_setting = on",
		"node_modules/x/main.js": "function vendored() {}",
	})

	stats, err := c.BuildIndex(context.Background(), []string{
		filepath.Join(root, ".hidden.cfg"),
		filepath.Join(root, "node_modules", "x", "main.js"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Indexed)

	doc, ok := ix.Document(1)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, ".hidden.cfg"), doc.Meta.Path)
	assert.Equal(t, ".hidden.cfg", doc.Meta.Name)
	assert.Equal(t, ".cfg", doc.Meta.Ext)
}

func TestCollector_SymlinkedPathIsResolved(t *testing.T) {
	c, ix := newTestCollector(t)
	root := realDir(t)
	writeTree(t, root, map[string]string{"real/lib.rs": "fn lib() {}"})
	link := filepath.Join(root, "link")
	if err := os.Symlink(filepath.Join(root, "real"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	stats, err := c.BuildIndex(context.Background(), []string{link})
	require.NoError(t, err)
	require.Equal(t, 1, stats.Indexed)

	doc, ok := ix.Document(1)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "real", "lib.rs"), doc.Meta.Path)
}

func TestCollector_ReindexIsAdditiveButCountsDistinctFiles(t *testing.T) {
	c, ix := newTestCollector(t)
	root := realDir(t)
	writeTree(t, root, map[string]string{
		"a.go": "package a",
		"b.go": "package b",
	})

	first, err := c.BuildIndex(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Indexed)
	assert.Equal(t, 2, first.TotalFiles)

	second, err := c.BuildIndex(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Indexed)
	assert.Equal(t, 2, second.TotalFiles, "total counts distinct paths")
	assert.Equal(t, 4, ix.Len(), "documents are never replaced")

	stats := c.Stats()
	assert.Equal(t, 4, stats.Documents)
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, uint64(4), stats.Generation)
}

func TestCollector_DocumentIDsFollowWalkOrder(t *testing.T) {
	c, ix := newTestCollector(t)
	root := realDir(t)
	files := map[string]string{}
	for _, name := range []string{"a.go", "b.go", "c.go", "d.go", "e.go", "f.go"} {
		files["pkg/"+name] = "package " + strings.TrimSuffix(name, ".go")
	}
	writeTree(t, root, files)

	_, err := c.BuildIndex(context.Background(), []string{root})
	require.NoError(t, err)

	for i, name := range []string{"a.go", "b.go", "c.go", "d.go", "e.go", "f.go"} {
		doc, ok := ix.Document(i + 1)
		require.True(t, ok)
		assert.Equal(t, name, doc.Meta.Name)
	}
}

func TestCollector_SearchFormatsMatches(t *testing.T) {
	c, _ := newTestCollector(t)
	root := realDir(t)
	writeTree(t, root, map[string]string{
		"a.rs": "// parser entry\nfn parse_token() {}",
		"b.rs": "fn render_frame() {}",
	})

	_, err := c.BuildIndex(context.Background(), []string{root})
	require.NoError(t, err)

	matches, err := c.Search(context.Background(), "parse", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, filepath.Join(root, "a.rs"), matches[0].Path)
	assert.Greater(t, matches[0].Score, 0.0)
	assert.Equal(t, "fn parse_token() {}", matches[0].Snippet)

	// Scores are rounded to four decimals by default.
	assert.Equal(t, roundTo(matches[0].Score, 4), matches[0].Score)

	none, err := c.Search(context.Background(), "zebra", 5)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCollector_CustomFilter(t *testing.T) {
	ix, err := store.NewIndex(store.Options{})
	require.NoError(t, err)
	c := NewCollector(ix, Options{Filter: scanner.NewFilter([]string{".rb"}, []string{"generated"})})

	root := realDir(t)
	writeTree(t, root, map[string]string{
		"app.rb":           "def run; end",
		"generated/api.go": "package api",
		"main.go":          "package main",
	})

	stats, err := c.BuildIndex(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Indexed)
}

func TestCollector_CancelledContext(t *testing.T) {
	c, _ := newTestCollector(t)
	root := realDir(t)
	writeTree(t, root, map[string]string{"a.go": "package a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := c.BuildIndex(ctx, []string{root})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, stats.Indexed)

	_, err = c.Search(ctx, "a", 5)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSkipReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "not text", err: scanner.ErrNotText, want: sifterrors.ErrCodeFileNotText},
		{name: "too large", err: fmt.Errorf("read a.rs: %w", scanner.ErrTooLarge), want: sifterrors.ErrCodeFileTooLarge},
		{name: "permission", err: &os.PathError{Op: "open", Path: "a.rs", Err: os.ErrPermission}, want: sifterrors.ErrCodeFilePermission},
		{name: "vanished", err: &os.PathError{Op: "open", Path: "a.rs", Err: os.ErrNotExist}, want: sifterrors.ErrCodeFileNotFound},
		{name: "other os error", err: &os.PathError{Op: "read", Path: "a.rs", Err: errors.New("is a directory")}, want: sifterrors.ErrCodeIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, skipReason(tt.err))
		})
	}
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 0.5774, roundTo(0.57735026918962576, 4))
	assert.Equal(t, 0.58, roundTo(0.57735026918962576, 2))
	assert.Equal(t, 1.0, roundTo(0.99999, 4))
	assert.Equal(t, 0.0, roundTo(0.00004, 4))
}

func TestCollector_ReportsProgress(t *testing.T) {
	root := realDir(t)
	writeTree(t, root, map[string]string{
		"a.rs":      "fn alpha() {}",
		"src/b.py":  "def beta(): pass",
		"notes.bin": "not a source file",
	})
	single := filepath.Join(realDir(t), "c.go")
	writeTree(t, filepath.Dir(single), map[string]string{"c.go": "func gamma() {}"})

	var (
		mu     sync.Mutex
		events []Progress
	)
	ix, err := store.NewIndex(store.Options{})
	require.NoError(t, err)
	c := NewCollector(ix, Options{
		ReadWorkers: 2,
		Progress: func(p Progress) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, p)
		},
	})

	_, err = c.BuildIndex(context.Background(), []string{root, single})
	require.NoError(t, err)

	var scanned []string
	reads := map[int][]int{}
	for _, e := range events {
		switch e.Phase {
		case PhaseScanning:
			scanned = append(scanned, e.Path)
			assert.Zero(t, e.Total)
		case PhaseReading:
			reads[e.Total] = append(reads[e.Total], e.Current)
		}
	}

	assert.Equal(t, []string{root}, scanned, "explicit files are not scanned")
	assert.ElementsMatch(t, []int{1, 2}, reads[2], "directory batch")
	assert.Equal(t, []int{1}, reads[1], "explicit file batch")
}
