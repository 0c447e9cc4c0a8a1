// Package index turns filesystem paths into documents of the ranking index and
// formats ranked documents into search matches.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	sifterrors "github.com/Aman-CERP/codesift/internal/errors"
	"github.com/Aman-CERP/codesift/internal/scanner"
	"github.com/Aman-CERP/codesift/internal/store"
)

// DefaultSnippetChars is the snippet budget used when none is configured.
const DefaultSnippetChars = 200

// Options configures a Collector.
type Options struct {
	// Filter decides eligibility inside walked directories (nil = defaults).
	Filter *scanner.Filter

	// MaxFileSize skips larger files (0 = scanner.DefaultMaxFileSize).
	MaxFileSize int64

	// ReadWorkers bounds concurrent file reads (0 = NumCPU).
	ReadWorkers int

	// SnippetChars is the snippet budget per match (0 = DefaultSnippetChars).
	SnippetChars int

	// ScorePrecision is the number of decimals scores are rounded to.
	ScorePrecision int

	// Progress, if set, receives BuildIndex progress. It is called from the
	// read workers, so it must be safe for concurrent use.
	Progress func(Progress)
}

// Phase is a step of BuildIndex.
type Phase int

const (
	// PhaseScanning is reported once per directory before it is walked.
	PhaseScanning Phase = iota
	// PhaseReading is reported after each candidate file is read.
	PhaseReading
)

// Progress describes how far BuildIndex has come.
type Progress struct {
	Phase Phase

	// Path is the directory being scanned or the file just read.
	Path string

	// Current and Total count the files read in the current batch.
	// Both are zero while scanning.
	Current int
	Total   int
}

// DefaultOptions returns the options used when no configuration is loaded.
func DefaultOptions() Options {
	return Options{
		Filter:         scanner.NewFilter(nil, nil),
		MaxFileSize:    scanner.DefaultMaxFileSize,
		ReadWorkers:    runtime.NumCPU(),
		SnippetChars:   DefaultSnippetChars,
		ScorePrecision: 4,
	}
}

// BuildStats reports the outcome of one BuildIndex call.
type BuildStats struct {
	Indexed    int `json:"indexed"`
	Skipped    int `json:"skipped"`
	Errors     int `json:"errors"`
	TotalFiles int `json:"total_files"`
}

// Match is one formatted search result.
type Match struct {
	Path    string  `json:"path"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
}

// Stats summarizes the collected corpus.
type Stats struct {
	Documents  int    `json:"documents"`
	Files      int    `json:"files"`
	Terms      int    `json:"terms"`
	Generation uint64 `json:"generation"`
}

// Collector feeds files into a store.Index and remembers which paths it has seen.
type Collector struct {
	index *store.Index
	opts  Options

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewCollector creates a collector over ix. Zero-valued options fall back to defaults.
func NewCollector(ix *store.Index, opts Options) *Collector {
	defaults := DefaultOptions()
	if opts.Filter == nil {
		opts.Filter = defaults.Filter
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = defaults.MaxFileSize
	}
	if opts.ReadWorkers <= 0 {
		opts.ReadWorkers = defaults.ReadWorkers
	}
	if opts.SnippetChars <= 0 {
		opts.SnippetChars = defaults.SnippetChars
	}
	if opts.ScorePrecision < 0 {
		opts.ScorePrecision = defaults.ScorePrecision
	}

	return &Collector{
		index: ix,
		opts:  opts,
		seen:  make(map[string]struct{}),
	}
}

// BuildIndex indexes every eligible file reachable from paths.
// Per-path failures are folded into the returned counters. Only context
// cancellation returns an error, together with the counters gathered so far.
func (c *Collector) BuildIndex(ctx context.Context, paths []string) (BuildStats, error) {
	start := time.Now()
	slog.Info("build_index_started", slog.Int("paths", len(paths)))

	var stats BuildStats
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			stats.TotalFiles = c.FileCount()
			return stats, err
		}

		files, ok := c.resolve(ctx, p, &stats)
		if !ok {
			continue
		}
		if err := c.ingest(ctx, files, &stats); err != nil {
			stats.TotalFiles = c.FileCount()
			return stats, err
		}
	}

	stats.TotalFiles = c.FileCount()
	slog.Info("build_index_complete",
		slog.Int("indexed", stats.Indexed),
		slog.Int("skipped", stats.Skipped),
		slog.Int("errors", stats.Errors),
		slog.Int("total_files", stats.TotalFiles),
		slog.Duration("duration", time.Since(start)))

	return stats, nil
}

// resolve expands one requested path into candidate files.
// ok is false when the path contributed an error instead.
func (c *Collector) resolve(ctx context.Context, p string, stats *BuildStats) ([]string, bool) {
	abs, err := filepath.Abs(p)
	if err != nil {
		c.pathFailed(p, "path_invalid", err, stats)
		return nil, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		event := "path_unresolvable"
		if errors.Is(err, os.ErrNotExist) {
			event = "path_not_found"
		}
		c.pathFailed(abs, event, err, stats)
		return nil, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		c.pathFailed(resolved, "path_stat_failed", err, stats)
		return nil, false
	}

	// An explicitly named file is indexed without eligibility checks.
	if !info.IsDir() {
		return []string{resolved}, true
	}

	c.report(Progress{Phase: PhaseScanning, Path: resolved})
	walked, err := scanner.Walk(ctx, resolved, c.opts.Filter)
	if err != nil {
		if ctx.Err() == nil {
			c.pathFailed(resolved, "walk_failed", err, stats)
		}
		return nil, false
	}
	stats.Skipped += walked.Unreadable
	slog.Debug("walk_complete",
		slog.String("root", resolved),
		slog.Int("candidates", len(walked.Files)),
		slog.Int("unreadable", walked.Unreadable))

	return walked.Files, true
}

func (c *Collector) report(p Progress) {
	if c.opts.Progress != nil {
		c.opts.Progress(p)
	}
}

func (c *Collector) pathFailed(path, event string, err error, stats *BuildStats) {
	stats.Errors++
	slog.Warn(event, slog.String("path", path), slog.String("error", err.Error()))
}

// ingest reads files on a bounded pool, then adds them to the index in input
// order so document ids stay deterministic.
func (c *Collector) ingest(ctx context.Context, files []string, stats *BuildStats) error {
	if len(files) == 0 {
		return nil
	}

	type readResult struct {
		text string
		err  error
	}
	results := make([]readResult, len(files))
	var read atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.ReadWorkers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := scanner.ReadText(path, c.opts.MaxFileSize)
			results[i] = readResult{text: text, err: err}
			c.report(Progress{
				Phase:   PhaseReading,
				Path:    path,
				Current: int(read.Add(1)),
				Total:   len(files),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("read files: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, path := range files {
		r := results[i]
		if r.err != nil {
			stats.Skipped++
			slog.Debug("file_skipped",
				slog.String("path", path),
				slog.String("reason", skipReason(r.err)))
			continue
		}

		c.index.Add(r.text, store.Metadata{
			Path: path,
			Name: filepath.Base(path),
			Ext:  filepath.Ext(path),
		})
		c.seen[path] = struct{}{}
		stats.Indexed++
	}
	return nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, scanner.ErrNotText):
		return sifterrors.ErrCodeFileNotText
	case errors.Is(err, scanner.ErrTooLarge):
		return sifterrors.ErrCodeFileTooLarge
	case errors.Is(err, os.ErrPermission):
		return sifterrors.ErrCodeFilePermission
	case errors.Is(err, os.ErrNotExist):
		return sifterrors.ErrCodeFileNotFound
	default:
		return sifterrors.ErrCodeIO
	}
}

// Search ranks the corpus against query and formats the top results.
// It fails with an index-not-built error until at least one file was indexed.
func (c *Collector) Search(ctx context.Context, query string, topK int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.FileCount() == 0 {
		return nil, sifterrors.IndexNotBuilt()
	}

	hits := c.index.Search(query, topK)
	matches := make([]Match, 0, len(hits))
	for _, h := range hits {
		matches = append(matches, Match{
			Path:    h.Doc.Meta.Path,
			Score:   roundTo(h.Score, c.opts.ScorePrecision),
			Snippet: Snippet(h.Doc.Text, c.opts.SnippetChars),
		})
	}

	slog.Debug("search_complete",
		slog.String("query", query),
		slog.Int("top_k", topK),
		slog.Int("results", len(matches)))
	return matches, nil
}

// FileCount returns the number of distinct paths indexed so far.
func (c *Collector) FileCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

// Stats reports corpus size and the index generation.
func (c *Collector) Stats() Stats {
	s := c.index.Stats()
	return Stats{
		Documents:  s.Documents,
		Files:      c.FileCount(),
		Terms:      s.Terms,
		Generation: s.Generation,
	}
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
