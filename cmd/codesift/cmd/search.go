package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	sifterrors "github.com/Aman-CERP/codesift/internal/errors"
	"github.com/Aman-CERP/codesift/internal/output"
	"github.com/Aman-CERP/codesift/internal/rpc"
	"github.com/Aman-CERP/codesift/internal/ui"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		paths  []string
		limit  int
		format string
		noTUI  bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Index paths and print the best matching files",
		Long: `Index the given paths in memory, then rank every indexed file against the
query and print the best matches with a short snippet.

The index lives only for this invocation; use 'codesift serve' to keep it.`,
		Example: `  # Search the current directory
  codesift search parse token

  # Search two trees, top 10, as JSON
  codesift search --path src --path lib --limit 10 --format json "render frame"`,
		Args:        cobra.MinimumNArgs(1),
		Annotations: interactive(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, a, strings.Join(args, " "), paths, limit, format, noTUI)
		},
	}

	cmd.Flags().StringSliceVarP(&paths, "path", "p", []string{"."}, "Files or directories to index (repeatable)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of matches (default from config)")
	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text or json")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Disable the live progress view, use plain text output")

	return cmd
}

func runSearch(cmd *cobra.Command, a *app, query string, paths []string, limit int, format string, noTUI bool) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if strings.TrimSpace(query) == "" {
		return sifterrors.MissingParam("query")
	}
	if limit < 0 {
		return sifterrors.InvalidParam("limit", "must be a positive integer")
	}
	if limit == 0 {
		limit = a.cfg.Search.DefaultLimit
	}
	if limit > a.cfg.Search.MaxLimit {
		limit = a.cfg.Search.MaxLimit
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	// Progress goes to stderr so stdout carries only results.
	renderer := ui.NewRenderer(ui.NewConfig(cmd.ErrOrStderr(), ui.WithForcePlain(noTUI)))
	if err := renderer.Start(ctx); err != nil {
		slog.Warn("progress_renderer_failed", slog.String("error", err.Error()))
	}
	defer func() { _ = renderer.Stop() }()

	collector, err := newCollector(a.cfg, renderer.UpdateProgress)
	if err != nil {
		return err
	}
	start := time.Now()
	stats, err := collector.BuildIndex(ctx, paths)
	if err != nil {
		return sifterrors.New(sifterrors.ErrCodeIndexFailed, "indexing interrupted", err)
	}
	renderer.Complete(stats, time.Since(start))
	_ = renderer.Stop()

	matches, err := collector.Search(ctx, query, limit)
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())
	if format == formatJSON {
		return out.JSON(rpc.SearchResult{Matches: matches})
	}

	out.Matches(query, matches)
	return nil
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	default:
		return sifterrors.InvalidParam("format", fmt.Sprintf("must be %q or %q, got %q", formatText, formatJSON, format))
	}
}
