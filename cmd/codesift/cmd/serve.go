package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/codesift/internal/config"
	"github.com/Aman-CERP/codesift/internal/index"
	"github.com/Aman-CERP/codesift/internal/rpc"
	"github.com/Aman-CERP/codesift/internal/scanner"
	"github.com/Aman-CERP/codesift/internal/store"
	"github.com/Aman-CERP/codesift/internal/symbols"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve JSON-RPC 2.0 on stdin/stdout",
		Long: `Serve line-delimited JSON-RPC 2.0 on stdin/stdout until end of input.

Methods: ping, build_index, search, analyze, stats.
Each request is one JSON object per line and gets exactly one response line.`,
		Example: `  echo '{"jsonrpc":"2.0","method":"ping","id":1}' | codesift serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), a, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runServe answers requests from in on out. Nothing but responses is ever
// written to out.
func runServe(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	ctx, stop := signalContext(ctx)
	defer stop()

	collector, err := newCollector(a.cfg, nil)
	if err != nil {
		return err
	}
	srv := rpc.NewServer(collector, symbols.NewExtractor(), rpc.Options{
		DefaultLimit: a.cfg.Search.DefaultLimit,
		MaxLimit:     a.cfg.Search.MaxLimit,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ctx, in, out)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		// A read blocked on stdin cannot be interrupted; the process exits instead.
		slog.Info("server_interrupted")
		return nil
	}
}

// newCollector builds an empty corpus configured from cfg. progress may be nil.
func newCollector(cfg *config.Config, progress func(index.Progress)) (*index.Collector, error) {
	ix, err := store.NewIndex(store.Options{
		SplitIdentifiers: cfg.Index.SplitIdentifiers,
		VectorCacheSize:  cfg.Index.VectorCacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return index.NewCollector(ix, index.Options{
		Filter:         scanner.NewFilter(cfg.Index.ExtraExtensions, cfg.Index.ExtraSkipDirs),
		MaxFileSize:    cfg.Index.MaxFileSize,
		ReadWorkers:    cfg.Index.ReadWorkers,
		SnippetChars:   cfg.Search.SnippetChars,
		ScorePrecision: cfg.Search.ScorePrecision,
		Progress:       progress,
	}), nil
}
