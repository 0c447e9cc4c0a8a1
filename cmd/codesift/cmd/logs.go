package cmd

import (
	"context"
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	sifterrors "github.com/Aman-CERP/codesift/internal/errors"
	"github.com/Aman-CERP/codesift/internal/logging"
)

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	filter  string
	noColor bool
	logFile string
}

func newLogsCmd(a *app) *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View the server log file",
		Long: `Show the last lines of the configured log file (server.log_file or --file).
Use -f to follow new entries like 'tail -f'.`,
		Example: `  codesift logs -n 100
  codesift logs -f --level warn
  codesift logs --filter build_index --file /tmp/codesift.log`,
		Args:        cobra.NoArgs,
		Annotations: interactive(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.logFile == "" {
				opts.logFile = a.cfg.Server.LogFile
			}
			return runLogs(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Filter by minimum level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Filter by pattern (regex)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.logFile, "file", "", "Path to log file (default: server.log_file)")

	return cmd
}

func runLogs(cmd *cobra.Command, opts logsOptions) error {
	if opts.logFile == "" {
		return sifterrors.New(sifterrors.ErrCodeConfigNotFound,
			"no log file configured: set server.log_file or pass --file", nil)
	}

	var pattern *regexp.Regexp
	if opts.filter != "" {
		var err error
		pattern, err = regexp.Compile(opts.filter)
		if err != nil {
			return sifterrors.InvalidParam("filter", err.Error())
		}
	}

	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		NoColor: opts.noColor,
	}, cmd.OutOrStdout())

	if !opts.follow {
		entries, err := viewer.Tail(opts.logFile, opts.lines)
		if err != nil {
			return fileError(opts.logFile, err)
		}
		viewer.Print(entries)
		return nil
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()
	return runFollow(ctx, cmd, viewer, opts.logFile)
}

func runFollow(ctx context.Context, cmd *cobra.Command, viewer *logging.Viewer, path string) error {
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Following %s (Ctrl+C to stop)\n", path)

	entries := make(chan logging.LogEntry, 100)
	errCh := make(chan error, 1)
	go func() {
		errCh <- viewer.Follow(ctx, path, entries)
	}()

	for {
		select {
		case entry := <-entries:
			viewer.Print([]logging.LogEntry{entry})
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return nil
		}
	}
}
