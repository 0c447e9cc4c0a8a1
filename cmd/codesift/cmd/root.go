// Package cmd provides the CLI commands for codesift.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/codesift/internal/config"
	sifterrors "github.com/Aman-CERP/codesift/internal/errors"
	"github.com/Aman-CERP/codesift/internal/logging"
	"github.com/Aman-CERP/codesift/pkg/version"
)

// annotationInteractive marks commands whose logs would clutter a terminal.
// They log at warn unless --log-level is given explicitly.
const annotationInteractive = "codesift/interactive"

// app carries state shared by all commands of one invocation.
type app struct {
	logLevel string
	logFile  string

	cfg     *config.Config
	level   string
	cleanup func()
}

// NewRootCmd creates the root command for the codesift CLI.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "codesift",
		Short: "Local lexical code search over JSON-RPC",
		Long: `codesift indexes source trees in memory and ranks files against free-text
queries with TF-IDF cosine similarity. It also extracts declared symbol names
from source text.

Run without a subcommand to serve line-delimited JSON-RPC 2.0 on stdin/stdout.
Diagnostics go to stderr and never to stdout.`,
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), a, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.SetVersionTemplate("codesift version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	cmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "Also write logs to this rotating file")

	cmd.PersistentPreRunE = a.setup
	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		a.close()
		return nil
	}

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newSearchCmd(a))
	cmd.AddCommand(newCallCmd(a))
	cmd.AddCommand(newAnalyzeCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newLogsCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd, a
}

// Execute runs the root command.
func Execute() error {
	cmd, a := newRootCmd()
	defer a.close()
	return cmd.Execute()
}

// setup loads configuration, applies flag overrides and installs the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return sifterrors.IOError("failed to determine working directory", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return sifterrors.ConfigError(err.Error(), err)
	}
	if a.logLevel != "" {
		cfg.Server.LogLevel = a.logLevel
	}
	if a.logFile != "" {
		cfg.Server.LogFile = a.logFile
	}
	if err := cfg.Validate(); err != nil {
		return sifterrors.ConfigError(err.Error(), err)
	}
	a.cfg = cfg

	level := cfg.Server.LogLevel
	if isInteractive(cmd) && a.logLevel == "" && logging.LevelFromString(level) < slog.LevelWarn {
		level = "warn"
	}
	a.level = level

	cleanup, err := logging.SetupDefault(logging.Config{
		Level:    level,
		FilePath: cfg.Server.LogFile,
		Stderr:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return sifterrors.IOError(fmt.Sprintf("failed to open log file %s", cfg.Server.LogFile), err)
	}
	a.cleanup = cleanup

	slog.Debug("config_loaded",
		slog.String("command", cmd.Name()),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Int("read_workers", cfg.Index.ReadWorkers))
	return nil
}

func (a *app) close() {
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
}

func isInteractive(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationInteractive] == "true" {
			return true
		}
	}
	return false
}

func interactive() map[string]string {
	return map[string]string{annotationInteractive: "true"}
}

// signalContext cancels ctx on interrupt or termination.
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
