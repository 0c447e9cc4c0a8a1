package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// FilePath is an optional log file. Empty means stderr only.
	FilePath string
	// MaxSizeMB is the maximum size in MB before rotation (default: 10).
	MaxSizeMB int
	// MaxFiles is the maximum number of rotated files to keep (default: 5).
	MaxFiles int
	// Stderr receives every record. Defaults to os.Stderr; stdout is never used.
	Stderr io.Writer
}

// DefaultConfig returns stderr-only logging at info level.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		MaxSizeMB: 10,
		MaxFiles:  5,
	}
}

// Setup builds a JSON logger writing to stderr and, when FilePath is set, to a
// rotating file. The returned cleanup closes the file.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	var output io.Writer = os.Stderr
	if cfg.Stderr != nil {
		output = cfg.Stderr
	}

	cleanup := func() {}
	if cfg.FilePath != "" {
		maxSizeMB := cfg.MaxSizeMB
		if maxSizeMB <= 0 {
			maxSizeMB = 10
		}
		maxFiles := cfg.MaxFiles
		if maxFiles <= 0 {
			maxFiles = 5
		}

		writer, err := NewRotatingWriter(cfg.FilePath, int64(maxSizeMB)*1024*1024, maxFiles)
		if err != nil {
			return nil, nil, err
		}
		output = io.MultiWriter(writer, output)
		cleanup = func() {
			_ = writer.Sync()
			_ = writer.Close()
		}
	}

	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	})

	return slog.New(handler), cleanup, nil
}

// SetupDefault configures logging and installs the logger as the slog default.
func SetupDefault(cfg Config) (func(), error) {
	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return cleanup, nil
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromString converts string level to slog.Level (exported for the log viewer).
func LevelFromString(level string) slog.Level {
	return parseLevel(level)
}
