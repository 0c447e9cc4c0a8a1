package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	sifterrors "github.com/Aman-CERP/codesift/internal/errors"
	"github.com/Aman-CERP/codesift/internal/output"
	"github.com/Aman-CERP/codesift/internal/scanner"
	"github.com/Aman-CERP/codesift/internal/symbols"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "List the symbols declared in a source file",
		Long: `Extract function, class, struct, trait, enum and impl names from a file
with a fixed table of regular expressions. Use "-" to read from stdin.`,
		Example: `  codesift analyze main.go
  cat lib.rs | codesift analyze - --format json`,
		Args:        cobra.ExactArgs(1),
		Annotations: interactive(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, a, args[0], format)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text or json")

	return cmd
}

func runAnalyze(cmd *cobra.Command, a *app, path, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	content, err := readSource(cmd.InOrStdin(), path, a.cfg.Index.MaxFileSize)
	if err != nil {
		return err
	}

	hint := path
	if path == "-" {
		hint = ""
	}
	result := symbols.NewExtractor().Analyze(content, hint)

	out := output.New(cmd.OutOrStdout())
	if format == formatJSON {
		return out.JSON(result)
	}
	out.Analysis(path, result)
	return nil
}

// readSource reads path, or stdin for "-", as UTF-8 text of at most maxSize bytes.
func readSource(stdin io.Reader, path string, maxSize int64) (string, error) {
	if path != "-" {
		content, err := scanner.ReadText(path, maxSize)
		if err != nil {
			return "", fileError(path, err)
		}
		return content, nil
	}

	data, err := io.ReadAll(io.LimitReader(stdin, maxSize+1))
	if err != nil {
		return "", sifterrors.IOError("failed to read stdin", err)
	}
	if int64(len(data)) > maxSize {
		return "", fileError("stdin", scanner.ErrTooLarge)
	}
	if !utf8.Valid(data) {
		return "", fileError("stdin", scanner.ErrNotText)
	}
	return string(data), nil
}

// fileError converts a read failure into a coded error naming path.
func fileError(path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return sifterrors.New(sifterrors.ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path), err)
	case errors.Is(err, os.ErrPermission):
		return sifterrors.New(sifterrors.ErrCodeFilePermission, fmt.Sprintf("permission denied: %s", path), err)
	case errors.Is(err, scanner.ErrTooLarge):
		return sifterrors.New(sifterrors.ErrCodeFileTooLarge, fmt.Sprintf("file too large: %s", path), err)
	case errors.Is(err, scanner.ErrNotText):
		return sifterrors.New(sifterrors.ErrCodeFileNotText, fmt.Sprintf("not a UTF-8 text file: %s", path), err)
	default:
		return sifterrors.IOError(fmt.Sprintf("failed to read %s", path), err)
	}
}
