package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"
)

var (
	// ErrNotText is returned by ReadText for content that is not valid UTF-8.
	ErrNotText = errors.New("not valid UTF-8 text")

	// ErrTooLarge is returned by ReadText for files above the size limit.
	ErrTooLarge = errors.New("file exceeds size limit")
)

// WalkResult is the outcome of walking one directory tree.
type WalkResult struct {
	// Files holds absolute paths of eligible files in lexical walk order.
	Files []string

	// Unreadable counts entries below the root that could not be read.
	Unreadable int
}

// Walk collects eligible files below root. Denied directories are pruned before
// descent. Failures below the root are counted in Unreadable; failing to read
// the root itself is returned as an error.
func Walk(ctx context.Context, root string, filter *Filter) (WalkResult, error) {
	var result WalkResult

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == root {
				return err
			}
			slog.Debug("walk_entry_unreadable",
				slog.String("path", path),
				slog.String("error", err.Error()))
			result.Unreadable++
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && filter.SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		// Sockets, devices and pipes are never text files; symlinks are resolved on read.
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if filter.Eligible(rel) {
			result.Files = append(result.Files, path)
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("walk %s: %w", root, err)
	}
	return result, nil
}

// ReadText reads a whole file as UTF-8 text. maxSize <= 0 means DefaultMaxFileSize.
func ReadText(path string, maxSize int64) (string, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxSize {
		return "", fmt.Errorf("%s (%d bytes): %w", path, info.Size(), ErrTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", path, ErrNotText)
	}
	return string(data), nil
}
