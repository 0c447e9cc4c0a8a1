package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	var se *SiftError
	if !stderrors.As(err, &se) {
		se = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Error: %s\n", se.Message))
	sb.WriteString(fmt.Sprintf("  Code: %s\n", se.Code))
	return sb.String()
}

// LogAttrs formats an error as slog attributes for structured logging.
func LogAttrs(err error) []slog.Attr {
	if err == nil {
		return nil
	}

	var se *SiftError
	if !stderrors.As(err, &se) {
		return []slog.Attr{slog.String("error", err.Error())}
	}

	attrs := []slog.Attr{
		slog.String("error_code", se.Code),
		slog.String("error", se.Message),
		slog.String("category", string(se.Category)),
	}
	if se.Cause != nil {
		attrs = append(attrs, slog.String("cause", se.Cause.Error()))
	}

	keys := make([]string, 0, len(se.Details))
	for k := range se.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.String("detail_"+k, se.Details[k]))
	}
	return attrs
}
