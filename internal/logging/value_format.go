package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

const (
	logTimestampLayout = "2006-01-02 15:04:05"
	// maxConsoleValue bounds how much of a single attribute the console
	// handler prints; subtitle payloads can run to megabytes.
	maxConsoleValue = 160
)

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(logTimestampLayout)
}

func attrString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return formatValue(v)
	}
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return formatTimestamp(v.Time())
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return quoteIfNeeded(truncate(err.Error()))
		}
		return quoteIfNeeded(truncate(fmt.Sprint(v.Any())))
	default:
		return quoteIfNeeded(truncate(v.String()))
	}
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxConsoleValue {
		return s
	}
	return string(runes[:maxConsoleValue]) + "…"
}

func quoteIfNeeded(s string) string {
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return true
		}
	}
	return false
}
