package logging

import (
	"io"
	"log/slog"
	"regexp"
	"time"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/masq"
)

// Format selects the log line encoding
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

var apiKeyPattern = regexp.MustCompile(`api_key=[^&\s"]+`)

// Redactor returns the attribute hook that hides secrets. Struct fields tagged
// `masq:"secret"` and FRED credentials embedded in URLs are masked.
func Redactor() func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(
		masq.WithTag("secret"),
		masq.WithFieldName("APIKey"),
		masq.WithRegex(apiKeyPattern),
	)
}

// NewLogger builds a logger writing to w in the given format
func NewLogger(w io.Writer, format Format, level slog.Level, color bool) *slog.Logger {
	redact := Redactor()

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   true,
			Level:       level,
			ReplaceAttr: redact,
		})
	default:
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithColor(color),
			clog.WithTimeFmt(time.DateTime),
			clog.WithReplaceAttr(redact),
		)
	}

	return slog.New(handler)
}
