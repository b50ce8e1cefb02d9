package logging

import (
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

// NewLogger creates an hclog.Logger with the module's standard settings:
// UTC timestamps, optional JSON formatting, and a line-prefixed writer
// when emitting plain text. The returned PrefixWriter is nil in JSON
// mode (hclog writes complete, self-delimited JSON records there, so
// line-prefixing doesn't apply); a non-nil writer should have Flush
// deferred by the caller so a trailing unterminated line isn't lost.
func NewLogger(name string, level string, output io.Writer) (hclog.Logger, *PrefixWriter) {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv("XEX2_JSON_LOG") == "1"

	var pw *PrefixWriter
	if !jsonFormat {
		pw = NewPrefixWriter(name+": ", output)
		output = pw
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	return hclog.New(opts), pw
}

// Entry is the minimal shape LogEntries needs from a diagnostic-like
// value. It is a plain struct rather than an xex2.Diagnostic so this
// package stays free of a domain-package import; callers convert their
// own diagnostic slices into Entry values field by field.
type Entry struct {
	Kind    string
	Message string
	Fatal   bool
}

// LogEntries logs each entry through logger at a level matching its
// severity, with Kind carried as a structured field rather than
// flattened into the message text. Used so a container's accumulated
// diagnostics reach the same leveled, optionally-JSON output as every
// other log line instead of being printed straight to stdout.
func LogEntries(logger hclog.Logger, entries []Entry) {
	for _, e := range entries {
		if e.Fatal {
			logger.Error(e.Message, "kind", e.Kind)
		} else {
			logger.Warn(e.Message, "kind", e.Kind)
		}
	}
}

// GetLogLevel returns the configured log level from the environment,
// defaulting to "warn" so library consumers don't get chatty output unasked.
func GetLogLevel() string {
	level := os.Getenv("XEX2_LOG_LEVEL")
	if level == "" {
		level = "warn" // Default to warn for production safety
	}
	return level
}
