package xex2

import "fmt"

// DiagnosticKind names one of the error taxonomy entries from the
// container's error handling design. Fatal kinds abort the pipeline and
// are also returned as a Go error; non-fatal kinds are only ever recorded
// here so a caller can inspect what happened without losing the rest of
// the extraction.
type DiagnosticKind string

const (
	DiagBadMagic         DiagnosticKind = "BadMagic"
	DiagTruncated        DiagnosticKind = "Truncated"
	DiagBadBlockType     DiagnosticKind = "BadBlockType"
	DiagBadHuffmanTable  DiagnosticKind = "BadHuffmanTable"
	DiagMatchOverflow    DiagnosticKind = "MatchOverflowsWindow"
	DiagBadWindowSize    DiagnosticKind = "BadWindowSize"
	DiagHashMismatch     DiagnosticKind = "HashMismatch"
	DiagUnsupportedCompr DiagnosticKind = "UnsupportedCompression"
	DiagDecodeWarning    DiagnosticKind = "DecodeWarning"
)

// Diagnostic is one entry of the ordered, human-readable log the pipeline
// produces alongside the descriptor.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
	Fatal   bool           `json:"fatal"`
	// Digest is set only for diagnostics that compare a SHA-1 sum
	// (HashMismatch); xex2tool's --verbose output prints it alongside
	// the message instead of re-deriving it from Message's %x dump.
	Digest *Digest `json:"digest,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Fatal {
		return fmt.Sprintf("[%s] %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("[%s] (warning) %s", d.Kind, d.Message)
}

// Diagnostics is the ordered log described by the error handling design:
// every fatal or non-fatal event the pipeline reports, in the order it
// was observed. A malformed optional-header entry is isolated here rather
// than aborting the walk; only §7's genuinely fatal kinds stop the pass.
type Diagnostics []Diagnostic

func (d *Diagnostics) record(kind DiagnosticKind, fatal bool, format string, args ...any) {
	*d = append(*d, Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Fatal: fatal})
}

// Warn records a non-fatal diagnostic.
func (d *Diagnostics) Warn(kind DiagnosticKind, format string, args ...any) {
	d.record(kind, false, format, args...)
}

// Fatalf records a fatal diagnostic. The caller is still responsible for
// returning the corresponding sentinel error; this only appends to the log.
func (d *Diagnostics) Fatalf(kind DiagnosticKind, format string, args ...any) {
	d.record(kind, true, format, args...)
}

// WarnDigest records a non-fatal diagnostic carrying the SHA-1 digest
// that triggered it, so a verbose caller can print the digest itself
// rather than only the formatted message.
func (d *Diagnostics) WarnDigest(kind DiagnosticKind, digest Digest, format string, args ...any) {
	*d = append(*d, Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Digest: &digest})
}

// HasFatal reports whether any fatal diagnostic was recorded.
func (d Diagnostics) HasFatal() bool {
	for _, entry := range d {
		if entry.Fatal {
			return true
		}
	}
	return false
}

// Strings renders the log as a slice of human-readable lines, the
// caller-facing surface required by the error handling design.
func (d Diagnostics) Strings() []string {
	out := make([]string, len(d))
	for i, entry := range d {
		out[i] = entry.String()
	}
	return out
}
