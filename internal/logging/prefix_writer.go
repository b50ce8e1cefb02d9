package logging

import (
	"bytes"
	"io"
)

// PrefixWriter wraps an io.Writer, prefixing each complete line hclog
// writes to it. A XEX2 extraction can run to hundreds of non-fatal
// diagnostics on a single malformed container; lines tracks how many
// made it to the underlying writer, so a caller (xex2tool's verify
// command) can report "N diagnostic lines logged" without re-parsing
// its own stderr.
type PrefixWriter struct {
	prefix string
	writer io.Writer
	buffer bytes.Buffer
	lines  int
}

// NewPrefixWriter creates a PrefixWriter that prefixes every line
// written to w with prefix.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: prefix,
		writer: w,
	}
}

// Write implements io.Writer. It scans p for newline-terminated runs
// and writes each, prefixed, as soon as it completes; any trailing
// partial line is held in buffer until a later Write or Flush
// completes it.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.buffer.Write(p)

	for {
		buffered := pw.buffer.Bytes()
		idx := bytes.IndexByte(buffered, '\n')
		if idx < 0 {
			break
		}
		line := pw.buffer.Next(idx + 1)
		if err := pw.writeLine(line); err != nil {
			return 0, err
		}
	}

	return len(p), nil
}

func (pw *PrefixWriter) writeLine(line []byte) error {
	if _, err := pw.writer.Write([]byte(pw.prefix)); err != nil {
		return err
	}
	if _, err := pw.writer.Write(line); err != nil {
		return err
	}
	pw.lines++
	return nil
}

// Flush writes out any buffered partial line that never saw a trailing
// newline, so a process that exits right after its last log call
// doesn't silently drop it.
func (pw *PrefixWriter) Flush() error {
	if pw.buffer.Len() == 0 {
		return nil
	}
	return pw.writeLine(pw.buffer.Next(pw.buffer.Len()))
}

// Lines reports how many lines have been written through this writer so
// far: every newline-terminated line, plus a partial line that Flush
// wrote out.
func (pw *PrefixWriter) Lines() int {
	return pw.lines
}
