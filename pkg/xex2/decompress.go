package xex2

import (
	"bytes"
	"fmt"

	"github.com/openxex/xex2extract/pkg/xex2/lzx"
)

// defaultWindowSize is used when a compression record's window size is
// absent or malformed; 32 KiB is the smallest window the format
// supports and the one a raw/uncompressed record always reports zero
// for.
const defaultWindowSize = 1 << 15

// ExtractCompressed implements component G wired to component F: it
// destreams the chained compressed-block format into one contiguous
// LZX bitstream (component F), then runs that bitstream through the
// LZX decompressor to recover exactly imageSize bytes, which it
// returns. Per spec.md §4.G the reset interval is zero for Xbox use —
// Huffman tables and the repeated-offset registers persist across the
// whole stream, resetting only once at the very start.
func ExtractCompressed(src []byte, dataOffset, imageSize uint32, comp *CompressionRecord, cbc *cbcState, diag *Diagnostics) ([]byte, error) {
	var bitstream bytes.Buffer
	if _, err := DestreamBlocks(src, dataOffset, comp, cbc, &bitstream, diag); err != nil {
		return nil, err
	}

	windowSize := comp.WindowSize
	if windowSize == 0 {
		windowSize = defaultWindowSize
	}

	dec, err := lzx.NewDecoder(windowSize, 0)
	if err != nil {
		diag.Fatalf(DiagBadWindowSize, "%s", err)
		return nil, fmt.Errorf("%w: %v", ErrBadWindowSize, err)
	}

	out, err := dec.Decompress(bitstream.Bytes(), int64(imageSize))
	if err != nil {
		kind, sentinel := classifyLZXError(err)
		diag.Fatalf(kind, "lzx decode: %v", err)
		return nil, fmt.Errorf("%w: %v", sentinel, err)
	}

	return out, nil
}

func classifyLZXError(err error) (DiagnosticKind, error) {
	switch err {
	case lzx.ErrBadBlockType:
		return DiagBadBlockType, ErrBadBlockType
	case lzx.ErrBadHuffmanTable:
		return DiagBadHuffmanTable, ErrBadHuffmanTable
	case lzx.ErrMatchOverflow:
		return DiagMatchOverflow, ErrMatchOverflowsWindow
	default:
		return DiagTruncated, ErrTruncated
	}
}
