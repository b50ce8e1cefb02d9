package xex2

import "errors"

// Fatal parse/decode errors. These abort the pipeline outright.
var (
	ErrBadMagic             = errors.New("xex2: invalid container magic")
	ErrTruncated            = errors.New("xex2: read past end of input")
	ErrBadBlockType         = errors.New("xex2: lzx block type not in {1,2,3}")
	ErrBadHuffmanTable      = errors.New("xex2: huffman code space over/underflow")
	ErrMatchOverflowsWindow = errors.New("xex2: lz77 match exceeds window bounds")
	ErrBadWindowSize        = errors.New("xex2: compression window is not a power of two in [32KiB,2MiB]")
	ErrUnsupportedDelta     = errors.New("xex2: delta-compressed xex is not supported")
)

// Non-fatal kinds. These are recorded on the Diagnostics log (see
// diagnostics.go) and never abort the pipeline.
var (
	ErrHashMismatch        = errors.New("xex2: block hash mismatch")
	ErrUnsupportedCompress = errors.New("xex2: unsupported compression type")
	ErrDecodeWarning       = errors.New("xex2: optional header entry failed to decode")
)
