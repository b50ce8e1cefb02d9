package lzx

import "errors"

// These mirror the fatal decode-error taxonomy the container package
// exposes (BadBlockType, BadHuffmanTable, MatchOverflowsWindow,
// Truncated); this package stays free of any import on its parent so
// the mapping is done by the caller.
var (
	ErrBadBlockType    = errors.New("lzx: unrecognized block type")
	ErrBadHuffmanTable = errors.New("lzx: huffman table does not decode to a valid prefix code")
	ErrMatchOverflow   = errors.New("lzx: match offset or length overflows the window")
	ErrTruncated       = errors.New("lzx: input exhausted before the requested output size was produced")
	ErrBadWindowSize   = errors.New("lzx: window size must be a power of two between 2^15 and 2^21")
)
