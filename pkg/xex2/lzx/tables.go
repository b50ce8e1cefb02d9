// Package lzx implements a decompressor for the Xbox 360 container
// variant of LZX: a canonical-Huffman, LZ77-style scheme with a
// sliding window between 32 KiB and 2 MiB, three repeated-offset
// registers, a periodic Huffman-table reset interval, and an Intel
// 0xE8 call-translation post-processor applied per 32768-byte frame.
//
// It is a generalization of the fixed-32KB-window WIM variant of LZX:
// the canonical-Huffman table build and bit-accumulator convention are
// the same, but the position-slot table extends past slot 30 to cover
// windows up to 2^21 bytes, and decoding proceeds frame by frame
// across an output far larger than one window.
package lzx

const (
	maincodesplit = 256
	// lencodecount is 249, not spec.md §3/§4.G's literal length[250]/
	// [0,250) — this is the real-LZX NUM_SECONDARY_LENGTHS constant
	// (matching the WIM reference this package generalizes), and the
	// length tree is only ever consulted for lenHeader==7, i.e. values
	// 7..255 after the +2 minimum-match bias, which is exactly 249
	// representable symbols. Kept at the reference value rather than
	// the spec's rounder number.
	lencodecount = 249

	alignedCodeCount = 8

	// frameSize is the unit the Intel E8 transform and the optional
	// Huffman-table reset interval are measured in.
	frameSize = 32768

	maxTreePathLen = 16

	verbatimBlock      = 1
	alignedOffsetBlock = 2
	uncompressedBlock  = 3

	// numPositionSlots is the position-slot count of the largest (2^21)
	// window, and so sizes the main tree.
	numPositionSlots = 50

	// positionTableSize is the length of the footerBits/basePosition
	// tables: the standard 51-entry LZX schedule, one entry past the last
	// slot a 2^21 window codes, so the final base reaches 2^21.
	positionTableSize = numPositionSlots + 1

	mainCodeCount = maincodesplit + numPositionSlots*8
)

// footerBits holds the number of verbatim/aligned extra bits that
// follow each position slot's Huffman code, and basePosition holds the
// match offset each slot starts at. Both follow the standard LZX
// extra-bits schedule: slots 0-3 need no extra bits (they are exact
// offsets 0-2 plus one placeholder), then every pair of slots doubles
// the span covered per extra bit, up to a fixed 17 bits for the
// highest slots.
var (
	footerBits   [positionTableSize]byte
	basePosition [positionTableSize]uint32
)

// posSlots returns the number of position slots (and therefore the
// size of the main tree's second, position-slot-coded half) for a given
// window size expressed in bits. The schedule is irregular at the top
// end: every window below 2^20 uses exactly two slots per bit, but
// 2^20 and 2^21 windows use 42 and 50 slots respectively rather than
// the 40/42 the doubling pattern would otherwise give, matching the
// format's fixed extra-bits table rather than a clean formula.
func posSlots(windowBits int) int {
	switch windowBits {
	case 21:
		return numPositionSlots
	case 20:
		return 42
	default:
		return windowBits * 2
	}
}

func init() {
	for i := 0; i < 4; i++ {
		footerBits[i] = 0
	}
	for i := 4; i < 36 && i < positionTableSize; i++ {
		footerBits[i] = byte(i/2 - 1)
	}
	for i := 36; i < positionTableSize; i++ {
		footerBits[i] = 17
	}

	basePosition[0] = 0
	for i := 1; i < positionTableSize; i++ {
		basePosition[i] = basePosition[i-1] + uint32(1)<<footerBits[i-1]
	}
}
