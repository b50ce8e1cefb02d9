package lzx

import (
	"encoding/binary"
	"math/bits"
)

// Decoder holds the state that persists across an entire decompression
// run: the canonical-Huffman table's previous code lengths (each
// block's tree is coded as a delta from the last one), the three
// repeated-offset registers, and the Intel E8 call-translation
// bookkeeping.
type Decoder struct {
	windowSize    uint32
	resetInterval int

	// posSlotCount is the number of position slots this window size
	// uses, per the §4.G schedule. mainlens is sized for the largest
	// possible window (2^21, 50 slots); only its first
	// maincodesplit+posSlotCount*8 entries are ever read or decoded
	// into for a smaller window, and the unused tail stays at its
	// reset value of zero length (never assigned a codeword).
	posSlotCount int

	r0, r1, r2 uint32
	mainlens   [mainCodeCount]byte
	lenlens    [lencodecount]byte

	// Block state, persisted across frame boundaries: a block's body
	// may be split across more than one 32768-byte frame, in which
	// case no new block header or frame header is read until it is
	// fully drained.
	blockRemaining      int64
	blockType           int
	hmain, hlength       *huffman
	haligned             *huffman
	prevUncompressedOdd  bool

	// Intel E8 call-translation bookkeeping (sticky across the whole
	// stream once set; intelFilesize is refreshed from each frame's
	// header bit(s) when no block is in flight).
	intelStarted  bool
	intelFilesize uint32
}

// NewDecoder builds a decoder for the given window size (a power of
// two between 2^15 and 2^21) and Huffman-table reset interval,
// expressed in frames. A resetInterval of 0 means the tables are
// primed once at the start of the stream and never reset again.
func NewDecoder(windowSize uint32, resetInterval int) (*Decoder, error) {
	if windowSize < 1<<15 || windowSize > 1<<21 || windowSize&(windowSize-1) != 0 {
		return nil, ErrBadWindowSize
	}
	windowBits := bits.TrailingZeros32(windowSize)
	return &Decoder{
		windowSize:    windowSize,
		resetInterval: resetInterval,
		posSlotCount:  posSlots(windowBits),
		r0:            1,
		r1:            1,
		r2:            1,
	}, nil
}

func (d *Decoder) resetTables() {
	for i := range d.mainlens {
		d.mainlens[i] = 0
	}
	for i := range d.lenlens {
		d.lenlens[i] = 0
	}
	d.r0, d.r1, d.r2 = 1, 1, 1
}

// Decompress reads the canonical-Huffman LZX bitstream in src and
// produces exactly outSize bytes of decompressed output. Frame 0 always
// starts from zero-length Huffman tables and fresh repeated-offset
// registers; when the reset interval is non-zero, every subsequent frame
// whose index is a multiple of it does the same (an interval of 0, which
// is what the container package passes, never resets). As each
// 32768-byte frame is completed, the Intel 0xE8 call-translation
// transform is reversed within that frame.
func (d *Decoder) Decompress(src []byte, outSize int64) ([]byte, error) {
	out := make([]byte, outSize)
	r := newBitReader(src)

	d.resetTables()
	d.blockRemaining = 0
	d.prevUncompressedOdd = false

	var pos int64
	for frameIndex := 0; pos < outSize; frameIndex++ {
		if frameIndex > 0 && d.resetInterval > 0 && frameIndex%d.resetInterval == 0 {
			d.resetTables()
			d.blockRemaining = 0
		}

		frameStart := pos
		frameEnd := pos + frameSize
		if frameEnd > outSize {
			frameEnd = outSize
		}

		if d.blockRemaining == 0 {
			hasFilesize := r.getBits(1)
			if r.err != nil {
				return nil, ErrTruncated
			}
			if hasFilesize != 0 {
				hi := r.getBits(16)
				lo := r.getBits(16)
				if r.err != nil {
					return nil, ErrTruncated
				}
				d.intelFilesize = uint32(hi)<<16 | uint32(lo)
			} else {
				d.intelFilesize = 0
			}
		}

		for pos < frameEnd {
			if d.blockRemaining == 0 {
				if err := d.readBlockHeader(r); err != nil {
					return nil, err
				}
			}
			want := d.blockRemaining
			if frameEnd-pos < want {
				want = frameEnd - pos
			}
			n, err := d.readBlockBody(r, out, pos, want)
			if err != nil {
				return nil, err
			}
			pos += n
			d.blockRemaining -= n
			if d.blockRemaining == 0 && d.prevUncompressedOdd {
				// Discard the odd-length uncompressed block's padding
				// byte immediately, before any later frame-header or
				// block-header bit is read from the stream.
				r.skipByte()
				d.prevUncompressedOdd = false
			}
		}

		frameLen := frameEnd - frameStart
		if frameIndex <= 32768 && d.intelStarted && d.intelFilesize != 0 && frameLen > 10 {
			decodeE8(out[frameStart:frameEnd], frameStart, d.intelFilesize)
		}
	}

	if r.err != nil {
		return nil, ErrTruncated
	}

	return out, nil
}

// readBlockHeader reads one block's 3-bit type and 24-bit big-endian
// length, plus (for compressed block types) its Huffman trees, or (for
// an uncompressed block) its repeated-offset-register reload. It
// leaves d.blockRemaining set to the block's total body length still
// to be read by readBlockBody, which may span more than one frame.
func (d *Decoder) readBlockHeader(r *bitReader) error {
	blockType := int(r.getBits(3))
	size := int64(r.getBits24())
	if r.err != nil {
		return ErrTruncated
	}
	if size <= 0 {
		return ErrBadBlockType
	}

	d.blockType = blockType
	d.blockRemaining = size

	switch blockType {
	case uncompressedBlock:
		d.intelStarted = true
		r.align()
		lru, err := r.readRaw(12)
		if err != nil {
			return err
		}
		d.r0 = binary.LittleEndian.Uint32(lru[0:4])
		d.r1 = binary.LittleEndian.Uint32(lru[4:8])
		d.r2 = binary.LittleEndian.Uint32(lru[8:12])
		d.prevUncompressedOdd = size%2 != 0
		return nil

	case verbatimBlock, alignedOffsetBlock:
		hmain, hlength, haligned, err := d.readTrees(r, blockType == alignedOffsetBlock)
		if err != nil {
			return err
		}
		if d.mainlens[0xe8] != 0 {
			d.intelStarted = true
		}
		d.hmain, d.hlength, d.haligned = hmain, hlength, haligned
		return nil

	default:
		return ErrBadBlockType
	}
}

// readBlockBody emits up to want bytes of the block currently named by
// d.blockType/d.blockRemaining into out[pos:], returning how many bytes
// were produced. want may be less than d.blockRemaining when a frame
// boundary falls inside the block; the remainder is picked up by the
// next call once the next frame's header (if any) has been read.
func (d *Decoder) readBlockBody(r *bitReader, out []byte, pos, want int64) (int64, error) {
	switch d.blockType {
	case uncompressedBlock:
		raw, err := r.readRaw(int(want))
		if err != nil {
			return 0, err
		}
		copy(out[pos:pos+want], raw)
		return want, nil

	default: // verbatimBlock, alignedOffsetBlock
		return d.readCompressedBlock(r, out, pos, pos+want, d.hmain, d.hlength, d.haligned)
	}
}

// mod17 reduces a byte to the 0-16 range, the modulus the tree-length
// delta coding uses.
func mod17(b byte) byte {
	for b >= 17 {
		b -= 17
	}
	return b
}

// readTree decodes path lengths for one canonical-Huffman tree, coded
// as deltas from the previous tree's lengths (zero for the first use),
// itself encoded with a small pretree.
func (d *Decoder) readTree(r *bitReader, lens []byte) error {
	var pretreeLen [20]byte
	for i := range pretreeLen {
		pretreeLen[i] = byte(r.getBits(4))
	}
	if r.err != nil {
		return ErrTruncated
	}
	h := buildTable(pretreeLen[:])
	if h == nil {
		return ErrBadHuffmanTable
	}

	for i := 0; i < len(lens); {
		c := byte(r.getCode(h))
		if r.err != nil {
			return ErrTruncated
		}
		switch {
		case c <= 16:
			lens[i] = mod17(lens[i] + 17 - c)
			i++
		case c == 17:
			zeroes := int(r.getBits(4)) + 4
			if i+zeroes > len(lens) {
				return ErrBadHuffmanTable
			}
			for j := 0; j < zeroes; j++ {
				lens[i+j] = 0
			}
			i += zeroes
		case c == 18:
			zeroes := int(r.getBits(5)) + 20
			if i+zeroes > len(lens) {
				return ErrBadHuffmanTable
			}
			for j := 0; j < zeroes; j++ {
				lens[i+j] = 0
			}
			i += zeroes
		case c == 19:
			same := int(r.getBits(1)) + 4
			if i+same > len(lens) {
				return ErrBadHuffmanTable
			}
			c2 := byte(r.getCode(h))
			if c2 > 16 {
				return ErrBadHuffmanTable
			}
			l := mod17(lens[i] + 17 - c2)
			for j := 0; j < same; j++ {
				lens[i+j] = l
			}
			i += same
		default:
			return ErrBadHuffmanTable
		}
	}
	return nil
}

func (d *Decoder) readTrees(r *bitReader, readAligned bool) (main, length, aligned *huffman, err error) {
	if readAligned {
		var alignedLen [alignedCodeCount]byte
		for i := range alignedLen {
			alignedLen[i] = byte(r.getBits(3))
		}
		aligned = buildTable(alignedLen[:])
		if aligned == nil {
			return nil, nil, nil, ErrBadHuffmanTable
		}
	}

	mainTreeEnd := maincodesplit + d.posSlotCount*8
	if err = d.readTree(r, d.mainlens[:maincodesplit]); err != nil {
		return nil, nil, nil, err
	}
	if err = d.readTree(r, d.mainlens[maincodesplit:mainTreeEnd]); err != nil {
		return nil, nil, nil, err
	}
	main = buildTable(d.mainlens[:mainTreeEnd])
	if main == nil {
		return nil, nil, nil, ErrBadHuffmanTable
	}

	if err = d.readTree(r, d.lenlens[:]); err != nil {
		return nil, nil, nil, err
	}
	length = buildTable(d.lenlens[:])
	if length == nil {
		return nil, nil, nil, ErrBadHuffmanTable
	}

	return main, length, aligned, nil
}

// readCompressedBlock decodes literals and matches into out[start:end]
// using the current block's Huffman trees, and returns the number of
// bytes produced.
func (d *Decoder) readCompressedBlock(r *bitReader, out []byte, start, end int64, hmain, hlength, haligned *huffman) (int64, error) {
	i := start
	for i < end {
		main := r.getCode(hmain)
		if r.err != nil {
			return i - start, ErrTruncated
		}

		if main < 256 {
			out[i] = byte(main)
			i++
			continue
		}

		lenHeader := (main - 256) % 8
		slot := uint32((main - 256) / 8)

		var matchLen int64
		if lenHeader == 7 {
			matchLen = int64(r.getCode(hlength)) + 7
		} else {
			matchLen = int64(lenHeader)
		}
		matchLen += 2

		var matchOffset uint32
		if slot < 3 {
			switch slot {
			case 0:
				matchOffset = d.r0
			case 1:
				matchOffset = d.r1
				d.r1 = d.r0
			case 2:
				matchOffset = d.r2
				d.r2 = d.r0
			}
			d.r0 = matchOffset
		} else {
			offsetBits := footerBits[slot]
			var verbatimBits, alignedBits uint32
			if offsetBits > 0 {
				if haligned != nil && offsetBits >= 3 {
					verbatimBits = uint32(r.getBits(offsetBits-3)) * 8
					alignedBits = uint32(r.getCode(haligned))
				} else {
					verbatimBits = uint32(r.getBits(offsetBits))
				}
			}
			matchOffset = basePosition[slot] + verbatimBits + alignedBits - 2
			d.r2 = d.r1
			d.r1 = d.r0
			d.r0 = matchOffset
		}

		if r.err != nil {
			return i - start, ErrTruncated
		}
		if int64(matchOffset) > i || uint32(matchOffset) > d.windowSize || matchLen > end-i {
			return i - start, ErrMatchOverflow
		}

		for j := int64(0); j < matchLen; j++ {
			out[i+j] = out[i+j-int64(matchOffset)]
		}
		i += matchLen
	}
	return i - start, nil
}

// decodeE8 reverses the x86 CALL-instruction absolute-address encoding
// that was applied to the uncompressed image before compression, within
// a single frame. off is the frame's absolute position in the overall
// output and filesize is the value carried in that frame's header,
// used to recover the original relative displacement.
func decodeE8(b []byte, off int64, filesize uint32) {
	if len(b) < 10 {
		return
	}
	fsize := int32(filesize)
	for i := 0; i < len(b)-10; i++ {
		if b[i] != 0xe8 {
			continue
		}
		currentPtr := int32(off) + int32(i)
		abs := int32(binary.LittleEndian.Uint32(b[i+1 : i+5]))
		if abs >= -currentPtr && abs < fsize {
			var rel int32
			if abs >= 0 {
				rel = abs - currentPtr
			} else {
				rel = abs + fsize
			}
			binary.LittleEndian.PutUint32(b[i+1:i+5], uint32(rel))
		}
		i += 4
	}
}
