package xex2

import (
	"encoding/binary"
	"fmt"
	"io"
)

// DestreamBlocks implements component F: it walks the chained,
// hashed, optionally AES-CBC-encrypted compressed-block format described
// in spec.md §4.F, emitting the concatenated chunk bytes — one
// contiguous LZX bitstream — to sink. Block 0's size and hash come from
// comp; every subsequent block's size/hash is read from the previous
// block's own decrypted header. A hash mismatch is recorded on diag but
// never aborts the destream (spec.md §7: HashMismatch is reported only).
func DestreamBlocks(src []byte, dataOffset uint32, comp *CompressionRecord, cbc *cbcState, sink io.Writer, diag *Diagnostics) (int64, error) {
	verify := comp.VerifyEnabled()
	expectedHash := comp.FirstBlockHash
	blockSize := comp.FirstBlockSize
	pos := int(dataOffset)

	var total int64
	for blockSize != 0 {
		if pos+int(blockSize) > len(src) {
			diag.Fatalf(DiagTruncated, "compressed block at offset 0x%x needs %d bytes, only %d remain", pos, blockSize, len(src)-pos)
			return total, fmt.Errorf("%w: compressed block at 0x%x", ErrTruncated, pos)
		}

		raw := src[pos : pos+int(blockSize)]
		blockStart := pos
		pos += int(blockSize)

		var block []byte
		if comp.Encryption == EncryptionAES {
			// §4.F: "block_size is always a multiple of 16 in
			// well-formed inputs" — decryptAll enforces that and
			// reports a truncation rather than decryptAligned's
			// silent-passthrough-of-the-remainder behavior, which is
			// only correct for the raw extractor's legitimately
			// partial trailing chunk (§4.E).
			decrypted, err := cbc.decryptAll(raw)
			if err != nil {
				diag.Fatalf(DiagTruncated, "compressed block at 0x%x: %v", blockStart, err)
				return total, fmt.Errorf("%w: compressed block at 0x%x: %v", ErrTruncated, blockStart, err)
			}
			block = decrypted
		} else {
			block = raw
		}

		// The SHA-1 compared here is computed over the *current* block's
		// full decrypted bytes, including its own leading size/hash
		// header words — this is the literal reading of spec.md's open
		// question #2 (see DESIGN.md).
		if verify {
			got := sumBlock(fmt.Sprintf("block@0x%x", blockStart), block)
			if !got.Matches(expectedHash) {
				diag.WarnDigest(DiagHashMismatch, got, "block at 0x%x: sha1 mismatch (got %s, want %x)", blockStart, got, expectedHash)
			}
		}

		headerLen := 4
		if verify {
			headerLen = 4 + 20
		}
		if len(block) < headerLen {
			diag.Fatalf(DiagTruncated, "compressed block at 0x%x shorter than its own header", blockStart)
			return total, fmt.Errorf("%w: compressed block header at 0x%x", ErrTruncated, blockStart)
		}

		nextSize := binary.BigEndian.Uint32(block[0:4])
		if verify {
			copy(expectedHash[:], block[4:24])
		}

		cursor := headerLen
		for {
			if cursor+2 > len(block) {
				diag.Fatalf(DiagTruncated, "compressed block at 0x%x: truncated chunk length", blockStart)
				return total, fmt.Errorf("%w: chunk length in block at 0x%x", ErrTruncated, blockStart)
			}
			chunkLen := binary.BigEndian.Uint16(block[cursor : cursor+2])
			cursor += 2
			if chunkLen == 0 {
				break
			}
			if cursor+int(chunkLen) > len(block) {
				diag.Fatalf(DiagTruncated, "compressed block at 0x%x: chunk of %d bytes overruns block", blockStart, chunkLen)
				return total, fmt.Errorf("%w: chunk in block at 0x%x", ErrTruncated, blockStart)
			}
			n, err := sink.Write(block[cursor : cursor+int(chunkLen)])
			total += int64(n)
			if err != nil {
				return total, err
			}
			cursor += int(chunkLen)
		}

		blockSize = nextSize
	}

	return total, nil
}
