package xex2

import (
	"fmt"
	"io"
)

const extractChunkSize = 64 * 1024

// ExtractRaw implements component E: it streams
// min(len(src)-dataOffset, imageSize) bytes from src starting at
// dataOffset to sink, in fixed-size chunks. If cbc is non-nil, every
// fully-aligned 16-byte run within each chunk is AES-CBC-decrypted using
// cbc's persistent IV state; trailing sub-block bytes pass through
// untransformed.
func ExtractRaw(src []byte, dataOffset, imageSize uint32, cbc *cbcState, sink io.Writer) (int64, error) {
	if int(dataOffset) > len(src) {
		return 0, fmt.Errorf("%w: data offset %d beyond input of %d bytes", ErrTruncated, dataOffset, len(src))
	}

	remaining := int64(len(src)) - int64(dataOffset)
	if int64(imageSize) < remaining {
		remaining = int64(imageSize)
	}
	if remaining < 0 {
		remaining = 0
	}

	var written int64
	pos := int(dataOffset)
	for written < remaining {
		n := extractChunkSize
		if int64(n) > remaining-written {
			n = int(remaining - written)
		}
		chunk := append([]byte(nil), src[pos:pos+n]...)
		if cbc != nil {
			chunk = cbc.decryptAligned(chunk)
		}
		if _, err := sink.Write(chunk); err != nil {
			return written, err
		}
		written += int64(n)
		pos += n
	}

	return written, nil
}
