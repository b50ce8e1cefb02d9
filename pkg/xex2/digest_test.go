package xex2

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"testing"
)

func TestDigestStringFormatIsPrefixHex(t *testing.T) {
	d := sumBlock("block@0x10", []byte("payload"))
	want := sha1.Sum([]byte("payload"))
	if !strings.HasPrefix(d.String(), "block@0x10:") {
		t.Errorf("String() = %q, want a block@0x10: prefix", d.String())
	}
	if wantStr := "block@0x10:" + hex.EncodeToString(want[:]); d.String() != wantStr {
		t.Errorf("String() = %q, want %q", d.String(), wantStr)
	}
	if !d.Matches(want) {
		t.Error("Matches returned false for the digest's own sum")
	}
}

func TestDigestMatchesRejectsWrongSum(t *testing.T) {
	d := sumBlock("x", []byte("payload"))
	var other [sha1.Size]byte
	if d.Matches(other) {
		t.Error("Matches returned true against an unrelated all-zero sum")
	}
}

// buildVerifiedBlock assembles a destreamer block carrying the 20-byte
// next-block-hash header that VerifyEnabled requires.
func buildVerifiedBlock(nextSize uint32, nextHash [20]byte, chunks ...[]byte) []byte {
	var b []byte
	b = binary.BigEndian.AppendUint32(b, nextSize)
	b = append(b, nextHash[:]...)
	for _, c := range chunks {
		b = binary.BigEndian.AppendUint16(b, uint16(len(c)))
		b = append(b, c...)
	}
	b = binary.BigEndian.AppendUint16(b, 0)
	return b
}

func TestDestreamBlocksRecordsDigestOnHashMismatch(t *testing.T) {
	block0 := buildVerifiedBlock(0, [20]byte{}, []byte("payload"))

	comp := &CompressionRecord{
		Encryption:     EncryptionNone,
		Compression:    CompressionCompressed,
		FirstBlockSize: uint32(len(block0)),
		FirstBlockHash: [20]byte{0xff}, // deliberately wrong
	}

	var out strings.Builder
	var diag Diagnostics
	if _, err := DestreamBlocks(block0, 0, comp, nil, &out, &diag); err != nil {
		t.Fatalf("DestreamBlocks failed: %v", err)
	}

	var mismatch *Diagnostic
	for i := range diag {
		if diag[i].Kind == DiagHashMismatch {
			mismatch = &diag[i]
		}
	}
	if mismatch == nil {
		t.Fatal("expected a HashMismatch diagnostic")
	}
	if mismatch.Fatal {
		t.Error("HashMismatch must be non-fatal per the error handling design")
	}
	if mismatch.Digest == nil {
		t.Fatal("HashMismatch diagnostic carries no Digest")
	}
	want := sha1.Sum(block0)
	if !mismatch.Digest.Matches(want) {
		t.Errorf("Digest = %s, want the sha1 of the full decrypted block", mismatch.Digest.String())
	}
}
