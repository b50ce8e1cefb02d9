package lzx

import "testing"

func TestNewDecoderValidatesWindowSize(t *testing.T) {
	cases := []struct {
		name    string
		window  uint32
		wantErr bool
	}{
		{"min window", 1 << 15, false},
		{"max window", 1 << 21, false},
		{"mid window", 1 << 18, false},
		{"too small", 1 << 14, true},
		{"too large", 1 << 22, true},
		{"not a power of two", (1 << 16) + 1, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewDecoder(c.window, 1)
			if (err != nil) != c.wantErr {
				t.Errorf("NewDecoder(%d) error = %v, wantErr %v", c.window, err, c.wantErr)
			}
		})
	}
}

// TestDecompressUncompressedBlock decodes one hand-assembled uncompressed
// block, matching spec.md's §8 scenario 6 bit layout: a frame header bit
// (0 = no Intel filesize), block type=011 (uncompressed), a 24-bit
// big-endian length, a 12-byte LRU reload (R0=1,R1=2,R2=3), and the raw
// payload bytes.
func TestDecompressUncompressedBlock(t *testing.T) {
	// Bits consumed, MSB-first: 0 (no intel filesize) | 011 (uncompressed)
	// | 000000000000000000000101 (len=5) | 0000 (padding, discarded by
	// align()). Each 16-bit group is stored little-endian (low byte
	// first) per the format's bitstream convention.
	src := []byte{
		0x00, 0x30, // word0 = 0x3000: "0011000000000000"
		0x50, 0x00, // word1 = 0x0050: "0000000001010000" (...101 = len low 3 bits, then pad)
		0x01, 0x00, 0x00, 0x00, // R0 = 1 (little-endian)
		0x02, 0x00, 0x00, 0x00, // R1 = 2
		0x03, 0x00, 0x00, 0x00, // R2 = 3
		'H', 'E', 'L', 'L', 'O',
	}

	dec, err := NewDecoder(1<<15, 1)
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}

	out, err := dec.Decompress(src, 5)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if string(out) != "HELLO" {
		t.Errorf("Decompress = %q, want %q", out, "HELLO")
	}
	if dec.r0 != 1 || dec.r1 != 2 || dec.r2 != 3 {
		t.Errorf("R0,R1,R2 = %d,%d,%d, want 1,2,3", dec.r0, dec.r1, dec.r2)
	}
}

func TestDecodeE8LeavesNonCallBytesUntouched(t *testing.T) {
	b := []byte{0x90, 0x90, 0x01, 0x02, 0x03, 0x04, 0x90, 0x90, 0x90, 0x90, 0x90}
	original := append([]byte(nil), b...)
	decodeE8(b, 0, 12_000_000)
	for i := range b {
		if b[i] != original[i] {
			t.Fatalf("decodeE8 modified a byte sequence containing no 0xE8 opcode at index %d", i)
		}
	}
}

func TestDecodeE8SkipsShortBuffers(t *testing.T) {
	b := []byte{0xe8, 0x01, 0x02, 0x03}
	original := append([]byte(nil), b...)
	decodeE8(b, 0, 12_000_000) // len(b) < 10, must be a no-op
	for i := range b {
		if b[i] != original[i] {
			t.Fatalf("decodeE8 touched a buffer shorter than its 10-byte minimum at index %d", i)
		}
	}
}
