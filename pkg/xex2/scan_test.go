package xex2

import (
	"encoding/binary"
	"testing"
)

func TestScanEmbeddedImagesFindsPNG(t *testing.T) {
	var buf []byte
	buf = append(buf, 0x00, 0x01, 0x02) // leading noise
	buf = append(buf, sigPNG...)
	buf = append(buf, make([]byte, 20)...) // fake chunk data
	buf = append(buf, []byte("IEND")...)
	buf = append(buf, make([]byte, 8)...) // length+CRC
	buf = append(buf, 0xFF, 0xFF)         // trailing noise

	found := ScanEmbeddedImages(buf)
	if len(found) != 1 {
		t.Fatalf("found %d entries, want 1", len(found))
	}
	if found[0].Kind != ResourcePNG {
		t.Errorf("Kind = %s, want PNG", found[0].Kind)
	}
	wantSize := uint32(len(sigPNG) + 20 + 4 + 8)
	if found[0].Size != wantSize {
		t.Errorf("Size = %d, want %d", found[0].Size, wantSize)
	}
}

func TestScanEmbeddedImagesFindsDDS(t *testing.T) {
	header := make([]byte, 128)
	copy(header[0:4], sigDDS)
	binary.LittleEndian.PutUint32(header[4:8], 124) // dwSize
	binary.LittleEndian.PutUint32(header[12:16], 64) // dwHeight
	binary.LittleEndian.PutUint32(header[16:20], 32) // dwWidth
	binary.LittleEndian.PutUint32(header[20:24], 256) // dwPitchOrLinearSize

	buf := append(append([]byte{}, header...), make([]byte, 256)...)

	found := ScanEmbeddedImages(buf)
	if len(found) != 1 {
		t.Fatalf("found %d entries, want 1", len(found))
	}
	if found[0].Kind != ResourceDDS {
		t.Errorf("Kind = %s, want DDS", found[0].Kind)
	}
	if found[0].Size != 128+256 {
		t.Errorf("Size = %d, want %d", found[0].Size, 128+256)
	}
}

func TestScanEmbeddedImagesRejectsOversizedDDS(t *testing.T) {
	header := make([]byte, 128)
	copy(header[0:4], sigDDS)
	binary.LittleEndian.PutUint32(header[4:8], 124)
	binary.LittleEndian.PutUint32(header[12:16], 8192) // out of [1,4096] bounds
	binary.LittleEndian.PutUint32(header[16:20], 8192)

	found := ScanEmbeddedImages(header)
	if len(found) != 0 {
		t.Errorf("found %d entries, want 0 for an out-of-bounds DDS header", len(found))
	}
}

func TestScanEmbeddedImagesBoundsNeverExceedBuffer(t *testing.T) {
	// A PNG signature with no IEND anywhere in the buffer must not match.
	buf := append(append([]byte{}, sigPNG...), make([]byte, 50)...)
	for _, entry := range ScanEmbeddedImages(buf) {
		if int(entry.Size) > len(buf) {
			t.Fatalf("entry size %d exceeds buffer length %d", entry.Size, len(buf))
		}
	}
}

func TestClassifySignature(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want ResourceKind
	}{
		{"png", sigPNG, ResourcePNG},
		{"jpeg", sigJPEG, ResourceJPEG},
		{"bmp", []byte("BM"), ResourceBMP},
		{"gif", []byte("GIF8"), ResourceGIF},
		{"xpr2", []byte("XPR2"), ResourceXPR2},
		{"unknown", []byte{0x01, 0x02}, ResourceUnknownKind},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := classifySignature(c.data); got != c.want {
				t.Errorf("classifySignature(%q) = %s, want %s", c.name, got, c.want)
			}
		})
	}
}
