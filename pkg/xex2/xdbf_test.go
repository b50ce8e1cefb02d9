package xex2

import (
	"encoding/binary"
	"testing"
)

// buildXDBFTitleBlob assembles a minimal XDBF blob with a single
// namespace=1/resource=0x8000 string entry holding the UTF-16BE, NUL
// terminated title.
func buildXDBFTitleBlob(title string) []byte {
	units := []uint16{}
	for _, r := range title {
		units = append(units, uint16(r))
	}
	units = append(units, 0)

	const entryCount = 1
	const freeCount = 0
	entryTableEnd := xdbfHeaderSize + entryCount*xdbfEntrySize
	dataStart := entryTableEnd + freeCount*8
	dataLen := len(units) * 2

	blob := make([]byte, dataStart+dataLen)
	copy(blob[0:4], xdbfMagic)
	binary.BigEndian.PutUint32(blob[4:8], 1)           // version
	binary.BigEndian.PutUint32(blob[8:12], entryCount) // entry_count
	binary.BigEndian.PutUint32(blob[12:16], freeCount) // free_count

	off := xdbfHeaderSize
	binary.BigEndian.PutUint16(blob[off:off+2], xdbfNamespace)
	binary.BigEndian.PutUint64(blob[off+2:off+10], xdbfTitleEN)
	binary.BigEndian.PutUint32(blob[off+10:off+14], 0)
	binary.BigEndian.PutUint32(blob[off+14:off+18], uint32(dataLen))

	for i, u := range units {
		binary.BigEndian.PutUint16(blob[dataStart+i*2:dataStart+i*2+2], u)
	}

	return blob
}

func TestExtractXDBFTitle(t *testing.T) {
	blob := buildXDBFTitleBlob("Halo")
	title, err := ExtractXDBFTitle(blob)
	if err != nil {
		t.Fatalf("ExtractXDBFTitle failed: %v", err)
	}
	if title != "Halo" {
		t.Errorf("title = %q, want %q", title, "Halo")
	}
}

func TestExtractXDBFTitleFallsBackToXSTC(t *testing.T) {
	// No XDBF magic at all: scanXSTCFallback must locate an embedded
	// XSTC record directly.
	units := []uint16{'H', 'i', 0}
	pool := make([]byte, len(units)*2)
	for i, u := range units {
		binary.BigEndian.PutUint16(pool[i*2:i*2+2], u)
	}

	const entryCount = 1
	header := make([]byte, 20)
	copy(header[0:4], "XSTC")
	binary.BigEndian.PutUint32(header[16:20], entryCount)

	entries := make([]byte, 8)
	binary.BigEndian.PutUint32(entries[0:4], 0x1234) // id, unchecked
	binary.BigEndian.PutUint32(entries[4:8], 0)       // offset into pool

	junkPrefix := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	blob := append(append(append(append([]byte{}, junkPrefix...), header...), entries...), pool...)

	title, err := ExtractXDBFTitle(blob)
	if err != nil {
		t.Fatalf("ExtractXDBFTitle fallback failed: %v", err)
	}
	if title != "Hi" {
		t.Errorf("title = %q, want %q", title, "Hi")
	}
}

func TestExtractXDBFTitleNoRecordFound(t *testing.T) {
	_, err := ExtractXDBFTitle([]byte{0x01, 0x02, 0x03})
	if err == nil {
		t.Error("expected an error when no XDBF or XSTC record is present")
	}
}
