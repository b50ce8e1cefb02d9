package xex2

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

const (
	xdbfMagic       = "XDBF"
	xdbfHeaderSize  = 24
	xdbfEntrySize   = 18
	xdbfNamespace   = 1      // "string" namespace
	xdbfTitleEN     = 0x8000 // "title, English" resource id
)

// xdbfHeader mirrors the 24-byte fixed header: magic(4), version(4),
// entry_count(4), free_count(4), and two trailing reserved/used-size
// words not needed for title extraction.
type xdbfHeader struct {
	version    uint32
	entryCount uint32
	freeCount  uint32
}

// ExtractXDBFTitle implements §4.H: locates the XDBF blob's string table
// entry for namespace 1 ("string"), resource id 0x8000 ("title,
// English"), and decodes it as UTF-16BE. If the entry table doesn't
// contain that resource, it falls back to a linear scan for an XSTC
// record and returns the first non-empty string from its pool.
func ExtractXDBFTitle(blob []byte) (string, error) {
	if len(blob) < xdbfHeaderSize || string(blob[:4]) != xdbfMagic {
		return scanXSTCFallback(blob)
	}

	r := newBEReader(blob)
	version, err := r.u32At(4)
	if err != nil {
		return scanXSTCFallback(blob)
	}
	entryCount, err := r.u32At(8)
	if err != nil {
		return scanXSTCFallback(blob)
	}
	freeCount, err := r.u32At(12)
	if err != nil {
		return scanXSTCFallback(blob)
	}
	hdr := xdbfHeader{version: version, entryCount: entryCount, freeCount: freeCount}

	entryTableEnd := xdbfHeaderSize + int(hdr.entryCount)*xdbfEntrySize
	// The free table's size participates in the data-start arithmetic
	// only; free entries themselves are never parsed (spec.md §9 open
	// question: free entries are irrelevant to title extraction).
	dataStart := entryTableEnd + int(hdr.freeCount)*8

	if entryTableEnd > len(blob) {
		return scanXSTCFallback(blob)
	}

	for i := 0; i < int(hdr.entryCount); i++ {
		off := xdbfHeaderSize + i*xdbfEntrySize
		namespace, err := r.u16At(off)
		if err != nil {
			break
		}
		resourceID, err := r.u64At(off + 2)
		if err != nil {
			break
		}
		entryOffset, err := r.u32At(off + 10)
		if err != nil {
			break
		}
		entryLength, err := r.u32At(off + 14)
		if err != nil {
			break
		}

		if namespace != xdbfNamespace || resourceID != xdbfTitleEN {
			continue
		}

		start := dataStart + int(entryOffset)
		if start < 0 || start > len(blob) {
			continue
		}
		end := start + int(entryLength)
		if end > len(blob) {
			end = len(blob)
		}
		title := decodeUTF16BENulTerminated(blob[start:end])
		if title != "" {
			return title, nil
		}
	}

	return scanXSTCFallback(blob)
}

// decodeUTF16BENulTerminated decodes big-endian UTF-16 code units,
// stopping at a NUL unit or when the input runs out.
func decodeUTF16BENulTerminated(b []byte) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+2 <= len(b); i += 2 {
		u := binary.BigEndian.Uint16(b[i : i+2])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units))
}

var xstcMagic = []byte("XSTC")

// scanXSTCFallback linearly scans blob for an XSTC string-table-config
// record and interprets the bytes following it as a list of (id:u32,
// offset:u32) entries pointing into a UTF-16BE string pool, returning
// the first non-empty string found.
func scanXSTCFallback(blob []byte) (string, error) {
	idx := bytes.Index(blob, xstcMagic)
	if idx < 0 {
		return "", fmt.Errorf("xex2: no XDBF title and no XSTC fallback record found")
	}

	// XSTC record: magic(4), version(4), size(4), default language(4),
	// entry_count(4), then entry_count × (id:u32, offset:u32), followed
	// by the UTF-16BE string pool.
	const xstcHeaderSize = 20
	if idx+xstcHeaderSize > len(blob) {
		return "", fmt.Errorf("xex2: truncated XSTC record")
	}
	entryCount := binary.BigEndian.Uint32(blob[idx+16 : idx+20])
	entriesStart := idx + xstcHeaderSize
	poolStart := entriesStart + int(entryCount)*8

	for i := 0; i < int(entryCount); i++ {
		off := entriesStart + i*8
		if off+8 > len(blob) {
			break
		}
		strOffset := binary.BigEndian.Uint32(blob[off+4 : off+8])
		start := poolStart + int(strOffset)
		if start < 0 || start >= len(blob) {
			continue
		}
		s := decodeUTF16BENulTerminated(blob[start:])
		if s != "" {
			return s, nil
		}
	}

	return "", fmt.Errorf("xex2: XSTC record present but no non-empty string found")
}
