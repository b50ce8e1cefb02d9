package xex2

import (
	"bytes"
	"encoding/binary"
)

// scanCap bounds the signature hunt to the first 50 MiB of input, per
// spec.md §4.I.
const scanCap = 50 * 1024 * 1024

var (
	sigPNG  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	sigJPEG = []byte{0xFF, 0xD8, 0xFF}
	sigDDS  = []byte{0x44, 0x44, 0x53, 0x20} // "DDS "
	sigXPR2 = []byte("XPR2")
	sigXPR0 = []byte("XPR0")
	sigBMP  = []byte("BM")
	sigGIF  = []byte("GIF8")
	sigIEND = []byte("IEND")
)

// classifySignature identifies the content type of a resource's leading
// bytes, for resource-directory entries whose bytes were recovered
// out-of-band (component I applied to an already-located byte range).
func classifySignature(data []byte) ResourceKind {
	switch {
	case bytes.HasPrefix(data, sigPNG):
		return ResourcePNG
	case bytes.HasPrefix(data, sigJPEG):
		return ResourceJPEG
	case bytes.HasPrefix(data, sigDDS):
		return ResourceDDS
	case bytes.HasPrefix(data, sigXPR2):
		return ResourceXPR2
	case bytes.HasPrefix(data, sigXPR0):
		return ResourceXPR0
	case bytes.HasPrefix(data, sigBMP):
		return ResourceBMP
	case bytes.HasPrefix(data, sigGIF):
		return ResourceGIF
	default:
		return ResourceUnknownKind
	}
}

// ScanEmbeddedImages performs the signature-driven linear scan described
// in spec.md §4.I over the first 50 MiB of buf, recognizing PNG, JPEG,
// DDS, XPR2 and XPR0 payloads. Every returned entry satisfies the
// signature-scanner bounds property: offset+size <= len(buf), and buf at
// offset begins with the format's magic.
func ScanEmbeddedImages(buf []byte) []ResourceEntry {
	limit := len(buf)
	if limit > scanCap {
		limit = scanCap
	}
	window := buf[:limit]

	var found []ResourceEntry
	pos := 0
	for pos < len(window) {
		advance := 1
		if entry, size, ok := tryMatchAt(window, pos); ok {
			found = append(found, entry)
			advance = size
			if advance <= 0 {
				advance = 1
			}
		}
		pos += advance
	}
	return found
}

func tryMatchAt(buf []byte, pos int) (ResourceEntry, int, bool) {
	switch {
	case bytes.HasPrefix(buf[pos:], sigPNG):
		return matchPNG(buf, pos)
	case bytes.HasPrefix(buf[pos:], sigJPEG):
		return matchJPEG(buf, pos)
	case bytes.HasPrefix(buf[pos:], sigDDS):
		return matchDDS(buf, pos)
	case bytes.HasPrefix(buf[pos:], sigXPR2):
		return matchXPR(buf, pos, ResourceXPR2)
	case bytes.HasPrefix(buf[pos:], sigXPR0):
		return matchXPR(buf, pos, ResourceXPR0)
	default:
		return ResourceEntry{}, 0, false
	}
}

// matchPNG scans forward for the IEND chunk id and includes the 8 bytes
// (length+CRC) that follow it, per spec.md §4.I.
func matchPNG(buf []byte, pos int) (ResourceEntry, int, bool) {
	idx := bytes.Index(buf[pos:], sigIEND)
	if idx < 0 {
		return ResourceEntry{}, 0, false
	}
	end := pos + idx + len(sigIEND) + 8
	if end > len(buf) {
		return ResourceEntry{}, 0, false
	}
	size := end - pos
	return ResourceEntry{Name: "png", Size: uint32(size), Data: buf[pos:end], Kind: ResourcePNG}, size, true
}

// matchJPEG performs a structural marker walk: length-prefixed segments,
// 0xFFDA starts entropy-coded data terminated by 0xFFD9, restart markers
// (0xFFD0-0xFFD7) carry no length. Rejects anything whose marker after
// FFD8 isn't an APPn/DQT/SOFn segment.
func matchJPEG(buf []byte, pos int) (ResourceEntry, int, bool) {
	if pos+4 > len(buf) {
		return ResourceEntry{}, 0, false
	}
	first := buf[pos+3]
	validStart := (first >= 0xE0 && first <= 0xEF) || first == 0xDB || (first >= 0xC0 && first <= 0xC3)
	if !validStart {
		return ResourceEntry{}, 0, false
	}

	i := pos + 2 // at the first marker's 0xFF
	for i+1 < len(buf) {
		if buf[i] != 0xFF {
			return ResourceEntry{}, 0, false
		}
		marker := buf[i+1]
		switch {
		case marker == 0xD8 || marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			// SOI / TEM / restart markers: no length field.
			i += 2
		case marker == 0xD9:
			// EOI.
			end := i + 2
			size := end - pos
			return ResourceEntry{Name: "jpeg", Size: uint32(size), Data: buf[pos:end], Kind: ResourceJPEG}, size, true
		case marker == 0xDA:
			// Start of scan: length-prefixed header, then entropy-coded
			// data until the next non-stuffed 0xFFD9 (or another marker).
			if i+4 > len(buf) {
				return ResourceEntry{}, 0, false
			}
			segLen := int(binary.BigEndian.Uint16(buf[i+2 : i+4]))
			i += 2 + segLen
			for i+1 < len(buf) {
				if buf[i] == 0xFF && buf[i+1] != 0x00 && !(buf[i+1] >= 0xD0 && buf[i+1] <= 0xD7) {
					break
				}
				i++
			}
		default:
			if i+4 > len(buf) {
				return ResourceEntry{}, 0, false
			}
			segLen := int(binary.BigEndian.Uint16(buf[i+2 : i+4]))
			if segLen < 2 {
				return ResourceEntry{}, 0, false
			}
			i += 2 + segLen
		}
	}
	return ResourceEntry{}, 0, false
}

// matchDDS validates the 124-byte DDS_HEADER length field, reads
// dwPitchOrLinearSize for the total size, and sanity-checks the
// dimensions before accepting the match. DDS header fields are
// little-endian in every real DDS file, regardless of platform.
func matchDDS(buf []byte, pos int) (ResourceEntry, int, bool) {
	if pos+128 > len(buf) {
		return ResourceEntry{}, 0, false
	}
	headerLen := binary.LittleEndian.Uint32(buf[pos+4 : pos+8])
	if headerLen != 124 {
		return ResourceEntry{}, 0, false
	}
	height := binary.LittleEndian.Uint32(buf[pos+4+8 : pos+4+12])
	width := binary.LittleEndian.Uint32(buf[pos+4+12 : pos+4+16])
	if width < 1 || width > 4096 || height < 1 || height > 4096 {
		return ResourceEntry{}, 0, false
	}
	pitchOrLinear := binary.LittleEndian.Uint32(buf[pos+4+16 : pos+4+20])
	size := 128 + int(pitchOrLinear)
	if size <= 0 || pos+size > len(buf) {
		return ResourceEntry{}, 0, false
	}
	return ResourceEntry{Name: "dds", Size: uint32(size), Data: buf[pos : pos+size], Kind: ResourceDDS}, size, true
}

// matchXPR trusts the embedded total size at offset +4, sanity-capped at
// 10 MiB.
func matchXPR(buf []byte, pos int, kind ResourceKind) (ResourceEntry, int, bool) {
	if pos+8 > len(buf) {
		return ResourceEntry{}, 0, false
	}
	total := binary.BigEndian.Uint32(buf[pos+4 : pos+8])
	const capSize = 10 * 1024 * 1024
	if total == 0 || total > capSize {
		return ResourceEntry{}, 0, false
	}
	size := int(total)
	if pos+size > len(buf) {
		return ResourceEntry{}, 0, false
	}
	name := "xpr2"
	if kind == ResourceXPR0 {
		name = "xpr0"
	}
	return ResourceEntry{Name: name, Size: uint32(size), Data: buf[pos : pos+size], Kind: kind}, size, true
}

// isPEExecutable reports whether data begins with the "MZ" DOS signature.
func isPEExecutable(data []byte) bool {
	return len(data) >= 2 && data[0] == 'M' && data[1] == 'Z'
}

// peHeaderOffset reads the e_lfanew field at 0x3C and validates the
// "PE\0\0" signature at that offset.
func peHeaderOffset(data []byte) (int, bool) {
	if len(data) < 0x40 {
		return 0, false
	}
	off := int(binary.LittleEndian.Uint32(data[0x3C:0x40]))
	if off < 0 || off+4 > len(data) {
		return 0, false
	}
	if !bytes.Equal(data[off:off+4], []byte{'P', 'E', 0, 0}) {
		return 0, false
	}
	return off, true
}
