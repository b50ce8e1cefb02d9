package xex2

import (
	"encoding/binary"
	"fmt"
)

// decodeOptionalHeader dispatches identifier id to its §4.D decoder, if
// one exists. A nil, nil return means the identifier has no decoder
// (HasDecoder is a property of the identifier, not the value) — the raw
// (id, datum) pair is still recorded by the caller. An error here is
// always scoped to this single entry: the caller records it as a
// DecodeWarning and continues the walk.
func (c *Container) decodeOptionalHeader(desc *ContainerDescriptor, id, datum uint32) (decoded any, err error) {
	// A malformed entry must never abort the walk; guard against a
	// decoder panicking on adversarial offsets (e.g. an offset that
	// overflows an int on a 32-bit build).
	defer func() {
		if r := recover(); r != nil {
			decoded = nil
			err = fmt.Errorf("panic decoding optional header: %v", r)
		}
	}()

	switch id {
	case hdrExecutionID:
		return c.decodeExecutionID(desc, int(datum))
	case hdrImageBaseAddress:
		return datum, nil
	case hdrEntryPointB:
		return datum, nil
	case hdrImageChecksumTS:
		return datum, nil
	case hdrLibraryVersions:
		return c.decodeLibraryVersions(desc, int(datum))
	case hdrResourceDirectory:
		// Deferred to pass 2 (decodeResourceDirectory); nothing to do here.
		return nil, nil
	case hdrCompressionInfo:
		return c.decodeCompressionInfo(desc, int(datum))
	case hdrBoundPath:
		return c.decodeBoundPath(desc, int(datum))
	default:
		// Known-but-undecoded or genuinely unknown identifier: preserved,
		// not decoded.
		return nil, nil
	}
}

// decodeExecutionID reads the Execution ID record. The real on-disk
// record is 24 bytes: four leading 32-bit identity fields (media, version,
// base version, title) plus four 8-bit platform/disc fields and a
// trailing 32-bit save-game id, matching every field §3 models.
func (c *Container) decodeExecutionID(desc *ContainerDescriptor, off int) (*ExecutionID, error) {
	b, err := c.r.bytesAt(off, 24)
	if err != nil {
		return nil, err
	}
	id := &ExecutionID{
		MediaID:     binary.BigEndian.Uint32(b[0:4]),
		Version:     binary.BigEndian.Uint32(b[4:8]),
		BaseVersion: binary.BigEndian.Uint32(b[8:12]),
		TitleID:     binary.BigEndian.Uint32(b[12:16]),
		Platform:    b[16],
		Executable:  b[17],
		DiscNumber:  b[18],
		DiscCount:   b[19],
		SaveGameID:  binary.BigEndian.Uint32(b[20:24]),
	}
	desc.ExecutionID = id
	return id, nil
}

// decodeLibraryVersions reads the u32 total section length (which counts
// the length word itself) followed by 16-byte library entries (8-byte
// name + 4×u16 version fields) filling the rest of that length.
func (c *Container) decodeLibraryVersions(desc *ContainerDescriptor, off int) ([]LibraryReference, error) {
	length, err := c.r.u32At(off)
	if err != nil {
		return nil, err
	}
	if length < 4 {
		return nil, fmt.Errorf("library section length %d too small", length)
	}
	count := (int(length) - 4) / 16
	libs := make([]LibraryReference, 0, count)

	base := off + 4
	for i := 0; i < count; i++ {
		entryOff := base + i*16
		name, err := c.r.asciiAt(entryOff, 8)
		if err != nil {
			return nil, err
		}
		versions := make([]uint16, 4)
		for j := 0; j < 4; j++ {
			v, err := c.r.u16At(entryOff + 8 + j*2)
			if err != nil {
				return nil, err
			}
			versions[j] = v
		}
		libs = append(libs, LibraryReference{
			Name:       name,
			Major:      versions[0],
			Minor:      versions[1],
			Build:      versions[2],
			Qfe:        versions[3] &^ 0x8000,
			Unapproved: versions[3]&0x8000 != 0,
		})
	}

	desc.Libraries = libs
	return libs, nil
}

// decodeBoundPath reads the u32 length followed by that many ASCII bytes,
// NUL-trimmed.
func (c *Container) decodeBoundPath(desc *ContainerDescriptor, off int) (string, error) {
	length, err := c.r.u32At(off)
	if err != nil {
		return "", err
	}
	s, err := c.r.asciiAt(off+4, int(length))
	if err != nil {
		return "", err
	}
	desc.BoundPath = &s
	return s, nil
}

// decodeCompressionInfo reads the u32 length followed by that many raw
// bytes, then interprets them as encryption type (u16), compression type
// (u16), and — for CompressionCompressed — window size (u32), first-block
// length (u32) and first-block SHA-1 (20 bytes).
func (c *Container) decodeCompressionInfo(desc *ContainerDescriptor, off int) (*CompressionRecord, error) {
	length, err := c.r.u32At(off)
	if err != nil {
		return nil, err
	}
	raw, err := c.r.bytesAt(off+4, int(length))
	if err != nil {
		return nil, err
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("compression info too short: %d bytes", len(raw))
	}

	rec := &CompressionRecord{
		Encryption:  EncryptionType(binary.BigEndian.Uint16(raw[0:2])),
		Compression: CompressionType(binary.BigEndian.Uint16(raw[2:4])),
		RawHeader:   append([]byte(nil), raw...),
	}

	if rec.Compression == CompressionCompressed {
		if len(raw) < 4+4+4+20 {
			return nil, fmt.Errorf("compressed compression info too short: %d bytes", len(raw))
		}
		rec.WindowSize = binary.BigEndian.Uint32(raw[4:8])
		rec.FirstBlockSize = binary.BigEndian.Uint32(raw[8:12])
		copy(rec.FirstBlockHash[:], raw[12:32])
		rec.FirstBlockHashOK = true
	}

	desc.Compression = rec
	return rec, nil
}
