package xex2

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// Container drives a single parse pass over one XEX2 byte buffer. It
// mirrors the teacher package's Reader: the caller supplies a byte
// source (here, an in-memory buffer — XEX2 headers are seeked at
// arbitrary offsets throughout the parse, so a streaming io.Reader isn't
// a fit), and the Container is used for exactly one extraction.
type Container struct {
	buf         []byte
	r           *beReader
	logger      hclog.Logger
	diagnostics Diagnostics
}

// NewContainer wraps buf for parsing. A nil logger defaults to a null
// logger, matching format_2025.NewReader's defaulting behavior.
func NewContainer(buf []byte, logger hclog.Logger) *Container {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Container{buf: buf, r: newBEReader(buf), logger: logger}
}

// Diagnostics returns the ordered diagnostic log accumulated so far.
func (c *Container) Diagnostics() Diagnostics { return c.diagnostics }

// ParseHeader walks the 24-byte container header, the file-header
// region, and both optional-header passes. It does not touch the
// payload at data_offset — call Extract for that.
func (c *Container) ParseHeader() (*ContainerDescriptor, error) {
	magic, err := c.r.bytesAt(0, 4)
	if err != nil {
		c.diagnostics.Fatalf(DiagTruncated, "container shorter than the fixed 24-byte header")
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	if string(magic) != magicXEX2 {
		c.diagnostics.Fatalf(DiagBadMagic, "magic %q != %q", magic, magicXEX2)
		return nil, ErrBadMagic
	}

	if err := c.r.require(0, headerSize); err != nil {
		c.diagnostics.Fatalf(DiagTruncated, "container shorter than the fixed 24-byte header")
		return nil, ErrTruncated
	}

	desc := &ContainerDescriptor{}
	copy(desc.Magic[:], magic)

	moduleFlags, err := c.r.u32At(4)
	if err != nil {
		return nil, err
	}
	desc.ModuleFlags = moduleFlags

	dataOffset, err := c.r.u32At(8)
	if err != nil {
		return nil, err
	}
	desc.DataOffset = dataOffset

	fileHeaderOffset, err := c.r.u32At(12)
	if err != nil {
		return nil, err
	}
	desc.FileHeaderOffset = fileHeaderOffset

	optHeaderCount, err := c.r.u32At(16)
	if err != nil {
		return nil, err
	}
	desc.OptionalHeaderCount = optHeaderCount

	c.logger.Debug("parsed container header",
		"data_offset", dataOffset, "file_header_offset", fileHeaderOffset,
		"optional_header_count", optHeaderCount)

	if err := c.readFileHeader(desc); err != nil {
		return nil, err
	}

	if err := c.readSessionKey(desc); err != nil {
		// Session key decode failure is scoped: many containers carry
		// no encrypted payload at all, so a missing/garbled key region
		// should not abort the whole parse.
		c.diagnostics.Warn(DiagDecodeWarning, "session key: %v", err)
	}

	if err := c.walkOptionalHeaders(desc); err != nil {
		return nil, err
	}

	return desc, nil
}

// readFileHeader reads the six fixed fields at their non-monotonic
// sub-offsets within the file-header region (spec.md §4.C).
func (c *Container) readFileHeader(desc *ContainerDescriptor) error {
	base := int(desc.FileHeaderOffset)

	fields := []struct {
		off int
		dst *uint32
	}{
		{offLoadAddress, &desc.FileHeader.LoadAddress},
		{offAllowedMediaMask, &desc.FileHeader.AllowedMediaMask},
		{offImageSize, &desc.FileHeader.ImageSize},
		{offImageFlags, &desc.FileHeader.ImageFlags},
		{offGameRegion, &desc.FileHeader.GameRegion},
		{offHeaderReserved, &desc.FileHeader.HeaderReserved},
	}

	for _, f := range fields {
		v, err := c.r.u32At(base + f.off)
		if err != nil {
			c.diagnostics.Fatalf(DiagTruncated, "file header field at offset 0x%x: %v", f.off, err)
			return fmt.Errorf("%w: file header field at 0x%x", ErrTruncated, f.off)
		}
		*f.dst = v
	}
	return nil
}

// readSessionKey decrypts the 16-byte session key with AES-ECB under the
// all-zero retail key.
func (c *Container) readSessionKey(desc *ContainerDescriptor) error {
	base := int(desc.FileHeaderOffset) + offSessionKey
	encrypted, err := c.r.bytesAt(base, 16)
	if err != nil {
		return err
	}
	decrypted, err := aesECBDecryptBlock(retailKey, encrypted)
	if err != nil {
		return err
	}
	var key [16]byte
	copy(key[:], decrypted)
	desc.SessionKey = &key
	return nil
}

// walkOptionalHeaders runs the two linear passes over the (id, datum)
// list beginning at offset 24, per spec.md §4.C: pass 1 dispatches every
// identifier's decoder and captures image base / resource directory
// offset; pass 2 runs only the resource-directory decoder, since it may
// depend on an image base that appears later in the list.
func (c *Container) walkOptionalHeaders(desc *ContainerDescriptor) error {
	n := int(desc.OptionalHeaderCount)
	desc.OptionalHeaders = make([]OptionalHeader, 0, n)

	for i := 0; i < n; i++ {
		off := headerSize + i*8
		id, err := c.r.u32At(off)
		if err != nil {
			c.diagnostics.Fatalf(DiagTruncated, "optional header entry %d id: %v", i, err)
			return ErrTruncated
		}
		datum, err := c.r.u32At(off + 4)
		if err != nil {
			c.diagnostics.Fatalf(DiagTruncated, "optional header entry %d datum: %v", i, err)
			return ErrTruncated
		}

		entry := OptionalHeader{ID: id, Datum: datum}

		// A single bad entry is isolated per §7 DecodeWarning; the
		// decoder itself never panics — decodeOptionalHeader recovers
		// internally into an error return.
		decoded, err := c.decodeOptionalHeader(desc, id, datum)
		if err != nil {
			c.diagnostics.Warn(DiagDecodeWarning, "optional header 0x%08x: %v", id, err)
		} else {
			entry.Decoded = decoded
		}

		desc.OptionalHeaders = append(desc.OptionalHeaders, entry)

		switch id {
		case hdrImageBaseAddress:
			desc.ImageBaseAddress = datum
		case hdrResourceDirectory:
			desc.ResourceDirectoryAddr = datum
		}
	}

	// Pass 2: resource directory only, now that image base is final.
	for _, entry := range desc.OptionalHeaders {
		if entry.ID != hdrResourceDirectory {
			continue
		}
		if err := c.decodeResourceDirectory(desc, entry.Datum); err != nil {
			c.diagnostics.Warn(DiagDecodeWarning, "resource directory: %v", err)
		}
	}

	return nil
}
