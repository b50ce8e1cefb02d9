package xex2

import (
	"bytes"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// Result bundles everything a caller needs after a successful (or
// partially successful, non-fatally) extraction: the parsed container
// metadata, the recovered PE image bytes, and the ordered diagnostic
// log produced along the way.
type Result struct {
	Descriptor  *ContainerDescriptor
	PE          []byte
	Diagnostics Diagnostics
}

// Extract runs the full pipeline described in spec.md §2: parse the
// container header and optional-header list, decrypt the session key,
// recover the PE image (raw passthrough for Zeroed/Raw payloads, the
// destream-then-LZX-decompress path for Compressed payloads), then run
// the two payload-independent post-passes — the XDBF title scan and the
// embedded-image scan — against the recovered bytes. A fatal diagnostic
// aborts and is also returned as an error; non-fatal diagnostics are
// only ever recorded on the returned log.
func Extract(buf []byte, logger hclog.Logger) (*Result, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	c := NewContainer(buf, logger)
	desc, err := c.ParseHeader()
	if err != nil {
		return &Result{Descriptor: desc, Diagnostics: c.Diagnostics()}, err
	}
	diag := c.Diagnostics()

	if desc.Compression != nil && desc.Compression.Compression == CompressionDeltaCompressed {
		diag.Fatalf(DiagUnsupportedCompr, "delta-compressed xex is not supported")
		return &Result{Descriptor: desc, Diagnostics: diag}, ErrUnsupportedDelta
	}

	var cbc *cbcState
	if desc.Compression != nil && desc.Compression.Encryption == EncryptionAES {
		if desc.SessionKey == nil {
			diag.Fatalf(DiagDecodeWarning, "payload is encrypted but no session key was recovered")
			return &Result{Descriptor: desc, Diagnostics: diag}, fmt.Errorf("xex2: missing session key for encrypted payload")
		}
		cbc, err = newCBCState(desc.SessionKey[:])
		if err != nil {
			return &Result{Descriptor: desc, Diagnostics: diag}, err
		}
	}

	var pe []byte
	switch {
	case desc.Compression == nil || desc.Compression.Compression == CompressionRaw || desc.Compression.Compression == CompressionZeroed:
		var out bytes.Buffer
		if _, err := ExtractRaw(buf, desc.DataOffset, desc.FileHeader.ImageSize, cbc, &out); err != nil {
			diag.Fatalf(DiagTruncated, "raw extraction: %v", err)
			return &Result{Descriptor: desc, Diagnostics: diag}, err
		}
		pe = out.Bytes()

	case desc.Compression.Compression == CompressionCompressed:
		pe, err = ExtractCompressed(buf, desc.DataOffset, desc.FileHeader.ImageSize, desc.Compression, cbc, &diag)
		if err != nil {
			return &Result{Descriptor: desc, Diagnostics: diag}, err
		}

	default:
		diag.Warn(DiagUnsupportedCompr, "compression type %s is not recognized; payload left unextracted", desc.Compression.Compression)
	}

	ResolveResourceData(desc, buf, pe)

	if title, err := ExtractXDBFTitle(pe); err == nil {
		desc.Title = title
	} else {
		diag.Warn(DiagDecodeWarning, "xdbf title: %v", err)
	}

	for _, img := range ScanEmbeddedImages(pe) {
		desc.Resources = append(desc.Resources, img)
	}

	logger.Info("extraction complete", "image_size", len(pe), "resources", len(desc.Resources), "fatal", diag.HasFatal())

	return &Result{Descriptor: desc, PE: pe, Diagnostics: diag}, nil
}
