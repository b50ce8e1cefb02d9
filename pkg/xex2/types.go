package xex2

// EncryptionType is the closed set of payload encryption regimes carried
// in the compression record.
type EncryptionType uint16

const (
	EncryptionNone EncryptionType = 0
	EncryptionAES  EncryptionType = 1
)

func (e EncryptionType) String() string {
	if e == EncryptionAES {
		return "Encrypted"
	}
	return "Unencrypted"
}

// CompressionType is the closed set of payload compression regimes.
type CompressionType uint16

const (
	CompressionZeroed          CompressionType = 0
	CompressionRaw             CompressionType = 1
	CompressionCompressed      CompressionType = 2
	CompressionDeltaCompressed CompressionType = 3
)

func (c CompressionType) String() string {
	switch c {
	case CompressionZeroed:
		return "Zeroed"
	case CompressionRaw:
		return "Raw"
	case CompressionCompressed:
		return "Compressed"
	case CompressionDeltaCompressed:
		return "DeltaCompressed"
	default:
		return "Unknown"
	}
}

// ResourceKind is the closed set of content types the embedded-image
// scanner can identify.
type ResourceKind string

const (
	ResourcePNG         ResourceKind = "PNG"
	ResourceJPEG        ResourceKind = "JPEG"
	ResourceDDS         ResourceKind = "DDS"
	ResourceBMP         ResourceKind = "BMP"
	ResourceGIF         ResourceKind = "GIF"
	ResourceXPR2        ResourceKind = "XPR2"
	ResourceXPR0        ResourceKind = "XPR0"
	ResourcePEEmbedded  ResourceKind = "PE_EMBEDDED"
	ResourceUnknownKind ResourceKind = "Unknown"
)

// ExecutionID is the optional immutable record decoded from the
// 0x00040006 optional header.
type ExecutionID struct {
	MediaID     uint32 `json:"media_id"`
	Version     uint32 `json:"version"`
	BaseVersion uint32 `json:"base_version"`
	TitleID     uint32 `json:"title_id"`
	Platform    uint8  `json:"platform"`
	Executable  uint8  `json:"executable_type"`
	DiscNumber  uint8  `json:"disc_number"`
	DiscCount   uint8  `json:"disc_count"`
	SaveGameID  uint32 `json:"savegame_id"`
}

// LibraryReference is one entry of the library-versions optional header.
type LibraryReference struct {
	Name         string `json:"name"`
	Major        uint16 `json:"major"`
	Minor        uint16 `json:"minor"`
	Build        uint16 `json:"build"`
	Qfe          uint16 `json:"qfe"`
	Unapproved   bool   `json:"unapproved"`
}

// CompressionRecord describes how the payload following data_offset is
// stored: plain, encrypted, raw, or LZX-compressed.
type CompressionRecord struct {
	Encryption       EncryptionType  `json:"encryption"`
	Compression      CompressionType `json:"compression"`
	WindowSize       uint32          `json:"window_size,omitempty"`
	FirstBlockSize   uint32          `json:"first_block_size,omitempty"`
	FirstBlockHash   [20]byte        `json:"-"`
	FirstBlockHashOK bool            `json:"first_block_hash_present"`
	RawHeader        []byte          `json:"-"`
}

// VerifyEnabled reports whether the first-block hash signals that
// block-hash verification should run (spec: "enabled" means the stored
// hash is not all zero).
func (c *CompressionRecord) VerifyEnabled() bool {
	for _, b := range c.FirstBlockHash {
		if b != 0 {
			return true
		}
	}
	return false
}

// OptionalHeader is one (identifier, datum) entry of the optional-header
// list, plus whatever §4.D decoded from it (nil if the identifier has no
// decoder, or if decoding that entry failed — see DecodeWarning).
type OptionalHeader struct {
	ID      uint32 `json:"id"`
	Datum   uint32 `json:"datum"`
	Decoded any    `json:"decoded,omitempty"`
}

// ResourceEntry is one entry of the XDBF/resource-directory scan.
type ResourceEntry struct {
	Name           string       `json:"name"`
	VirtualAddress uint32       `json:"virtual_address"`
	Size           uint32       `json:"size"`
	Data           []byte       `json:"-"`
	Kind           ResourceKind `json:"kind"`
}

// FileHeader carries the six fixed fields read from the non-monotonic
// on-disk sub-offsets within the file-header region.
type FileHeader struct {
	LoadAddress      uint32 `json:"load_address"`
	ImageSize        uint32 `json:"image_size"`
	GameRegion       uint32 `json:"game_region"`
	ImageFlags       uint32 `json:"image_flags"`
	AllowedMediaMask uint32 `json:"allowed_media_mask"`
	HeaderReserved   uint32 `json:"-"`
}

// ContainerDescriptor is the top-level record produced by the header
// walker: everything an external collaborator needs to locate, decrypt,
// decompress and label the embedded PE image.
type ContainerDescriptor struct {
	Magic                 [4]byte            `json:"-"`
	ModuleFlags           uint32              `json:"module_flags"`
	DataOffset            uint32              `json:"data_offset"`
	FileHeaderOffset      uint32              `json:"file_header_offset"`
	OptionalHeaderCount   uint32              `json:"optional_header_count"`
	FileHeader            FileHeader          `json:"file_header"`
	OptionalHeaders       []OptionalHeader    `json:"optional_headers"`
	Libraries             []LibraryReference  `json:"libraries,omitempty"`
	BoundPath             *string             `json:"bound_path,omitempty"`
	Compression           *CompressionRecord  `json:"compression,omitempty"`
	SessionKey            *[16]byte           `json:"-"`
	ImageBaseAddress      uint32              `json:"image_base_address"`
	ResourceDirectoryAddr uint32              `json:"resource_directory_addr"`
	Resources             []ResourceEntry     `json:"resources,omitempty"`
	ExecutionID           *ExecutionID        `json:"execution_id,omitempty"`
	Title                 string              `json:"title,omitempty"`
}

// MagicString renders the 4-byte magic as a Go string for error messages.
func (d *ContainerDescriptor) MagicString() string {
	return string(d.Magic[:])
}
