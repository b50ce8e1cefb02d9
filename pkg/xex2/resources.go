package xex2

import "fmt"

// resourceEntrySize is the on-disk size of one resource-directory entry:
// an 8-byte ASCII name, a 4-byte virtual address and a 4-byte size.
const resourceEntrySize = 16

// decodeResourceDirectory implements the deferred pass-2 decoder for the
// 0x000002FF optional header (spec.md §4.C, §4.I): a leading u32 total
// directory size (including itself), followed by a packed run of
// 16-byte (name, virtual_address, size) entries.
func (c *Container) decodeResourceDirectory(desc *ContainerDescriptor, addr uint32) error {
	off := int(addr)
	total, err := c.r.u32At(off)
	if err != nil {
		return err
	}
	if total < 4 {
		return fmt.Errorf("resource directory size %d too small", total)
	}

	count := (int(total) - 4) / resourceEntrySize
	entries := make([]ResourceEntry, 0, count)

	base := off + 4
	for i := 0; i < count; i++ {
		entryOff := base + i*resourceEntrySize
		name, err := c.r.asciiAt(entryOff, 8)
		if err != nil {
			return err
		}
		va, err := c.r.u32At(entryOff + 8)
		if err != nil {
			return err
		}
		size, err := c.r.u32At(entryOff + 12)
		if err != nil {
			return err
		}
		entries = append(entries, ResourceEntry{
			Name:           name,
			VirtualAddress: va,
			Size:           size,
			Kind:           ResourceUnknownKind,
		})
	}

	desc.Resources = entries
	return nil
}

// ResolveResourceData fills in Data and Kind for every resource-directory
// entry. containerBytes is the original container buffer; peBytes is the
// decrypted/decompressed PE produced by extraction. A resource whose
// computed file offset falls outside the container's physical size is
// marked PE_EMBEDDED with no inline bytes (it was never physically
// present in the container — only in the recovered PE). If peBytes is a
// PE image and holds the range, the bytes at file offset
// (virtual_address - image_base) are copied into Data and Kind is
// replaced by their signature classification; otherwise the entry stays
// PE_EMBEDDED with no Data.
func ResolveResourceData(desc *ContainerDescriptor, containerBytes, peBytes []byte) {
	for i := range desc.Resources {
		entry := &desc.Resources[i]
		candidate := int64(desc.DataOffset) + int64(entry.VirtualAddress) - int64(desc.ImageBaseAddress)

		if candidate < 0 || candidate >= int64(len(containerBytes)) {
			entry.Kind = ResourcePEEmbedded
			// Only trust virtual-address arithmetic against peBytes once
			// it's actually confirmed to be a PE image; a failed or
			// partial extraction (e.g. an unsupported compression type
			// left peBytes empty) must not be read as if it were one.
			if isPEExecutable(peBytes) {
				if _, ok := peHeaderOffset(peBytes); ok {
					peOff := int64(entry.VirtualAddress) - int64(desc.ImageBaseAddress)
					if peOff >= 0 && peOff+int64(entry.Size) <= int64(len(peBytes)) && entry.Size > 0 {
						entry.Data = append([]byte(nil), peBytes[peOff:peOff+int64(entry.Size)]...)
						entry.Kind = classifySignature(entry.Data)
					}
				}
			}
			continue
		}

		end := candidate + int64(entry.Size)
		if entry.Size == 0 || end > int64(len(containerBytes)) {
			continue
		}
		entry.Data = append([]byte(nil), containerBytes[candidate:end]...)
		entry.Kind = classifySignature(entry.Data)
	}
}
