//go:build windows
// +build windows

package memmod

import (
	"encoding/binary"
	"fmt"

	"gomemmod/pkg/constants"
)

// applyRelocations walks the base relocation directory and adjusts
// every HIGHLOW and DIR64 entry by delta. ABSOLUTE entries are block
// padding; any other type is left untouched, the way the system loader
// treats them.
func applyRelocations(image []byte, headers *imageNtHeaders, delta int64) error {
	dir := &headers.OptionalHeader.DataDirectory[constants.IMAGE_DIRECTORY_ENTRY_BASERELOC]
	if dir.VirtualAddress == 0 || dir.Size < 8 {
		return nil
	}

	pos := uint64(dir.VirtualAddress)
	end := pos + uint64(dir.Size)
	if end > uint64(len(image)) {
		return fmt.Errorf("relocation directory extends past the image")
	}

	for pos+8 <= end {
		pageRVA := binary.LittleEndian.Uint32(image[pos : pos+4])
		blockSize := binary.LittleEndian.Uint32(image[pos+4 : pos+8])
		if blockSize < 8 {
			break
		}
		blockEnd := pos + uint64(blockSize)
		if blockEnd > end {
			return fmt.Errorf("relocation block at RVA 0x%X overruns the directory", pageRVA)
		}

		for entryPos := pos + 8; entryPos+2 <= blockEnd; entryPos += 2 {
			entry := binary.LittleEndian.Uint16(image[entryPos : entryPos+2])
			relType := entry >> 12
			offset := uint64(pageRVA) + uint64(entry&0x0FFF)

			switch relType {
			case constants.IMAGE_REL_BASED_ABSOLUTE:
				// padding entry
			case constants.IMAGE_REL_BASED_HIGHLOW:
				if offset+4 > uint64(len(image)) {
					return fmt.Errorf("HIGHLOW relocation at RVA 0x%X outside the image", offset)
				}
				orig := binary.LittleEndian.Uint32(image[offset : offset+4])
				binary.LittleEndian.PutUint32(image[offset:offset+4], uint32(int64(orig)+delta))
			case constants.IMAGE_REL_BASED_DIR64:
				if offset+8 > uint64(len(image)) {
					return fmt.Errorf("DIR64 relocation at RVA 0x%X outside the image", offset)
				}
				orig := binary.LittleEndian.Uint64(image[offset : offset+8])
				binary.LittleEndian.PutUint64(image[offset:offset+8], uint64(int64(orig)+delta))
			}
		}

		pos = blockEnd
	}
	return nil
}
