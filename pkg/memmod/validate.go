//go:build windows
// +build windows

package memmod

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/Binject/debug/pe"

	"gomemmod/pkg/constants"
)

// imageLayout carries the optional-header fields the load pipeline
// needs, normalized across PE32 and PE32+.
type imageLayout struct {
	lfanew        int32
	imageBase     uint64
	sizeOfImage   uint32
	sizeOfHeaders uint32
	entryRVA      uint32
}

// Keep a ceiling on SizeOfImage to prevent absurd allocations from a
// corrupted header.
const maxImageSize = 512 * 1024 * 1024

// validateImage range- and magic-checks the raw buffer, rejects images
// built for a foreign architecture and parses the file with
// Binject/debug/pe for the section table and optional header.
func validateImage(data []byte) (*pe.File, imageLayout, error) {
	var layout imageLayout

	dosSize := int(unsafe.Sizeof(imageDosHeader{}))
	if len(data) < dosSize {
		return nil, layout, fmt.Errorf("buffer too small for a DOS header: %d bytes", len(data))
	}
	if binary.LittleEndian.Uint16(data[0:2]) != constants.IMAGE_DOS_SIGNATURE {
		return nil, layout, fmt.Errorf("invalid DOS header signature")
	}

	lfanew := int32(binary.LittleEndian.Uint32(data[60:64]))
	ntSize := int64(unsafe.Sizeof(imageNtHeaders{}))
	if lfanew < 0 || int64(lfanew)+ntSize > int64(len(data)) {
		return nil, layout, fmt.Errorf("e_lfanew 0x%X outside buffer of %d bytes", lfanew, len(data))
	}
	if binary.LittleEndian.Uint32(data[lfanew:lfanew+4]) != constants.IMAGE_NT_SIGNATURE {
		return nil, layout, fmt.Errorf("invalid NT headers signature")
	}

	machine := binary.LittleEndian.Uint16(data[lfanew+4 : lfanew+6])
	if machine != hostMachine {
		return nil, layout, fmt.Errorf("image machine 0x%X does not match host machine 0x%X", machine, hostMachine)
	}

	peFile, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, layout, fmt.Errorf("PE parse error: %w", err)
	}

	layout.lfanew = lfanew
	switch oh := peFile.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		layout.imageBase = uint64(oh.ImageBase)
		layout.sizeOfImage = oh.SizeOfImage
		layout.sizeOfHeaders = oh.SizeOfHeaders
		layout.entryRVA = oh.AddressOfEntryPoint
	case *pe.OptionalHeader64:
		layout.imageBase = oh.ImageBase
		layout.sizeOfImage = oh.SizeOfImage
		layout.sizeOfHeaders = oh.SizeOfHeaders
		layout.entryRVA = oh.AddressOfEntryPoint
	default:
		return nil, layout, fmt.Errorf("unsupported PE optional header type")
	}

	if layout.sizeOfImage == 0 || layout.sizeOfImage > maxImageSize {
		return nil, layout, fmt.Errorf("invalid PE image size: %d bytes", layout.sizeOfImage)
	}
	if len(data) < int(layout.sizeOfHeaders) {
		return nil, layout, fmt.Errorf("invalid payload size: %d bytes, minimum %d bytes expected for PE headers",
			len(data), layout.sizeOfHeaders)
	}
	if uint64(layout.sizeOfHeaders) > uint64(layout.sizeOfImage) {
		return nil, layout, fmt.Errorf("SizeOfHeaders %d exceeds SizeOfImage %d", layout.sizeOfHeaders, layout.sizeOfImage)
	}

	return peFile, layout, nil
}
