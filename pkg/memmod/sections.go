//go:build windows
// +build windows

package memmod

import (
	"fmt"

	"github.com/Binject/debug/pe"
	"golang.org/x/sys/windows"

	"gomemmod/pkg/constants"
)

// copySections copies the PE headers and every section's raw data into
// the arena. Sections without raw data keep the zero fill the
// allocation provided.
func (m *Module) copySections(data, dest []byte, peFile *pe.File, layout imageLayout) error {
	copy(dest[:layout.sizeOfHeaders], data[:layout.sizeOfHeaders])

	for _, section := range peFile.Sections {
		if section.VirtualSize == 0 || section.Size == 0 {
			continue
		}
		sectionData, err := section.Data()
		if err != nil {
			return fmt.Errorf("failed to get data for section %s: %w", section.Name, err)
		}
		va := uint64(section.VirtualAddress)
		if va+uint64(len(sectionData)) > uint64(len(dest)) {
			return fmt.Errorf("section %s extends past the image: VA 0x%X + %d bytes", section.Name, va, len(sectionData))
		}
		copy(dest[va:va+uint64(len(sectionData))], sectionData)
	}
	return nil
}

// sectionProtection derives the page protection from the section's
// read/write/execute characteristic bits.
func sectionProtection(characteristics uint32) uint32 {
	var protect uint32 = windows.PAGE_NOACCESS
	switch {
	case characteristics&constants.IMAGE_SCN_MEM_EXECUTE != 0:
		if characteristics&constants.IMAGE_SCN_MEM_WRITE != 0 {
			protect = windows.PAGE_EXECUTE_READWRITE
		} else {
			protect = windows.PAGE_EXECUTE_READ
		}
	case characteristics&constants.IMAGE_SCN_MEM_WRITE != 0:
		protect = windows.PAGE_READWRITE
	case characteristics&constants.IMAGE_SCN_MEM_READ != 0:
		protect = windows.PAGE_READONLY
	}
	return protect
}

// finalizeSections applies the final page protection to each section's
// page-aligned virtual range.
func (m *Module) finalizeSections(peFile *pe.File) error {
	pageSize := uintptr(m.pageSize)
	for _, section := range peFile.Sections {
		if section.VirtualSize == 0 {
			continue
		}
		addr := alignDown(m.codeBase+uintptr(section.VirtualAddress), pageSize)
		size := alignUp(uintptr(section.VirtualSize), pageSize)

		var oldProtect uint32
		if err := windows.VirtualProtect(addr, size, sectionProtection(section.Characteristics), &oldProtect); err != nil {
			return fmt.Errorf("VirtualProtect failed for section %s: %w", section.Name, err)
		}
	}
	return nil
}
