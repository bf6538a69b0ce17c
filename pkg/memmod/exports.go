//go:build windows
// +build windows

package memmod

import (
	"fmt"
	"strconv"
	"unsafe"

	"gomemmod/pkg/constants"
)

// GetExportList returns a snapshot of the export catalog. The catalog
// is built once per load on first query and cached; the returned slice
// is a copy and stays valid after an unload.
func (m *Module) GetExportList() []Export {
	m.exportMu.Lock()
	defer m.exportMu.Unlock()

	if !m.exportsBuilt {
		m.exports = m.buildExportTable()
		m.exportsBuilt = m.IsValid()
	}

	out := make([]Export, len(m.exports))
	copy(out, m.exports)
	return out
}

// GetExportCount returns the number of catalog entries.
func (m *Module) GetExportCount() uint32 {
	return uint32(len(m.GetExportList()))
}

// GetProcAddress looks an export up by name. When the name consists
// entirely of decimal digits it is reinterpreted as a biased ordinal.
func (m *Module) GetProcAddress(name string) (uintptr, error) {
	if !m.IsValid() {
		return 0, fmt.Errorf("no image loaded")
	}
	if name == "" {
		return 0, fmt.Errorf("empty export name")
	}

	for _, exp := range m.GetExportList() {
		if exp.Name == name {
			return exp.Address, nil
		}
	}

	if isDecimal(name) {
		if ordinal, err := strconv.ParseUint(name, 10, 16); err == nil {
			return m.GetProcAddressByOrdinal(uint16(ordinal))
		}
	}

	return 0, fmt.Errorf("export %s not found", name)
}

// GetProcAddressByOrdinal looks an export up by its biased ordinal.
func (m *Module) GetProcAddressByOrdinal(ordinal uint16) (uintptr, error) {
	if !m.IsValid() {
		return 0, fmt.Errorf("no image loaded")
	}
	for _, exp := range m.GetExportList() {
		if exp.Ordinal == uint32(ordinal) {
			return exp.Address, nil
		}
	}
	return 0, fmt.Errorf("ordinal %d not found", ordinal)
}

// GetFunctionName returns the name exported at the given biased
// ordinal, or "" when the ordinal is unknown or unnamed.
func (m *Module) GetFunctionName(ordinal uint16) string {
	if !m.IsValid() {
		return ""
	}
	for _, exp := range m.GetExportList() {
		if exp.Ordinal == uint32(ordinal) {
			return exp.Name
		}
	}
	return ""
}

// GetFunctionOrdinal returns the biased ordinal of the named export.
// 0 means not found; real ordinals start at the export directory's
// base, which is at least 1 in practice.
func (m *Module) GetFunctionOrdinal(name string) uint16 {
	if !m.IsValid() || name == "" {
		return 0
	}
	for _, exp := range m.GetExportList() {
		if exp.Name == name {
			return uint16(exp.Ordinal)
		}
	}
	return 0
}

// GetModuleName returns the module name recorded in the export
// directory. Images without one fall back to the first export's name,
// then to "Unknown".
func (m *Module) GetModuleName() string {
	if !m.IsValid() {
		return ""
	}

	if dir := &m.headers.OptionalHeader.DataDirectory[constants.IMAGE_DIRECTORY_ENTRY_EXPORT]; dir.VirtualAddress != 0 &&
		uint64(dir.VirtualAddress)+uint64(unsafe.Sizeof(imageExportDirectory{})) <= uint64(m.imageSize) {
		exportDir := (*imageExportDirectory)(unsafe.Pointer(m.codeBase + uintptr(dir.VirtualAddress)))
		if exportDir.Name != 0 {
			image := unsafe.Slice((*byte)(unsafe.Pointer(m.codeBase)), m.imageSize)
			if name := readCString(image, exportDir.Name); name != "" {
				return name
			}
		}
	}

	exports := m.GetExportList()
	if len(exports) == 0 {
		return "Unknown"
	}
	return exports[0].Name
}

// buildExportTable walks the export directory in the arena and builds
// the catalog: one entry per named export in name-table order,
// followed by entries for exports that only have an ordinal.
// Forwarded exports are dropped. Called with exportMu held; a
// malformed directory yields an empty catalog.
func (m *Module) buildExportTable() []Export {
	if !m.IsValid() {
		return nil
	}

	dir := &m.headers.OptionalHeader.DataDirectory[constants.IMAGE_DIRECTORY_ENTRY_EXPORT]
	if dir.VirtualAddress == 0 || dir.Size == 0 {
		return nil
	}
	dirEnd := uint64(dir.VirtualAddress) + uint64(dir.Size)
	if uint64(dir.VirtualAddress)+uint64(unsafe.Sizeof(imageExportDirectory{})) > uint64(m.imageSize) {
		return nil
	}

	exportDir := (*imageExportDirectory)(unsafe.Pointer(m.codeBase + uintptr(dir.VirtualAddress)))
	numFuncs := uint64(exportDir.NumberOfFunctions)
	numNames := uint64(exportDir.NumberOfNames)
	if numFuncs == 0 {
		return nil
	}
	if uint64(exportDir.AddressOfFunctions)+numFuncs*4 > uint64(m.imageSize) ||
		uint64(exportDir.AddressOfNames)+numNames*4 > uint64(m.imageSize) ||
		uint64(exportDir.AddressOfNameOrdinals)+numNames*2 > uint64(m.imageSize) {
		return nil
	}

	image := unsafe.Slice((*byte)(unsafe.Pointer(m.codeBase)), m.imageSize)
	functions := unsafe.Slice((*uint32)(unsafe.Pointer(m.codeBase+uintptr(exportDir.AddressOfFunctions))), numFuncs)
	nameRVAs := unsafe.Slice((*uint32)(unsafe.Pointer(m.codeBase+uintptr(exportDir.AddressOfNames))), numNames)
	ordinals := unsafe.Slice((*uint16)(unsafe.Pointer(m.codeBase+uintptr(exportDir.AddressOfNameOrdinals))), numNames)

	// A function RVA inside the export directory is a forwarder string,
	// not code in this image.
	forwarded := func(rva uint32) bool {
		return uint64(rva) >= uint64(dir.VirtualAddress) && uint64(rva) < dirEnd
	}

	exports := make([]Export, 0, numFuncs)
	named := make([]bool, numFuncs)

	for i := uint64(0); i < numNames; i++ {
		index := uint64(ordinals[i])
		if index >= numFuncs {
			continue
		}
		rva := functions[index]
		if rva == 0 || forwarded(rva) {
			continue
		}
		named[index] = true
		address := m.codeBase + uintptr(rva)
		exports = append(exports, Export{
			Ordinal:     uint32(index) + exportDir.Base,
			RVA:         rva,
			OrdinalBase: exportDir.Base,
			VA:          uint32(address),
			Name:        readCString(image, nameRVAs[i]),
			Address:     address,
		})
	}

	for index := uint64(0); index < numFuncs; index++ {
		rva := functions[index]
		if named[index] || rva == 0 || forwarded(rva) {
			continue
		}
		address := m.codeBase + uintptr(rva)
		exports = append(exports, Export{
			Ordinal:     uint32(index) + exportDir.Base,
			RVA:         rva,
			OrdinalBase: exportDir.Base,
			VA:          uint32(address),
			Address:     address,
		})
	}

	return exports
}
