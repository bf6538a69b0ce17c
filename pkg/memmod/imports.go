//go:build windows
// +build windows

package memmod

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"gomemmod/pkg/constants"
)

const thunkSize = unsafe.Sizeof(uintptr(0))

// resolveImports loads every dependency named by the import directory
// and patches the Import Address Table with the resolved addresses.
// Dependency handles are kept on the module and released on unload.
// Any unresolvable dependency or symbol fails the load.
func (m *Module) resolveImports(image []byte) error {
	dir := &m.headers.OptionalHeader.DataDirectory[constants.IMAGE_DIRECTORY_ENTRY_IMPORT]
	if dir.VirtualAddress == 0 || dir.Size == 0 {
		return nil
	}
	if uint64(dir.VirtualAddress) >= uint64(len(image)) {
		return fmt.Errorf("import directory RVA outside image")
	}

	for descRVA := uint64(dir.VirtualAddress); ; descRVA += importDescriptorSize {
		if descRVA+importDescriptorSize > uint64(len(image)) {
			break
		}

		nameRVA := binary.LittleEndian.Uint32(image[descRVA+12 : descRVA+16])
		if nameRVA == 0 {
			break
		}
		firstThunkRVA := binary.LittleEndian.Uint32(image[descRVA+16 : descRVA+20])
		originalFirstThunkRVA := binary.LittleEndian.Uint32(image[descRVA : descRVA+4])

		dllName := readCString(image, nameRVA)
		if dllName == "" {
			return fmt.Errorf("empty DLL name at RVA 0x%X", nameRVA)
		}

		dll, err := windows.LoadLibrary(dllName)
		if err != nil {
			return fmt.Errorf("failed to load library %s: %w", dllName, err)
		}
		m.deps = append(m.deps, dll)

		// The original first thunk is the untouched lookup table; fall
		// back to the IAT when the linker omitted it.
		lookupRVA := originalFirstThunkRVA
		if lookupRVA == 0 {
			lookupRVA = firstThunkRVA
		}

		for offset := uint64(0); ; offset += uint64(thunkSize) {
			lookupEntry := uint64(lookupRVA) + offset
			iatEntry := uint64(firstThunkRVA) + offset
			if lookupEntry+uint64(thunkSize) > uint64(len(image)) ||
				iatEntry+uint64(thunkSize) > uint64(len(image)) {
				return fmt.Errorf("import thunk for %s outside image", dllName)
			}

			thunk := *(*uintptr)(unsafe.Pointer(&image[lookupEntry]))
			if thunk == 0 {
				break
			}

			var addr uintptr
			if thunk&ordinalFlag != 0 {
				ordinal := uint16(thunk & 0xFFFF)
				addr, err = getProcAddressByOrdinal(dll, ordinal)
				if err != nil {
					return fmt.Errorf("failed to get proc address for ordinal %d in %s: %w", ordinal, dllName, err)
				}
			} else {
				// Thunk holds the RVA of an IMPORT_BY_NAME record: a
				// 2-byte hint followed by the symbol name.
				nameEntry := uint64(thunk)
				if nameEntry+2 >= uint64(len(image)) {
					return fmt.Errorf("import name RVA outside image")
				}
				procName := readCString(image, uint32(nameEntry+2))
				addr, err = windows.GetProcAddress(dll, procName)
				if err != nil {
					return fmt.Errorf("failed to get proc address for %s in %s: %w", procName, dllName, err)
				}
			}
			if addr == 0 {
				return fmt.Errorf("null import address in %s", dllName)
			}

			*(*uintptr)(unsafe.Pointer(&image[iatEntry])) = addr
		}
	}

	return nil
}
