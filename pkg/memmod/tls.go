//go:build windows
// +build windows

package memmod

import (
	"fmt"
	"unsafe"

	"gomemmod/pkg/constants"
)

// Safety limit to stop a malformed callback array from looping forever.
const maxTLSCallbacks = 128

// executeTLS invokes every TLS callback with a PROCESS_ATTACH
// notification. The callback array pointer and its entries are
// absolute addresses, already adjusted by base relocation.
func (m *Module) executeTLS() error {
	dir := &m.headers.OptionalHeader.DataDirectory[constants.IMAGE_DIRECTORY_ENTRY_TLS]
	if dir.VirtualAddress == 0 || dir.Size == 0 {
		return nil
	}
	if uint64(dir.VirtualAddress)+uint64(unsafe.Sizeof(imageTLSDirectory{})) > uint64(m.imageSize) {
		return fmt.Errorf("TLS directory outside image")
	}

	tls := (*imageTLSDirectory)(unsafe.Pointer(m.codeBase + uintptr(dir.VirtualAddress)))
	callback := tls.AddressOfCallBacks
	if callback == 0 {
		return nil
	}

	for count := 0; ; count++ {
		if count == maxTLSCallbacks {
			return fmt.Errorf("maximum TLS callback limit reached (%d), possible malformed callback array", maxTLSCallbacks)
		}
		fn := *(*uintptr)(unsafe.Pointer(callback))
		if fn == 0 {
			break
		}
		callEntryPoint(fn, m.codeBase, constants.DLL_PROCESS_ATTACH)
		callback += unsafe.Sizeof(fn)
	}
	return nil
}
