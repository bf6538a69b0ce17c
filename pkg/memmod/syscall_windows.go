//go:build windows
// +build windows

package memmod

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetNativeSystemInfo = modkernel32.NewProc("GetNativeSystemInfo")
	procGetProcAddress      = modkernel32.NewProc("GetProcAddress")
)

type systemInfo struct {
	ProcessorArchitecture     uint16
	Reserved                  uint16
	PageSize                  uint32
	MinimumApplicationAddress uintptr
	MaximumApplicationAddress uintptr
	ActiveProcessorMask       uintptr
	NumberOfProcessors        uint32
	ProcessorType             uint32
	AllocationGranularity     uint32
	ProcessorLevel            uint16
	ProcessorRevision         uint16
}

// nativePageSize returns the system page size.
func nativePageSize() uint32 {
	var si systemInfo
	procGetNativeSystemInfo.Call(uintptr(unsafe.Pointer(&si)))
	if si.PageSize == 0 {
		return 4096
	}
	return si.PageSize
}

// getProcAddressByOrdinal resolves an export by ordinal. The ordinal is
// passed in the low word of the name argument, the way the loader
// expects it; windows.GetProcAddress only takes real name strings.
func getProcAddressByOrdinal(module windows.Handle, ordinal uint16) (uintptr, error) {
	addr, _, err := procGetProcAddress.Call(uintptr(module), uintptr(ordinal))
	if addr == 0 {
		return 0, err
	}
	return addr, nil
}
