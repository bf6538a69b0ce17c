//go:build windows
// +build windows

package memmod

import "syscall"

// callEntryPoint invokes a DllMain-shaped routine:
// BOOL WINAPI fn(HINSTANCE, DWORD reason, LPVOID reserved).
// The reserved argument is 0, matching a dynamic load.
func callEntryPoint(entry, base uintptr, reason uint32) uintptr {
	r1, _, _ := syscall.SyscallN(entry, base, uintptr(reason), 0)
	return r1
}
