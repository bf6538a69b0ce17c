//go:build windows
// +build windows

// A C-compatible adapter over the in-memory loader, built with
//
//	go build -buildmode=c-shared -o memmod.dll ./ffi
//
// Handles are opaque non-zero tokens; every call is safe on a zero or
// unknown handle.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"sync"
	"unsafe"

	"gomemmod/pkg/memmod"
)

var (
	registryMu sync.Mutex
	registry   = make(map[uintptr]*memmod.Module)
	nextHandle uintptr
)

func lookup(handle uintptr) *memmod.Module {
	registryMu.Lock()
	defer registryMu.Unlock()
	return registry[handle]
}

//export memory_module_create
func memory_module_create() uintptr {
	registryMu.Lock()
	defer registryMu.Unlock()
	nextHandle++
	registry[nextHandle] = memmod.NewModule()
	return nextHandle
}

//export memory_module_destroy
func memory_module_destroy(handle uintptr) {
	registryMu.Lock()
	module := registry[handle]
	delete(registry, handle)
	registryMu.Unlock()

	if module != nil {
		module.Unload()
	}
}

//export memory_module_load
func memory_module_load(handle uintptr, data unsafe.Pointer, size C.size_t) bool {
	module := lookup(handle)
	if module == nil || data == nil || size == 0 {
		return false
	}
	buf := C.GoBytes(data, C.int(size))
	return module.LoadFromMemory(buf) == nil
}

//export memory_module_unload
func memory_module_unload(handle uintptr) bool {
	module := lookup(handle)
	if module == nil {
		return false
	}
	return module.Unload() == nil
}

//export memory_module_get_proc_address
func memory_module_get_proc_address(handle uintptr, name *C.char) uintptr {
	module := lookup(handle)
	if module == nil || name == nil {
		return 0
	}
	addr, err := module.GetProcAddress(C.GoString(name))
	if err != nil {
		return 0
	}
	return addr
}

//export memory_module_get_proc_address_by_ordinal
func memory_module_get_proc_address_by_ordinal(handle uintptr, ordinal uint16) uintptr {
	module := lookup(handle)
	if module == nil {
		return 0
	}
	addr, err := module.GetProcAddressByOrdinal(ordinal)
	if err != nil {
		return 0
	}
	return addr
}

// The returned string is allocated with malloc; the caller frees it.
//
//export memory_module_get_function_name
func memory_module_get_function_name(handle uintptr, ordinal uint16) *C.char {
	module := lookup(handle)
	if module == nil {
		return nil
	}
	return C.CString(module.GetFunctionName(ordinal))
}

//export memory_module_get_function_ordinal
func memory_module_get_function_ordinal(handle uintptr, name *C.char) uint16 {
	module := lookup(handle)
	if module == nil || name == nil {
		return 0
	}
	return module.GetFunctionOrdinal(C.GoString(name))
}

//export memory_module_get_export_count
func memory_module_get_export_count(handle uintptr) C.size_t {
	module := lookup(handle)
	if module == nil {
		return 0
	}
	return C.size_t(module.GetExportCount())
}

//export memory_module_is_64bit
func memory_module_is_64bit(handle uintptr) bool {
	module := lookup(handle)
	return module != nil && module.Is64Bit()
}

//export memory_module_base_address
func memory_module_base_address(handle uintptr) uintptr {
	module := lookup(handle)
	if module == nil {
		return 0
	}
	return module.BaseAddress()
}

//export memory_module_image_size
func memory_module_image_size(handle uintptr) C.size_t {
	module := lookup(handle)
	if module == nil {
		return 0
	}
	return C.size_t(module.ImageSize())
}

func main() {}
