//go:build windows
// +build windows

// Package memmod loads a Windows PE image from a byte buffer into the
// current process without touching the filesystem. It performs the
// fix-ups the OS loader would perform for an image loaded from disk
// (section mapping, base relocation, import resolution, section
// protection, TLS callbacks, entry-point notification) and exposes the
// image's exports as callable addresses.
// This package only works on Windows systems.
package memmod

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"gomemmod/pkg/constants"
)

// Export describes one entry of a loaded image's export directory with
// a ready-to-call address.
type Export struct {
	Ordinal     uint32  // biased by the export directory's ordinal base
	RVA         uint32  // raw function RVA
	OrdinalBase uint32  // Base field of the export directory
	VA          uint32  // low 32 bits of the virtual address
	Name        string  // empty for by-ordinal-only exports
	Address     uintptr // final callable address
}

// Module is a handle to an in-memory loaded PE image. The zero value
// is not usable, call NewModule. A Module must not be copied; pass it
// by pointer.
type Module struct {
	codeBase  uintptr
	imageSize uintptr
	headers   *imageNtHeaders // view into the arena, not owned
	entry     uintptr
	isDLL     bool
	attached  bool
	deps      []windows.Handle

	loaded atomic.Bool
	is64   atomic.Bool

	exportMu     sync.Mutex
	exports      []Export
	exportsBuilt bool

	pageSize uint32
}

// NewModule returns an empty module handle.
func NewModule() *Module {
	return &Module{pageSize: nativePageSize()}
}

// LoadFromMemory maps the PE image in data into the current process
// and runs its initialization. A previously loaded image is unloaded
// first. On failure the handle is left empty and no memory remains
// mapped.
func (m *Module) LoadFromMemory(data []byte) error {
	// Release the previous image, if any.
	if err := m.Unload(); err != nil {
		return fmt.Errorf("unloading previous image: %w", err)
	}

	if len(data) < int(unsafe.Sizeof(imageDosHeader{})) {
		return fmt.Errorf("buffer too small for a DOS header: %d bytes", len(data))
	}

	if err := m.loadImage(data); err != nil {
		m.release()
		m.is64.Store(false)
		return err
	}

	m.loaded.Store(true)
	return nil
}

// Unload runs the DLL detach notification if the image was attached,
// releases the import dependencies and frees the arena. Calling it on
// an empty handle is a no-op.
func (m *Module) Unload() error {
	if !m.IsValid() {
		return nil
	}

	if m.attached && m.entry != 0 {
		// Detach must precede the arena release; the result is ignored.
		callEntryPoint(m.entry, m.codeBase, constants.DLL_PROCESS_DETACH)
		m.attached = false
	}

	m.exportMu.Lock()
	m.exports = nil
	m.exportsBuilt = false
	m.exportMu.Unlock()

	err := m.release()
	m.loaded.Store(false)
	m.is64.Store(false)
	return err
}

// release frees the dependency handles and the arena without running
// any image code. Used both by Unload and by the load rollback path.
func (m *Module) release() error {
	for _, dep := range m.deps {
		windows.FreeLibrary(dep)
	}
	m.deps = nil

	var err error
	if m.codeBase != 0 {
		err = windows.VirtualFree(m.codeBase, 0, windows.MEM_RELEASE)
		m.codeBase = 0
	}
	m.imageSize = 0
	m.headers = nil
	m.entry = 0
	m.isDLL = false
	m.attached = false
	if err != nil {
		return fmt.Errorf("releasing image memory: %w", err)
	}
	return nil
}

// loadImage runs the load pipeline: validate, allocate, copy sections,
// relocate, resolve imports, protect, TLS, entry point. The caller
// rolls back on error.
func (m *Module) loadImage(data []byte) error {
	peFile, layout, err := validateImage(data)
	if err != nil {
		return err
	}

	m.is64.Store(peFile.Machine == constants.IMAGE_FILE_MACHINE_AMD64)
	m.isDLL = peFile.FileHeader.Characteristics&constants.IMAGE_FILE_DLL != 0

	if err := m.allocArena(layout.imageBase, layout.sizeOfImage); err != nil {
		return err
	}

	dest := unsafe.Slice((*byte)(unsafe.Pointer(m.codeBase)), m.imageSize)

	if err := m.copySections(data, dest, peFile, layout); err != nil {
		return err
	}

	// The headers now live in the arena; keep a view and rewrite the
	// base so downstream consumers see consistent metadata.
	m.headers = (*imageNtHeaders)(unsafe.Pointer(m.codeBase + uintptr(layout.lfanew)))
	m.headers.OptionalHeader.ImageBase = m.codeBase
	m.entry = 0
	if layout.entryRVA != 0 {
		m.entry = m.codeBase + uintptr(layout.entryRVA)
	}

	delta := int64(uint64(m.codeBase)) - int64(layout.imageBase)
	if delta != 0 {
		if err := applyRelocations(dest, m.headers, delta); err != nil {
			return fmt.Errorf("relocation failed: %w", err)
		}
	}

	if err := m.resolveImports(dest); err != nil {
		return fmt.Errorf("import resolution failed: %w", err)
	}

	if err := m.finalizeSections(peFile); err != nil {
		return fmt.Errorf("section protection failed: %w", err)
	}

	if err := m.executeTLS(); err != nil {
		return fmt.Errorf("TLS callback execution failed: %w", err)
	}

	if err := m.callEntry(); err != nil {
		return err
	}

	return nil
}

// allocArena reserves and commits a read-write region covering the
// image, preferring the image's linked base and falling back to any
// address.
func (m *Module) allocArena(preferredBase uint64, sizeOfImage uint32) error {
	size := alignUp(uintptr(sizeOfImage), uintptr(m.pageSize))

	base, err := windows.VirtualAlloc(uintptr(preferredBase), size,
		windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		base, err = windows.VirtualAlloc(0, size,
			windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
		if err != nil {
			return fmt.Errorf("memory allocation failed: %w", err)
		}
	}

	m.codeBase = base
	m.imageSize = size
	return nil
}

// callEntry dispatches the PROCESS_ATTACH notification. Only DLL
// images get their entry point invoked; an executable image is mapped
// without starting it.
func (m *Module) callEntry() error {
	if m.entry == 0 || !m.isDLL {
		return nil
	}
	if callEntryPoint(m.entry, m.codeBase, constants.DLL_PROCESS_ATTACH) == 0 {
		return fmt.Errorf("DllMain returned FALSE")
	}
	m.attached = true
	return nil
}

// Is64Bit reports whether the loaded image is a PE32+ (AMD64) image.
func (m *Module) Is64Bit() bool { return m.is64.Load() }

// IsValid reports whether the handle currently owns a mapped image.
func (m *Module) IsValid() bool { return m.codeBase != 0 }

// IsLoaded reports whether a load completed and no unload has run.
func (m *Module) IsLoaded() bool { return m.loaded.Load() }

// BaseAddress returns the arena base, or 0 when empty.
func (m *Module) BaseAddress() uintptr { return m.codeBase }

// ImageSize returns the page-aligned size of the mapped image.
func (m *Module) ImageSize() uintptr { return m.imageSize }
