// Package constants holds the PE image constants shared by the loader
// packages. Values are from winnt.h.
package constants

// Data directory indices in the optional header.
const (
	IMAGE_DIRECTORY_ENTRY_EXPORT    = 0
	IMAGE_DIRECTORY_ENTRY_IMPORT    = 1
	IMAGE_DIRECTORY_ENTRY_BASERELOC = 5
	IMAGE_DIRECTORY_ENTRY_TLS       = 9
)

// Machine types.
const (
	IMAGE_FILE_MACHINE_I386  = 0x014c
	IMAGE_FILE_MACHINE_AMD64 = 0x8664
)

// DOS and NT signatures.
const (
	IMAGE_DOS_SIGNATURE = 0x5A4D     // MZ
	IMAGE_NT_SIGNATURE  = 0x00004550 // PE\0\0
)

// Optional header magic values.
const (
	IMAGE_NT_OPTIONAL_HDR32_MAGIC = 0x10b
	IMAGE_NT_OPTIONAL_HDR64_MAGIC = 0x20b
)

// File header characteristics.
const (
	IMAGE_FILE_DLL = 0x2000
)

// Section characteristics.
const (
	IMAGE_SCN_MEM_EXECUTE = 0x20000000
	IMAGE_SCN_MEM_READ    = 0x40000000
	IMAGE_SCN_MEM_WRITE   = 0x80000000
)

// Base relocation types.
const (
	IMAGE_REL_BASED_ABSOLUTE = 0
	IMAGE_REL_BASED_HIGHLOW  = 3
	IMAGE_REL_BASED_DIR64    = 10
)

// Reasons passed to DllMain and TLS callbacks.
const (
	DLL_PROCESS_DETACH = 0
	DLL_PROCESS_ATTACH = 1
	DLL_THREAD_ATTACH  = 2
	DLL_THREAD_DETACH  = 3
)
