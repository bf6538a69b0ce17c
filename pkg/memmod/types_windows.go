//go:build windows
// +build windows

package memmod

// Windows image structures needed for walking a mapped PE.
// These are not defined in the golang.org/x/sys/windows package.

// imageDosHeader represents the DOS header of a PE file.
type imageDosHeader struct {
	E_magic    uint16     // Magic number
	E_cblp     uint16     // Bytes on last page of file
	E_cp       uint16     // Pages in file
	E_crlc     uint16     // Relocations
	E_cparhdr  uint16     // Size of header in paragraphs
	E_minalloc uint16     // Minimum extra paragraphs needed
	E_maxalloc uint16     // Maximum extra paragraphs needed
	E_ss       uint16     // Initial (relative) SS value
	E_sp       uint16     // Initial SP value
	E_csum     uint16     // Checksum
	E_ip       uint16     // Initial IP value
	E_cs       uint16     // Initial (relative) CS value
	E_lfarlc   uint16     // File address of relocation table
	E_ovno     uint16     // Overlay number
	E_res      [4]uint16  // Reserved words
	E_oemid    uint16     // OEM identifier (for e_oeminfo)
	E_oeminfo  uint16     // OEM information; e_oemid specific
	E_res2     [10]uint16 // Reserved words
	E_lfanew   int32      // File address of new exe header
}

// imageDataDirectory represents a data directory entry in the optional header.
type imageDataDirectory struct {
	VirtualAddress uint32
	Size           uint32
}

// imageFileHeader represents the PE file header.
type imageFileHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

// imageNtHeaders represents the NT headers of the host architecture.
// The optional header layout is arch-specific, see types_windows_amd64.go
// and types_windows_386.go.
type imageNtHeaders struct {
	Signature      uint32
	FileHeader     imageFileHeader
	OptionalHeader imageOptionalHeader
}

// imageExportDirectory represents the export directory.
type imageExportDirectory struct {
	Characteristics       uint32
	TimeDateStamp         uint32
	MajorVersion          uint16
	MinorVersion          uint16
	Name                  uint32
	Base                  uint32
	NumberOfFunctions     uint32
	NumberOfNames         uint32
	AddressOfFunctions    uint32
	AddressOfNames        uint32
	AddressOfNameOrdinals uint32
}

// imageImportDescriptor represents one entry of the import directory.
// A descriptor with a zero Name terminates the table.
type imageImportDescriptor struct {
	OriginalFirstThunk uint32
	TimeDateStamp      uint32
	ForwarderChain     uint32
	Name               uint32
	FirstThunk         uint32
}

// imageTLSDirectory represents the TLS directory of the host
// architecture. The pointer-sized fields hold virtual addresses that
// were already adjusted by base relocation.
type imageTLSDirectory struct {
	StartAddressOfRawData uintptr
	EndAddressOfRawData   uintptr
	AddressOfIndex        uintptr
	AddressOfCallBacks    uintptr
	SizeOfZeroFill        uint32
	Characteristics       uint32
}

const importDescriptorSize = 20
