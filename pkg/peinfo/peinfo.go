//go:build windows
// +build windows

// Package peinfo renders loaded-module metadata and export catalogs
// for humans.
package peinfo

import (
	"fmt"
	"io"

	"gomemmod/pkg/memmod"
)

// FormatAddress renders an address the way the export table prints it.
func FormatAddress(addr uintptr) string {
	return fmt.Sprintf("0x%X", addr)
}

// FormatOrdinal renders a biased ordinal.
func FormatOrdinal(ordinal uint16) string {
	return fmt.Sprintf("0x%X", ordinal)
}

// WriteExportTable writes one line per export entry to w.
func WriteExportTable(w io.Writer, exports []memmod.Export) {
	fmt.Fprintln(w, "=== Export Table ===")
	fmt.Fprintln(w, "#\tOrdinal\tRVA\t\tName\t\t\tAddress")
	fmt.Fprintln(w, "--------------------------------------------------------")
	for i, exp := range exports {
		name := exp.Name
		if name == "" {
			name = "(by ordinal)"
		}
		fmt.Fprintf(w, "%d\t0x%X\t0x%X\t%s\t\t%s\n",
			i+1, exp.Ordinal, exp.RVA, name, FormatAddress(exp.Address))
	}
}

// WriteModuleInfo writes a short summary of a loaded module to w.
func WriteModuleInfo(w io.Writer, m *memmod.Module) {
	arch := "x86"
	if m.Is64Bit() {
		arch = "x64"
	}
	fmt.Fprintln(w, "=== Module Information ===")
	fmt.Fprintf(w, "Base Address: %s\n", FormatAddress(m.BaseAddress()))
	fmt.Fprintf(w, "Image Size: %d bytes\n", m.ImageSize())
	fmt.Fprintf(w, "Architecture: %s\n", arch)
	fmt.Fprintf(w, "Export Count: %d\n", m.GetExportCount())
	fmt.Fprintf(w, "Module Name: %s\n", m.GetModuleName())
}
