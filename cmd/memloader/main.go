//go:build windows
// +build windows

// memloader loads a DLL image from a file into the current process
// with the in-memory loader, prints its metadata and optionally calls
// one of its exports.
//
// Usage:
//
//	memloader [-proc name | -ordinal n] [-list] path\to\module.dll
package main

import (
	"flag"
	"fmt"
	"os"
	"syscall"

	"gomemmod/pkg/memmod"
	"gomemmod/pkg/peinfo"
	"gomemmod/pkg/vm"
)

func main() {
	procName := flag.String("proc", "", "name of the exported procedure to call after loading")
	ordinal := flag.Int("ordinal", -1, "biased ordinal of the exported procedure to call (takes precedence over -proc)")
	list := flag.Bool("list", false, "print the full export table")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Error: no module path provided")
		flag.Usage()
		os.Exit(1)
	}

	if virtualized, vendor := vm.Detect(); virtualized {
		fmt.Printf("Note: running under hypervisor %q\n", vendor)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Println("Error reading module:", err)
		os.Exit(1)
	}
	fmt.Printf("Read %d bytes from %s\n", len(data), flag.Arg(0))

	module := memmod.NewModule()
	if err := module.LoadFromMemory(data); err != nil {
		fmt.Println("Error loading module:", err)
		os.Exit(1)
	}
	fmt.Printf("Module loaded at %s\n", peinfo.FormatAddress(module.BaseAddress()))

	peinfo.WriteModuleInfo(os.Stdout, module)
	if *list {
		peinfo.WriteExportTable(os.Stdout, module.GetExportList())
	}

	if *ordinal >= 0 {
		callExport(module, "", uint16(*ordinal))
	} else if *procName != "" {
		callExport(module, *procName, 0)
	}

	if err := module.Unload(); err != nil {
		fmt.Println("Error unloading module:", err)
		os.Exit(1)
	}
	fmt.Println("Module unloaded")
}

// callExport resolves an export by name or biased ordinal and invokes
// it with no arguments.
func callExport(module *memmod.Module, name string, ordinal uint16) {
	var (
		addr uintptr
		err  error
	)
	if name != "" {
		fmt.Printf("Calling export %q...\n", name)
		addr, err = module.GetProcAddress(name)
	} else {
		fmt.Printf("Calling export at ordinal %d...\n", ordinal)
		addr, err = module.GetProcAddressByOrdinal(ordinal)
	}
	if err != nil {
		fmt.Println("Error resolving export:", err)
		return
	}

	ret, _, _ := syscall.SyscallN(addr)
	fmt.Printf("Export at %s returned %d\n", peinfo.FormatAddress(addr), ret)
}
