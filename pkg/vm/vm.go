// Package vm reports whether the current process runs under a
// hypervisor. The loader behaves the same either way; the driver
// surfaces the answer because sandboxed guests are where in-memory
// loading is usually exercised and debugged.
package vm

import (
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// Hypervisors that back ordinary developer machines and CI runners
// rather than dedicated analysis sandboxes.
var ignoreVendors = map[string]bool{
	"Microsoft Hv": true,
	"TCGTCGTCGTCG": true,
	"KVMKVMKVM":    true,
	"XenVMMXenVMM": true,
	"bhyve bhyve":  true,
}

// Detect returns whether a hypervisor other than the common host
// platforms is present, along with the vendor string CPUID reports.
func Detect() (bool, string) {
	if !cpuid.CPU.VM() {
		return false, ""
	}
	vendor := cpuid.CPU.HypervisorVendorString
	if vendor == "" {
		vendor = cpuid.CPU.HypervisorVendorID.String()
	}
	if ignoreVendors[strings.TrimSpace(vendor)] {
		return false, vendor
	}
	return true, vendor
}
