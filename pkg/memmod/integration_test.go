//go:build windows
// +build windows

package memmod_test

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"gomemmod/pkg/memmod"
)

// loadTestDLL reads testdata/answer.dll, built from
// testdata/answerdll.go. The test is skipped when the binary is not
// present.
func loadTestDLL(t *testing.T) []byte {
	t.Helper()
	path := filepath.Join("..", "..", "testdata", "answer.dll")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Skip("test DLL not found at path: " + path)
	}
	if err != nil {
		t.Fatalf("failed to read test DLL: %v", err)
	}
	return data
}

func TestLoadRealDLL(t *testing.T) {
	dllBytes := loadTestDLL(t)

	module := memmod.NewModule()
	if err := module.LoadFromMemory(dllBytes); err != nil {
		t.Fatalf("LoadFromMemory failed: %v", err)
	}
	defer module.Unload()

	if !module.IsLoaded() {
		t.Fatal("module should report loaded")
	}

	addr, err := module.GetProcAddress("answer")
	if err != nil {
		t.Fatalf("GetProcAddress(answer) failed: %v", err)
	}
	ret, _, _ := syscall.SyscallN(addr)
	if ret != 42 {
		t.Errorf("answer() = %d, want 42", ret)
	}

	for _, name := range []string{"alpha", "beta"} {
		ordinal := module.GetFunctionOrdinal(name)
		if ordinal == 0 {
			t.Fatalf("GetFunctionOrdinal(%q) returned the not-found sentinel", name)
		}
		if got := module.GetFunctionName(uint16(ordinal)); got != name {
			t.Errorf("GetFunctionName(%d) = %q, want %q", ordinal, got, name)
		}
		byName, _ := module.GetProcAddress(name)
		byOrdinal, _ := module.GetProcAddressByOrdinal(uint16(ordinal))
		if byName == 0 || byName != byOrdinal {
			t.Errorf("name and ordinal lookups disagree for %q: 0x%X vs 0x%X", name, byName, byOrdinal)
		}
	}

	for _, exp := range module.GetExportList() {
		if exp.Address != module.BaseAddress()+uintptr(exp.RVA) {
			t.Errorf("export %q address does not equal base+RVA", exp.Name)
		}
	}
}

func TestUnloadRealDLL(t *testing.T) {
	dllBytes := loadTestDLL(t)

	module := memmod.NewModule()
	if err := module.LoadFromMemory(dllBytes); err != nil {
		t.Fatalf("LoadFromMemory failed: %v", err)
	}
	if err := module.Unload(); err != nil {
		t.Fatalf("Unload failed: %v", err)
	}

	if module.IsLoaded() {
		t.Error("IsLoaded should be false after unload")
	}
	if module.BaseAddress() != 0 {
		t.Error("BaseAddress should be 0 after unload")
	}
	if _, err := module.GetProcAddress("alpha"); err == nil {
		t.Error("lookups after unload should fail")
	}
}
