//go:build windows
// +build windows

package memmod

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"gomemmod/pkg/constants"
)

// minimalHeaders returns a buffer holding a DOS header and the start
// of the NT headers, with the given signature fields filled in.
func minimalHeaders(dosMagic uint16, lfanew uint32, ntSignature uint32, machine uint16) []byte {
	buf := make([]byte, 0x400)
	binary.LittleEndian.PutUint16(buf[0:2], dosMagic)
	binary.LittleEndian.PutUint32(buf[60:64], lfanew)
	if int(lfanew)+6 <= len(buf) {
		binary.LittleEndian.PutUint32(buf[lfanew:lfanew+4], ntSignature)
		binary.LittleEndian.PutUint16(buf[lfanew+4:lfanew+6], machine)
	}
	return buf
}

func TestValidateRejectsShortBuffer(t *testing.T) {
	short := make([]byte, int(unsafe.Sizeof(imageDosHeader{}))-1)
	if _, _, err := validateImage(short); err == nil {
		t.Fatal("expected error for a buffer one byte short of a DOS header")
	}
}

func TestValidateRejectsBadDOSMagic(t *testing.T) {
	buf := minimalHeaders(0x4D5A, 0x80, constants.IMAGE_NT_SIGNATURE, hostMachine) // "ZM"
	if _, _, err := validateImage(buf); err == nil {
		t.Fatal("expected error for a bad DOS signature")
	}
}

func TestValidateRejectsLfanewPastBuffer(t *testing.T) {
	buf := minimalHeaders(constants.IMAGE_DOS_SIGNATURE, 0x10000, 0, 0)
	if _, _, err := validateImage(buf); err == nil {
		t.Fatal("expected error for e_lfanew past the buffer end")
	}
}

func TestValidateRejectsBadNTSignature(t *testing.T) {
	buf := minimalHeaders(constants.IMAGE_DOS_SIGNATURE, 0x80, 0x00004551, hostMachine)
	if _, _, err := validateImage(buf); err == nil {
		t.Fatal("expected error for a bad NT signature")
	}
}

func TestValidateRejectsForeignMachine(t *testing.T) {
	foreign := uint16(constants.IMAGE_FILE_MACHINE_I386)
	if hostMachine == constants.IMAGE_FILE_MACHINE_I386 {
		foreign = constants.IMAGE_FILE_MACHINE_AMD64
	}
	buf := minimalHeaders(constants.IMAGE_DOS_SIGNATURE, 0x80, constants.IMAGE_NT_SIGNATURE, foreign)
	if _, _, err := validateImage(buf); err == nil {
		t.Fatal("expected error for a machine type mismatching the host")
	}
}

func TestLoadFailureLeavesHandleEmpty(t *testing.T) {
	module := NewModule()
	buf := minimalHeaders(constants.IMAGE_DOS_SIGNATURE, 0x80, 0, 0)
	if err := module.LoadFromMemory(buf); err == nil {
		t.Fatal("expected load of an invalid buffer to fail")
	}
	if module.IsLoaded() {
		t.Error("failed load left IsLoaded true")
	}
	if module.IsValid() || module.BaseAddress() != 0 {
		t.Error("failed load left memory mapped")
	}
}

func TestHelpers(t *testing.T) {
	if alignUp(1, 4096) != 4096 || alignUp(4096, 4096) != 4096 || alignUp(4097, 4096) != 8192 {
		t.Error("alignUp is wrong")
	}
	if alignDown(4097, 4096) != 4096 || alignDown(4096, 4096) != 4096 {
		t.Error("alignDown is wrong")
	}
	if readCString([]byte("abc\x00def"), 0) != "abc" {
		t.Error("readCString did not stop at the terminator")
	}
	if readCString([]byte("abc"), 10) != "" {
		t.Error("readCString out of range should return an empty string")
	}
	if !isDecimal("42") || isDecimal("") || isDecimal("4a") {
		t.Error("isDecimal is wrong")
	}
}
