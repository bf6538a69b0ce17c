//go:build ignore

// Source for the DLL the loader tests exercise. Build on Windows:
//
//	go build -buildmode=c-shared -o testdata/answer.dll testdata/answerdll.go
//
// Tests that need answer.dll skip themselves when it is absent.
package main

import "C"

//export answer
func answer() C.int {
	return 42
}

//export alpha
func alpha() C.int {
	return 1
}

//export beta
func beta() C.int {
	return 2
}

func main() {}
