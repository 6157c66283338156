//go:build windows

package mempage

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Map obtains a page-aligned anonymous region of at least n bytes.
// The returned slice spans the whole reservation, so its length is n
// rounded up to a page multiple.
func Map(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("mempage: non-positive map length %d", n)
	}
	length := roundUp(n)
	addr, err := windows.VirtualAlloc(0, uintptr(length),
		windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("mempage: map %d bytes: %v: %w", length, err, ErrOutOfMemory)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), length), nil
}

// Unmap releases a region returned by Map. It must be passed the same
// slice, not a derived slice.
func Unmap(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(mem)))
	return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
}
