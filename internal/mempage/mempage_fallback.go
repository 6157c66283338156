//go:build !unix && !windows

package mempage

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/mmapalloc/internal/align"
)

// Map allocates from the Go heap when no virtual-memory facility is
// available. The block is over-allocated by one page so the returned
// region still starts on a page boundary.
func Map(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("mempage: non-positive map length %d", n)
	}
	length := roundUp(n)
	raw := make([]byte, length+pageSize)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	off := int(align.UpPtr(base, pageSize) - base)
	return raw[off : off+length : off+length], nil
}

// Unmap is a no-op on this platform; the Go runtime reclaims the block.
func Unmap(mem []byte) error {
	return nil
}
