//go:build unix

package mempage

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Map obtains a page-aligned anonymous region of at least n bytes.
// The returned slice spans the whole mapping, so its length is n rounded
// up to a page multiple.
func Map(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("mempage: non-positive map length %d", n)
	}
	length := roundUp(n)
	mem, err := unix.Mmap(-1, 0, length,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mempage: map %d bytes: %v: %w", length, err, ErrOutOfMemory)
	}
	return mem, nil
}

// Unmap releases a region returned by Map. It must be passed the same
// slice, not a derived slice.
func Unmap(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	err := unix.Munmap(mem)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
