// Package mempage requests and releases raw virtual-memory regions from
// the operating system. Every Map call is a real syscall; the package
// performs no caching and no retries, so callers see mapping failures
// immediately as ErrOutOfMemory.
package mempage

import (
	"errors"
	"os"

	"github.com/joshuapare/mmapalloc/internal/align"
)

// ErrOutOfMemory is reported when the operating system declines a
// mapping request. Errors returned by Map wrap it, so callers match it
// with errors.Is.
var ErrOutOfMemory = errors.New("mempage: out of memory")

var pageSize = os.Getpagesize()

// Size returns the system page size. Regions returned by Map are always
// a multiple of this length.
func Size() int {
	return pageSize
}

// roundUp rounds n up to the next page multiple.
func roundUp(n int) int {
	return align.Up(n, pageSize)
}
