// Package malloc exposes the allocation engine as a process-wide,
// concurrency-safe allocator.
//
// The Allocator interface is the pluggable capability consumed by
// containers and data structures: both a standalone *arena.Arena and the
// shared *Global satisfy it, so callers depend on the operations, never
// on a concrete engine.
//
// Default returns the process-wide instance, initialized lazily on first
// use; the package-level Alloc, Free and Realloc delegate to it. The
// instance lives until process exit — outstanding mappings are reclaimed
// by the operating system, not individually unmapped.
//
//	buf, err := malloc.Alloc(256, 16)
//	if err != nil {
//	    return err
//	}
//	defer malloc.Free(buf, 256, 16)
package malloc

import (
	"fmt"
	"sync"

	"github.com/joshuapare/mmapalloc/arena"
)

// Allocator is the allocation capability: allocate, deallocate and
// resize with explicit size and alignment. Alignment must be a power of
// two; implementations reject others with arena.ErrUnsupportedAlignment.
// Free must receive the same size and alignment the block was allocated
// with, and only pointers obtained from the same allocator.
type Allocator interface {
	Alloc(size, alignment int) ([]byte, error)
	Free(buf []byte, size, alignment int) error
	Realloc(buf []byte, oldSize, newSize, alignment int) ([]byte, error)
}

var (
	_ Allocator = (*arena.Arena)(nil)
	_ Allocator = (*Global)(nil)
)

var (
	defaultOnce   sync.Once
	defaultGlobal *Global
)

// Default returns the process-wide allocator, creating it on first call.
// Initialization is idempotent and safe under concurrent first use.
func Default() *Global {
	defaultOnce.Do(func() {
		g, err := NewGlobal(nil)
		if err != nil {
			// Unreachable: the default config is statically valid and
			// NewGlobal maps nothing up front.
			panic(fmt.Sprintf("malloc: initialize default allocator: %v", err))
		}
		defaultGlobal = g
	})
	return defaultGlobal
}

// Alloc allocates from the process-wide allocator.
func Alloc(size, alignment int) ([]byte, error) {
	return Default().Alloc(size, alignment)
}

// Free releases buf back to the process-wide allocator.
func Free(buf []byte, size, alignment int) error {
	return Default().Free(buf, size, alignment)
}

// Realloc resizes an allocation from the process-wide allocator.
func Realloc(buf []byte, oldSize, newSize, alignment int) ([]byte, error) {
	return Default().Realloc(buf, oldSize, newSize, alignment)
}
