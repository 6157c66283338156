// Package arena implements a general-purpose memory allocator serviced
// entirely from raw virtual-memory regions mapped directly from the
// operating system, bypassing the platform allocator for the memory it
// hands out.
//
// # Overview
//
// An Arena routes every request through a fixed table of size classes.
// Requests that fit a class are served from bucket chunks: page-multiple
// mappings carved into equally sized slots, with a LIFO free stack per
// chunk. Requests above the largest class, or whose alignment no class
// can satisfy, get a dedicated mapping of their own, released back to
// the OS the moment they are freed.
//
//	a, err := arena.New(nil) // DefaultConfig size classes
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	buf, err := a.Alloc(64, 8)
//	if err != nil {
//	    return err
//	}
//	// ... use buf ...
//	err = a.Free(buf, 64, 8)
//
// # Size classes
//
// The class table is built from a Config: linear increments for small
// sizes, then geometric growth up to MaxClass. Every slot size is a
// multiple of BaselineAlign and chunk bases are page-aligned, so a slot
// naturally satisfies any alignment that divides its size. DefaultConfig
// (Balanced) yields 16..512 in steps of 16, then 768, 1152, 1728, ... up
// to 16KB.
//
// # Alignment
//
// Alloc guarantees the returned address is a multiple of the requested
// alignment, which must be a power of two no larger than MaxAlign.
// Alignments the class table cannot satisfy promote the request to the
// large path, where the mapping is padded and the returned address
// offset; the owning region is recovered from the address alone on free.
//
// # Free list order and chunk retention
//
// Slots are reused most-recently-freed first, and a bucket prefers the
// chunk it last touched. A bucket keeps at most one fully free chunk as
// a cache against mapping syscalls; emptying a second chunk unmaps the
// previously cached one. Large regions are never retained.
//
// # Errors
//
// The engine surfaces exactly three failure kinds: ErrOutOfMemory when
// the OS declines a mapping (never retried internally), ErrInvalidFree
// for detectable misuse of Free, and ErrUnsupportedAlignment for
// alignments it rejects up front. Nothing is logged; the package has no
// logging dependency.
//
// # Thread safety
//
// An Arena is not safe for concurrent use. Callers own synchronization,
// or use the malloc package, which shares one Arena process-wide behind
// per-size-class locks.
package arena
