package arena

import (
	"unsafe"

	"github.com/joshuapare/mmapalloc/internal/align"
	"github.com/joshuapare/mmapalloc/internal/mempage"
)

const (
	// BaselineAlign is the alignment every slot satisfies regardless of
	// the request. Slot sizes are multiples of it and chunk bases are
	// page-aligned, so any alignment up to it needs no adjustment.
	BaselineAlign = 16

	// MaxAlign is the largest supported alignment. Requests above it
	// fail with ErrUnsupportedAlignment before any mapping is attempted.
	MaxAlign = 1 << 24
)

// Arena is a standalone allocation engine backed entirely by raw pages
// from the operating system. It is single-owner: one goroutine, or
// external synchronization by its holder. The malloc package wraps one
// shared Arena behind per-class locks for process-wide use.
type Arena struct {
	table   *classTable
	buckets []*bucket
	large   *largeTable
	ctr     counters
	closed  bool
}

// New creates an arena. A nil config selects DefaultConfig.
func New(config *Config) (*Arena, error) {
	if config == nil {
		config = &DefaultConfig
	}
	table, err := newClassTable(*config)
	if err != nil {
		return nil, err
	}
	a := &Arena{
		table:   table,
		buckets: make([]*bucket, table.numClasses()),
	}
	for i, size := range table.sizes {
		a.buckets[i] = newBucket(size, &a.ctr)
	}
	a.large = newLargeTable(&a.ctr)
	return a, nil
}

// NumClasses returns the number of size classes in this arena.
func (a *Arena) NumClasses() int {
	return a.table.numClasses()
}

// Threshold returns the largest bucket slot size. Requests above it are
// served by the large-allocation path.
func (a *Arena) Threshold() int {
	return a.table.threshold()
}

// Classify maps a request to its size class, or to the large path. It is
// a pure function of (size, alignment): the same pair always routes to
// the same class, which is what lets a free retrace its allocation and
// the global adapter pick a lock before touching engine state.
//
// A request lands in a bucket when some class at least its size is a
// multiple of the alignment (the class then satisfies the alignment
// naturally); otherwise it is promoted to the large path, where padding
// and an internal offset satisfy any supported alignment.
func (a *Arena) Classify(size, alignment int) (class int, large bool, err error) {
	if !align.IsPowerOfTwo(alignment) || alignment > MaxAlign {
		return 0, false, ErrUnsupportedAlignment
	}
	need := effectiveSize(size)
	if alignment <= mempage.Size() {
		if class, ok := a.table.classForAligned(need, alignment); ok {
			return class, false, nil
		}
	}
	return 0, true, nil
}

// Alloc returns a slice of exactly size bytes (one byte for size zero,
// so every allocation has a unique address) whose start address is a
// multiple of alignment. It fails with ErrOutOfMemory when the OS
// declines the backing mapping; the error is never retried internally.
func (a *Arena) Alloc(size, alignment int) ([]byte, error) {
	if a.closed {
		return nil, ErrClosed
	}
	class, large, err := a.Classify(size, alignment)
	if err != nil {
		return nil, err
	}
	need := effectiveSize(size)
	var buf []byte
	if large {
		buf, err = a.large.alloc(need, alignment)
	} else {
		buf, err = a.buckets[class].alloc()
	}
	if err != nil {
		return nil, err
	}
	a.ctr.allocCalls.Add(1)
	a.ctr.liveAllocs.Add(1)
	a.ctr.liveBytes.Add(int64(need))
	return buf[0:need:need], nil
}

// Free returns buf, previously obtained from Alloc with the same size
// and alignment, to the engine. A nil buf is accepted as a no-op. Any
// pointer, size or alignment that does not match a live allocation fails
// with ErrInvalidFree; by the time Free returns, the slot or region is
// reusable by any subsequent Alloc.
func (a *Arena) Free(buf []byte, size, alignment int) error {
	if a.closed {
		return ErrClosed
	}
	if buf == nil {
		return nil
	}
	class, large, err := a.Classify(size, alignment)
	if err != nil {
		return err
	}
	addr := addrOf(buf)
	if large {
		err = a.large.free(addr)
	} else {
		err = a.buckets[class].free(addr)
	}
	if err != nil {
		return err
	}
	a.ctr.freeCalls.Add(1)
	a.ctr.liveAllocs.Add(-1)
	a.ctr.liveBytes.Add(int64(-effectiveSize(size)))
	return nil
}

// Realloc resizes an allocation. Within the same size class, or within a
// large region's page slack, the resize happens in place and the address
// is preserved; otherwise the contents move to a fresh allocation and
// the old one is freed. Callers must not assume in-place success. A nil
// buf behaves as Alloc.
func (a *Arena) Realloc(buf []byte, oldSize, newSize, alignment int) ([]byte, error) {
	if a.closed {
		return nil, ErrClosed
	}
	if buf == nil {
		return a.Alloc(newSize, alignment)
	}
	oldClass, oldLarge, err := a.Classify(oldSize, alignment)
	if err != nil {
		return nil, err
	}
	newClass, newLarge, err := a.Classify(newSize, alignment)
	if err != nil {
		return nil, err
	}
	effOld, effNew := effectiveSize(oldSize), effectiveSize(newSize)
	addr := addrOf(buf)

	if !oldLarge && !newLarge && oldClass == newClass {
		// Same slot serves both sizes.
		if c := a.buckets[oldClass].find(addr); c == nil {
			return nil, ErrInvalidFree
		}
		a.ctr.reallocCalls.Add(1)
		a.ctr.liveBytes.Add(int64(effNew - effOld))
		return unsafe.Slice(unsafe.SliceData(buf), effNew), nil
	}
	if oldLarge && newLarge {
		if resized, ok := a.large.resize(addr, effNew); ok {
			a.ctr.reallocCalls.Add(1)
			a.ctr.liveBytes.Add(int64(effNew - effOld))
			return resized, nil
		}
	}

	fresh, err := a.Alloc(newSize, alignment)
	if err != nil {
		return nil, err
	}
	copy(fresh, buf)
	if err := a.Free(buf, oldSize, alignment); err != nil {
		return nil, err
	}
	a.ctr.reallocCalls.Add(1)
	return fresh, nil
}

// Stats returns a snapshot of the engine's activity.
func (a *Arena) Stats() Stats {
	return a.ctr.snapshot()
}

// Close unmaps every live chunk and large region and poisons the arena.
// Outstanding allocations become invalid; further calls fail ErrClosed.
func (a *Arena) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	var firstErr error
	for _, b := range a.buckets {
		if err := b.releaseAll(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := a.large.releaseAll(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// effectiveSize clamps a request to at least one byte, so zero-size
// allocations occupy a real slot and stay unique and freeable.
func effectiveSize(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// addrOf returns buf's start address. Allocations live in mapped
// regions outside the Go heap, so the address is stable.
func addrOf(buf []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
}
