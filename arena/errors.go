package arena

import (
	"errors"

	"github.com/joshuapare/mmapalloc/internal/mempage"
)

var (
	// ErrOutOfMemory indicates the operating system declined a mapping
	// request. It is surfaced unchanged; the engine never retries.
	ErrOutOfMemory = mempage.ErrOutOfMemory

	// ErrInvalidFree indicates a free whose pointer, size or alignment
	// does not match a live allocation tracked by this engine: a pointer
	// outside every chunk, one that misses a slot boundary, or a slot
	// that is already free.
	ErrInvalidFree = errors.New("arena: pointer does not match a live allocation")

	// ErrUnsupportedAlignment indicates an alignment that is not a power
	// of two or exceeds MaxAlign. Rejected before any mapping is attempted.
	ErrUnsupportedAlignment = errors.New("arena: unsupported alignment")

	// ErrClosed indicates an operation on an arena after Close.
	ErrClosed = errors.New("arena: use after Close")
)
