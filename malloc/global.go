package malloc

import (
	"sync"

	"github.com/joshuapare/mmapalloc/arena"
)

// Global wraps one shared engine behind fine-grained locking: one mutex
// per size class plus one for the large path, so traffic in unrelated
// classes never serializes. arena.Classify is a pure function of
// (size, alignment), which guarantees the Alloc and the matching Free of
// a block always take the same lock.
//
// A freed slot is visible to any subsequent Alloc on any goroutine: both
// run under the class's mutex, so deallocate-then-allocate ordering is
// sequentially consistent for external observers.
type Global struct {
	eng     *arena.Arena
	classMu []sync.Mutex
	largeMu sync.Mutex
}

// NewGlobal creates a shared allocator with its own engine. A nil config
// selects arena.DefaultConfig. Most callers want Default instead; a
// separate Global isolates one subsystem's traffic from the rest of the
// process.
func NewGlobal(config *arena.Config) (*Global, error) {
	eng, err := arena.New(config)
	if err != nil {
		return nil, err
	}
	return &Global{
		eng:     eng,
		classMu: make([]sync.Mutex, eng.NumClasses()),
	}, nil
}

// lockFor returns the mutex guarding a request's routing target.
func (g *Global) lockFor(class int, large bool) *sync.Mutex {
	if large {
		return &g.largeMu
	}
	return &g.classMu[class]
}

// Alloc allocates size bytes at the given alignment.
func (g *Global) Alloc(size, alignment int) ([]byte, error) {
	class, large, err := g.eng.Classify(size, alignment)
	if err != nil {
		return nil, err
	}
	mu := g.lockFor(class, large)
	mu.Lock()
	defer mu.Unlock()
	return g.eng.Alloc(size, alignment)
}

// Free releases buf, which must have been allocated by this Global with
// the same size and alignment. Nil is accepted as a no-op.
func (g *Global) Free(buf []byte, size, alignment int) error {
	if buf == nil {
		return nil
	}
	class, large, err := g.eng.Classify(size, alignment)
	if err != nil {
		return err
	}
	mu := g.lockFor(class, large)
	mu.Lock()
	defer mu.Unlock()
	return g.eng.Free(buf, size, alignment)
}

// Realloc resizes an allocation. When the old and new sizes route to the
// same lock the engine resizes under it, possibly in place; otherwise
// the block moves via allocate-copy-free with the two locks taken one
// after the other, never nested.
func (g *Global) Realloc(buf []byte, oldSize, newSize, alignment int) ([]byte, error) {
	if buf == nil {
		return g.Alloc(newSize, alignment)
	}
	oldClass, oldLarge, err := g.eng.Classify(oldSize, alignment)
	if err != nil {
		return nil, err
	}
	newClass, newLarge, err := g.eng.Classify(newSize, alignment)
	if err != nil {
		return nil, err
	}
	if oldLarge == newLarge && (oldLarge || oldClass == newClass) {
		mu := g.lockFor(oldClass, oldLarge)
		mu.Lock()
		defer mu.Unlock()
		return g.eng.Realloc(buf, oldSize, newSize, alignment)
	}

	fresh, err := g.Alloc(newSize, alignment)
	if err != nil {
		return nil, err
	}
	copy(fresh, buf)
	if err := g.Free(buf, oldSize, alignment); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Stats returns a snapshot of the shared engine's activity. Counters are
// atomic, so no lock is taken.
func (g *Global) Stats() arena.Stats {
	return g.eng.Stats()
}

// Verify runs the engine's consistency scan with every lock held, for
// post-run checks in tests.
func (g *Global) Verify() error {
	for i := range g.classMu {
		g.classMu[i].Lock()
		defer g.classMu[i].Unlock()
	}
	g.largeMu.Lock()
	defer g.largeMu.Unlock()
	return g.eng.Verify()
}
