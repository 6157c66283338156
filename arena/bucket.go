package arena

import "sort"

const (
	// targetChunkBytes is the mapping size a bucket aims for when it
	// needs a new chunk, so one syscall amortizes over many slots.
	targetChunkBytes = 64 << 10

	// minSlotsPerChunk keeps chunks of the largest classes from
	// degenerating into one-slot mappings.
	minSlotsPerChunk = 8
)

// bucket serves one size class from a set of chunks. Chunks are kept
// sorted by base address so a free can locate the owning chunk by binary
// search; active points at the most recently used chunk with free slots,
// which keeps the just-freed-slot-first ordering across chunks.
//
// Retention policy: at most one fully free chunk is kept as a cache
// against mapping syscalls. When a free empties a second chunk, the
// previously retained one is unmapped.
type bucket struct {
	slotSize  int
	wantSlots int
	chunks    []*chunk // sorted by base address
	active    *chunk
	ctr       *counters
}

func newBucket(slotSize int, ctr *counters) *bucket {
	wantSlots := targetChunkBytes / slotSize
	if wantSlots < minSlotsPerChunk {
		wantSlots = minSlotsPerChunk
	}
	return &bucket{
		slotSize:  slotSize,
		wantSlots: wantSlots,
		ctr:       ctr,
	}
}

// alloc pops a slot, mapping a new chunk when every chunk is full.
func (b *bucket) alloc() ([]byte, error) {
	c := b.active
	if c == nil || c.full() {
		c = nil
		for _, ch := range b.chunks {
			if !ch.full() {
				c = ch
				break
			}
		}
	}
	if c == nil {
		fresh, err := newChunk(b.slotSize, b.wantSlots)
		if err != nil {
			return nil, err
		}
		b.insert(fresh)
		b.ctr.chunkMaps.Add(1)
		b.ctr.mappedBytes.Add(int64(len(fresh.mem)))
		c = fresh
	}
	b.active = c
	return c.alloc(), nil
}

// free returns the slot at addr to its owning chunk and applies the
// retention policy when the chunk becomes fully free.
func (b *bucket) free(addr uintptr) error {
	c := b.find(addr)
	if c == nil {
		return ErrInvalidFree
	}
	if err := c.freeAddr(addr); err != nil {
		return err
	}
	b.active = c
	if c.empty() {
		if other := b.otherEmpty(c); other != nil {
			return b.drop(other)
		}
	}
	return nil
}

// find locates the chunk owning addr, or nil.
func (b *bucket) find(addr uintptr) *chunk {
	i := sort.Search(len(b.chunks), func(i int) bool {
		return b.chunks[i].base() > addr
	})
	if i == 0 {
		return nil
	}
	if c := b.chunks[i-1]; c.contains(addr) {
		return c
	}
	return nil
}

// insert adds c keeping the slice sorted by base address.
func (b *bucket) insert(c *chunk) {
	i := sort.Search(len(b.chunks), func(i int) bool {
		return b.chunks[i].base() > c.base()
	})
	b.chunks = append(b.chunks, nil)
	copy(b.chunks[i+1:], b.chunks[i:])
	b.chunks[i] = c
}

// otherEmpty returns a fully free chunk other than skip, or nil.
func (b *bucket) otherEmpty(skip *chunk) *chunk {
	for _, c := range b.chunks {
		if c != skip && c.empty() {
			return c
		}
	}
	return nil
}

// drop removes c from the bucket and unmaps it.
func (b *bucket) drop(c *chunk) error {
	for i, ch := range b.chunks {
		if ch == c {
			b.chunks = append(b.chunks[:i], b.chunks[i+1:]...)
			break
		}
	}
	if b.active == c {
		b.active = nil
	}
	b.ctr.chunkUnmaps.Add(1)
	b.ctr.mappedBytes.Add(int64(-len(c.mem)))
	return c.release()
}

// releaseAll unmaps every chunk. Used by Arena.Close.
func (b *bucket) releaseAll() error {
	var firstErr error
	for _, c := range b.chunks {
		b.ctr.chunkUnmaps.Add(1)
		b.ctr.mappedBytes.Add(int64(-len(c.mem)))
		if err := c.release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	b.chunks, b.active = nil, nil
	return firstErr
}

// liveSlots counts allocated slots across all chunks; used by Verify.
func (b *bucket) liveSlots() int {
	total := 0
	for _, c := range b.chunks {
		total += c.liveSlots()
	}
	return total
}
