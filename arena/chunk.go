package arena

import (
	"math/bits"
	"unsafe"

	"github.com/joshuapare/mmapalloc/internal/mempage"
)

// chunk is one mapped page region carved into equally sized slots of a
// single size class. Slot bookkeeping lives on the Go heap, not inside
// the region, so user writes can never corrupt it and the engine never
// allocates through itself to manage it.
type chunk struct {
	mem      []byte  // the whole mapped region
	slotSize int     // fixed slot size, equals the size class
	nslots   int     // total slots carved from the region
	freeIdx  []int32 // LIFO stack of free slot indexes
	used     []uint64
}

// newChunk maps a region sized for wantSlots slots and links every slot
// into a fresh free stack. The mapping is page-rounded, so tail space
// beyond wantSlots*slotSize becomes extra slots rather than waste.
func newChunk(slotSize, wantSlots int) (*chunk, error) {
	region, err := mempage.Map(slotSize * wantSlots)
	if err != nil {
		return nil, err
	}
	nslots := len(region) / slotSize
	c := &chunk{
		mem:      region,
		slotSize: slotSize,
		nslots:   nslots,
		freeIdx:  make([]int32, nslots),
		used:     make([]uint64, (nslots+63)/64),
	}
	// Stack is popped from the tail, so slot 0 comes out first.
	for i := range c.freeIdx {
		c.freeIdx[i] = int32(nslots - 1 - i)
	}
	return c, nil
}

// base returns the region's start address. The region is not managed by
// the Go heap, so holding its address as an integer is stable.
func (c *chunk) base() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(c.mem)))
}

func (c *chunk) contains(addr uintptr) bool {
	base := c.base()
	return addr >= base && addr < base+uintptr(len(c.mem))
}

func (c *chunk) full() bool {
	return len(c.freeIdx) == 0
}

func (c *chunk) empty() bool {
	return len(c.freeIdx) == c.nslots
}

func (c *chunk) liveSlots() int {
	return c.nslots - len(c.freeIdx)
}

// alloc pops the most recently freed slot. Caller checks full() first.
func (c *chunk) alloc() []byte {
	n := len(c.freeIdx) - 1
	slot := int(c.freeIdx[n])
	c.freeIdx = c.freeIdx[:n]
	c.used[slot/64] |= 1 << (slot % 64)
	off := slot * c.slotSize
	return c.mem[off : off+c.slotSize : off+c.slotSize]
}

// freeAddr returns the slot at addr to the free stack. It rejects
// addresses that miss a slot boundary and slots that are already free.
func (c *chunk) freeAddr(addr uintptr) error {
	off := addr - c.base()
	if off%uintptr(c.slotSize) != 0 {
		return ErrInvalidFree
	}
	slot := int(off / uintptr(c.slotSize))
	if slot >= c.nslots || c.used[slot/64]&(1<<(slot%64)) == 0 {
		return ErrInvalidFree
	}
	c.used[slot/64] &^= 1 << (slot % 64)
	c.freeIdx = append(c.freeIdx, int32(slot))
	return nil
}

// release unmaps the backing region. The chunk must not be used after.
func (c *chunk) release() error {
	err := mempage.Unmap(c.mem)
	c.mem, c.freeIdx, c.used = nil, nil, nil
	return err
}

// countUsed recounts the allocation bitmap; used by Verify.
func (c *chunk) countUsed() int {
	total := 0
	for _, word := range c.used {
		total += bits.OnesCount64(word)
	}
	return total
}
