package arena

import (
	"unsafe"

	"github.com/joshuapare/mmapalloc/internal/align"
	"github.com/joshuapare/mmapalloc/internal/mempage"
)

// largeAlloc records one oversized allocation: the mapped region, the
// caller-visible size and alignment, and the offset of the user address
// inside the region. The record is keyed by the user address alone, so
// a free recovers the true region start with no caller bookkeeping.
type largeAlloc struct {
	region    []byte
	size      int
	alignment int
	offset    int
}

// largeTable serves allocations above the bucket threshold. Each request
// gets a dedicated mapping released unconditionally on free; large
// regions are never retained.
type largeTable struct {
	recs map[uintptr]*largeAlloc
	ctr  *counters
}

func newLargeTable(ctr *counters) *largeTable {
	return &largeTable{
		recs: make(map[uintptr]*largeAlloc),
		ctr:  ctr,
	}
}

// alloc maps a dedicated region for size bytes at the given alignment.
// Mappings are page-aligned already, so padding is only added when the
// alignment exceeds the page size; the user address is then offset
// inside the region and the offset recorded.
func (lt *largeTable) alloc(size, alignment int) ([]byte, error) {
	mapLen := size
	if alignment > mempage.Size() {
		mapLen += alignment
	}
	region, err := mempage.Map(mapLen)
	if err != nil {
		return nil, err
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(region)))
	user := align.UpPtr(base, alignment)
	offset := int(user - base)
	lt.recs[user] = &largeAlloc{
		region:    region,
		size:      size,
		alignment: alignment,
		offset:    offset,
	}
	lt.ctr.largeMaps.Add(1)
	lt.ctr.mappedBytes.Add(int64(len(region)))
	return region[offset : offset+size : offset+size], nil
}

// free looks up and removes the record for addr and unmaps its region.
func (lt *largeTable) free(addr uintptr) error {
	rec, ok := lt.recs[addr]
	if !ok {
		return ErrInvalidFree
	}
	delete(lt.recs, addr)
	lt.ctr.largeUnmaps.Add(1)
	lt.ctr.mappedBytes.Add(int64(-len(rec.region)))
	return mempage.Unmap(rec.region)
}

// resize adjusts the allocation at addr to newSize in place when the
// mapped region has enough slack. Reports false when it does not, in
// which case the caller falls back to allocate-copy-free.
func (lt *largeTable) resize(addr uintptr, newSize int) ([]byte, bool) {
	rec, ok := lt.recs[addr]
	if !ok || rec.offset+newSize > len(rec.region) {
		return nil, false
	}
	rec.size = newSize
	return rec.region[rec.offset : rec.offset+newSize : rec.offset+newSize], true
}

// releaseAll unmaps every live large region. Used by Arena.Close.
func (lt *largeTable) releaseAll() error {
	var firstErr error
	for addr, rec := range lt.recs {
		delete(lt.recs, addr)
		lt.ctr.largeUnmaps.Add(1)
		lt.ctr.mappedBytes.Add(int64(-len(rec.region)))
		if err := mempage.Unmap(rec.region); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
