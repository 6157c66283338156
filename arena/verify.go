package arena

import "fmt"

// Verify scans the engine's bookkeeping and reports the first
// inconsistency found: free stacks disagreeing with allocation bitmaps,
// out-of-range or duplicate free indexes, overlapping chunks, large
// records escaping their regions, or live counters drifting from the
// structures they summarize. It exists for tests and post-run checks;
// a healthy engine always returns nil.
func (a *Arena) Verify() error {
	if a.closed {
		return nil
	}
	live := 0
	for class, b := range a.buckets {
		var prevEnd uintptr
		for _, c := range b.chunks {
			if c.base() < prevEnd {
				return fmt.Errorf("arena: class %d chunks overlap or are unsorted", class)
			}
			prevEnd = c.base() + uintptr(len(c.mem))

			if len(c.freeIdx) > c.nslots {
				return fmt.Errorf("arena: class %d free stack exceeds %d slots", class, c.nslots)
			}
			seen := make(map[int32]bool, len(c.freeIdx))
			for _, idx := range c.freeIdx {
				if idx < 0 || int(idx) >= c.nslots {
					return fmt.Errorf("arena: class %d free index %d out of range", class, idx)
				}
				if seen[idx] {
					return fmt.Errorf("arena: class %d free index %d duplicated", class, idx)
				}
				seen[idx] = true
				if c.used[idx/64]&(1<<(idx%64)) != 0 {
					return fmt.Errorf("arena: class %d slot %d both free and allocated", class, idx)
				}
			}
			if got, want := c.countUsed(), c.nslots-len(c.freeIdx); got != want {
				return fmt.Errorf("arena: class %d bitmap counts %d used, free stack implies %d", class, got, want)
			}
		}
		live += b.liveSlots()
	}
	for addr, rec := range a.large.recs {
		if rec.offset+rec.size > len(rec.region) {
			return fmt.Errorf("arena: large record at %#x escapes its region", addr)
		}
		if rec.alignment > 0 && addr%uintptr(rec.alignment) != 0 {
			return fmt.Errorf("arena: large record at %#x violates alignment %d", addr, rec.alignment)
		}
	}
	live += len(a.large.recs)
	if got := a.ctr.liveAllocs.Load(); got != int64(live) {
		return fmt.Errorf("arena: live counter %d, structures hold %d", got, live)
	}
	return nil
}
