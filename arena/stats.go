package arena

import "sync/atomic"

// Stats is a point-in-time snapshot of an engine's activity.
type Stats struct {
	AllocCalls   int64 // total Alloc calls
	FreeCalls    int64 // total Free calls
	ReallocCalls int64 // total Realloc calls
	LiveAllocs   int64 // allocations currently outstanding
	LiveBytes    int64 // bytes currently handed to callers
	MappedBytes  int64 // bytes currently mapped from the OS
	ChunkMaps    int64 // bucket chunks mapped
	ChunkUnmaps  int64 // bucket chunks unmapped
	LargeMaps    int64 // large regions mapped
	LargeUnmaps  int64 // large regions unmapped
}

// counters backs Stats. Fields are atomic so the global adapter's
// per-class locking never serializes on shared bookkeeping.
type counters struct {
	allocCalls   atomic.Int64
	freeCalls    atomic.Int64
	reallocCalls atomic.Int64
	liveAllocs   atomic.Int64
	liveBytes    atomic.Int64
	mappedBytes  atomic.Int64
	chunkMaps    atomic.Int64
	chunkUnmaps  atomic.Int64
	largeMaps    atomic.Int64
	largeUnmaps  atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		AllocCalls:   c.allocCalls.Load(),
		FreeCalls:    c.freeCalls.Load(),
		ReallocCalls: c.reallocCalls.Load(),
		LiveAllocs:   c.liveAllocs.Load(),
		LiveBytes:    c.liveBytes.Load(),
		MappedBytes:  c.mappedBytes.Load(),
		ChunkMaps:    c.chunkMaps.Load(),
		ChunkUnmaps:  c.chunkUnmaps.Load(),
		LargeMaps:    c.largeMaps.Load(),
		LargeUnmaps:  c.largeUnmaps.Load(),
	}
}
