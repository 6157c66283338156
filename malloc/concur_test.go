package malloc

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGlobal_SynchronizedAllocsThenFrees has every goroutine allocate,
// meet at a barrier while all allocations are live, check its memory was
// not touched by anyone else, then free.
func TestGlobal_SynchronizedAllocsThenFrees(t *testing.T) {
	const goroutines = 8
	const perGoroutine = 64

	g, err := NewGlobal(nil)
	require.NoError(t, err)

	var barrier sync.WaitGroup
	barrier.Add(goroutines)
	var wg sync.WaitGroup
	errCh := make(chan error, goroutines)

	sizes := []int{16, 256, 1024, 2048, 4096, 8192, 20000}

	for id := 0; id < goroutines; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			bufs := make([][]byte, 0, perGoroutine)
			held := make([]int, 0, perGoroutine)
			for i := 0; i < perGoroutine; i++ {
				size := sizes[i%len(sizes)]
				buf, err := g.Alloc(size, 16)
				if err != nil {
					errCh <- err
					barrier.Done()
					return
				}
				for j := range buf {
					buf[j] = byte(id)
				}
				bufs = append(bufs, buf)
				held = append(held, size)
			}

			barrier.Done()
			barrier.Wait()

			for i, buf := range bufs {
				for j := range buf {
					if buf[j] != byte(id) {
						t.Errorf("goroutine %d: allocation %d corrupted at byte %d", id, i, j)
						break
					}
				}
				if err := g.Free(buf, held[i], 16); err != nil {
					errCh <- err
					return
				}
			}
		}(id)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	assert.Equal(t, int64(0), g.Stats().LiveAllocs)
	assert.NoError(t, g.Verify())
}

// TestGlobal_ConcurrentCycles interleaves allocs and frees of random
// sizes across goroutines and checks the engine survives with a clean
// consistency scan and a live count matching the net operations.
func TestGlobal_ConcurrentCycles(t *testing.T) {
	const goroutines = 8
	const cycles = 500

	g, err := NewGlobal(nil)
	require.NoError(t, err)

	sizes := []int{1, 16, 64, 256, 1000, 2048, 4096, 8192, 13152, 20000}
	alignments := []int{1, 8, 16, 64}

	start := make(chan struct{})
	var wg sync.WaitGroup
	errCh := make(chan error, goroutines)

	for id := 0; id < goroutines; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(id)))
			<-start

			type allocation struct {
				buf             []byte
				size, alignment int
			}
			var held []allocation

			for i := 0; i < cycles; i++ {
				if len(held) == 0 || rng.Intn(2) == 0 {
					size := sizes[rng.Intn(len(sizes))]
					alignment := alignments[rng.Intn(len(alignments))]
					buf, err := g.Alloc(size, alignment)
					if err != nil {
						errCh <- err
						return
					}
					// Touch both ends; a handed-out slot shared with
					// another goroutine would show up here.
					buf[0] = byte(id)
					buf[len(buf)-1] = byte(id)
					held = append(held, allocation{buf, size, alignment})
				} else {
					j := rng.Intn(len(held))
					al := held[j]
					if al.buf[0] != byte(id) || al.buf[len(al.buf)-1] != byte(id) {
						t.Errorf("goroutine %d: allocation corrupted before free", id)
					}
					if err := g.Free(al.buf, al.size, al.alignment); err != nil {
						errCh <- err
						return
					}
					held[j] = held[len(held)-1]
					held = held[:len(held)-1]
				}
			}
			for _, al := range held {
				if err := g.Free(al.buf, al.size, al.alignment); err != nil {
					errCh <- err
					return
				}
			}
		}(id)
	}
	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	stats := g.Stats()
	assert.Equal(t, int64(0), stats.LiveAllocs)
	assert.Equal(t, int64(0), stats.LiveBytes)
	assert.Equal(t, stats.AllocCalls, stats.FreeCalls)
	assert.NoError(t, g.Verify())
}

// TestGlobal_FreeVisibleToOtherGoroutines checks deallocate-then-
// allocate ordering across goroutines: once Free returns, another
// goroutine's Alloc can reuse the slot.
func TestGlobal_FreeVisibleToOtherGoroutines(t *testing.T) {
	g, err := NewGlobal(nil)
	require.NoError(t, err)

	buf, err := g.Alloc(64, 8)
	require.NoError(t, err)
	require.NoError(t, g.Free(buf, 64, 8))

	type result struct {
		buf []byte
		err error
	}
	done := make(chan result)
	go func() {
		reused, err := g.Alloc(64, 8)
		done <- result{reused, err}
	}()
	res := <-done
	require.NoError(t, res.err)
	reused := res.buf

	// LIFO reuse: the freed slot is immediately available to the other
	// goroutine.
	require.Equal(t, &buf[0], &reused[0])
	require.NoError(t, g.Free(reused, 64, 8))
}
