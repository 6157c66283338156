//go:build unix

package mempage

import (
	"testing"
	"unsafe"
)

func TestMapRoundsToPageMultiple(t *testing.T) {
	mem, err := Map(1)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	defer func() {
		if unmapErr := Unmap(mem); unmapErr != nil {
			t.Fatalf("Unmap: %v", unmapErr)
		}
	}()
	if len(mem)%Size() != 0 {
		t.Fatalf("mapped length %d not a page multiple (page=%d)", len(mem), Size())
	}
	if len(mem) < 1 {
		t.Fatalf("mapped length %d smaller than request", len(mem))
	}
}

func TestMapIsPageAlignedAndWritable(t *testing.T) {
	mem, err := Map(3 * Size())
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	defer Unmap(mem)

	base := uintptr(unsafe.Pointer(unsafe.SliceData(mem)))
	if base%uintptr(Size()) != 0 {
		t.Fatalf("base %#x not page aligned", base)
	}

	// Touch first and last byte of every page.
	for off := 0; off < len(mem); off += Size() {
		mem[off] = 0xab
		mem[off+Size()-1] = 0xcd
	}
	for off := 0; off < len(mem); off += Size() {
		if mem[off] != 0xab || mem[off+Size()-1] != 0xcd {
			t.Fatalf("page at %d lost its contents", off)
		}
	}
}

func TestMapRejectsNonPositiveLength(t *testing.T) {
	for _, n := range []int{0, -1, -4096} {
		if _, err := Map(n); err == nil {
			t.Fatalf("Map(%d): expected error", n)
		}
	}
}

func TestUnmapNilIsNoop(t *testing.T) {
	if err := Unmap(nil); err != nil {
		t.Fatalf("Unmap(nil): %v", err)
	}
}
