package arena

import "testing"

// Test_ClassTable_Progressions pins the generated slot sizes for the
// predefined configs.
func Test_ClassTable_Progressions(t *testing.T) {
	table, err := newClassTable(ConfigBalanced)
	if err != nil {
		t.Fatalf("newClassTable: %v", err)
	}
	if got := table.numClasses(); got != 40 {
		t.Fatalf("Balanced classes = %d, want 40", got)
	}
	if got := table.sizes[0]; got != 16 {
		t.Fatalf("smallest class = %d, want 16", got)
	}
	if got := table.threshold(); got != 13152 {
		t.Fatalf("Balanced threshold = %d, want 13152", got)
	}
	for i, size := range table.sizes {
		if size%BaselineAlign != 0 {
			t.Fatalf("class %d size %d not a multiple of %d", i, size, BaselineAlign)
		}
		if i > 0 && size <= table.sizes[i-1] {
			t.Fatalf("class sizes not strictly ascending at %d: %v", i, table.sizes)
		}
	}

	compact, err := newClassTable(ConfigCompact)
	if err != nil {
		t.Fatalf("newClassTable: %v", err)
	}
	want := []int{128, 1024, 8192}
	if len(compact.sizes) != len(want) {
		t.Fatalf("Compact sizes = %v, want %v", compact.sizes, want)
	}
	for i, size := range want {
		if compact.sizes[i] != size {
			t.Fatalf("Compact sizes = %v, want %v", compact.sizes, want)
		}
	}
}

// Test_ClassTable_BoundaryAssignment checks that a request sitting
// exactly on a class boundary lands in that class, not the next one up.
func Test_ClassTable_BoundaryAssignment(t *testing.T) {
	table, err := newClassTable(ConfigBalanced)
	if err != nil {
		t.Fatalf("newClassTable: %v", err)
	}
	for class, size := range table.sizes {
		if got := table.classFor(size); got != class {
			t.Fatalf("classFor(%d) = %d, want %d", size, got, class)
		}
		if class+1 < len(table.sizes) {
			if got := table.classFor(size + 1); got != class+1 {
				t.Fatalf("classFor(%d) = %d, want %d", size+1, got, class+1)
			}
		}
	}
	if got := table.classFor(table.threshold() + 1); got != table.numClasses() {
		t.Fatalf("classFor(threshold+1) = %d, want %d (large)", got, table.numClasses())
	}
}

func Test_ClassTable_AlignedSelection(t *testing.T) {
	table, err := newClassTable(ConfigBalanced)
	if err != nil {
		t.Fatalf("newClassTable: %v", err)
	}

	// 100 bytes at alignment 64: 112 is the size fit but 128 is the
	// first class divisible by 64.
	class, ok := table.classForAligned(100, 64)
	if !ok || table.sizes[class] != 128 {
		t.Fatalf("classForAligned(100, 64) = class size %d, want 128", table.sizes[class])
	}

	// Baseline alignments never force promotion.
	for _, alignment := range []int{1, 2, 4, 8, 16} {
		if _, ok := table.classForAligned(16, alignment); !ok {
			t.Fatalf("classForAligned(16, %d) found no class", alignment)
		}
	}

	// No Balanced class is a 4096 multiple, so 4096-aligned requests
	// must promote to the large path.
	if class, ok := table.classForAligned(4096, 4096); ok {
		t.Fatalf("classForAligned(4096, 4096) = class size %d, want promotion", table.sizes[class])
	}
}

func Test_ClassTable_RejectsBadConfig(t *testing.T) {
	bad := []Config{
		{Name: "zero", SmallMin: 0, SmallMax: 512, SmallStep: 16, MaxClass: 16384, Growth: 1.5},
		{Name: "unaligned", SmallMin: 24, SmallMax: 512, SmallStep: 16, MaxClass: 16384, Growth: 1.5},
		{Name: "inverted", SmallMin: 512, SmallMax: 256, SmallStep: 16, MaxClass: 16384, Growth: 1.5},
		{Name: "flat", SmallMin: 16, SmallMax: 512, SmallStep: 16, MaxClass: 16384, Growth: 1.0},
		{Name: "lowmax", SmallMin: 16, SmallMax: 512, SmallStep: 16, MaxClass: 256, Growth: 1.5},
	}
	for _, config := range bad {
		if _, err := newClassTable(config); err == nil {
			t.Fatalf("config %q: expected error", config.Name)
		}
	}
}
