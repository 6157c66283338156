package arena

import (
	"fmt"
	"sort"

	"github.com/joshuapare/mmapalloc/internal/align"
)

// Config defines the size class strategy for an arena. Classes start as
// linear increments for small sizes and switch to geometric growth up to
// MaxClass; anything larger is served by the large-allocation path.
type Config struct {
	// Name for this configuration (for benchmarking and stats output).
	Name string

	// Small allocation settings (linear increments). All three must be
	// multiples of BaselineAlign.
	SmallMin  int // smallest slot size
	SmallMax  int // last linearly spaced slot size
	SmallStep int // increment between linear classes

	// Large class settings (geometric growth).
	MaxClass int     // upper bound for generated slot sizes
	Growth   float64 // growth factor between geometric classes
}

// Predefined configurations.
var (
	// Balanced: fine linear classes up to 512 bytes, then 1.5x growth.
	ConfigBalanced = Config{
		Name:      "Balanced",
		SmallMin:  16,
		SmallMax:  512,
		SmallStep: 16,
		MaxClass:  16384,
		Growth:    1.5,
	}

	// Coarse: fewer classes, power-of-two sizes above 512 bytes. Cheaper
	// class lookup, more internal fragmentation.
	ConfigCoarse = Config{
		Name:      "Coarse",
		SmallMin:  32,
		SmallMax:  512,
		SmallStep: 32,
		MaxClass:  16384,
		Growth:    2.0,
	}

	// Compact: three classes only (128, 1024, 8192). Minimal metadata for
	// callers with a narrow size distribution.
	ConfigCompact = Config{
		Name:      "Compact",
		SmallMin:  128,
		SmallMax:  128,
		SmallStep: 128,
		MaxClass:  8192,
		Growth:    8.0,
	}

	// DefaultConfig is used when no configuration is supplied.
	DefaultConfig = ConfigBalanced
)

// classTable holds the computed slot sizes, ascending.
type classTable struct {
	config Config
	sizes  []int
}

// newClassTable computes the slot sizes from config.
func newClassTable(config Config) (*classTable, error) {
	for _, v := range []struct {
		name string
		n    int
	}{
		{"SmallMin", config.SmallMin},
		{"SmallMax", config.SmallMax},
		{"SmallStep", config.SmallStep},
	} {
		if v.n <= 0 || v.n%BaselineAlign != 0 {
			return nil, fmt.Errorf("arena: %s (%d) must be a positive multiple of %d", v.name, v.n, BaselineAlign)
		}
	}
	if config.SmallMax < config.SmallMin {
		return nil, fmt.Errorf("arena: SmallMax (%d) below SmallMin (%d)", config.SmallMax, config.SmallMin)
	}
	if config.Growth <= 1.0 {
		return nil, fmt.Errorf("arena: Growth (%v) must exceed 1.0", config.Growth)
	}
	if config.MaxClass < config.SmallMax {
		return nil, fmt.Errorf("arena: MaxClass (%d) below SmallMax (%d)", config.MaxClass, config.SmallMax)
	}

	table := &classTable{
		config: config,
		sizes:  make([]int, 0, 64),
	}

	// Phase 1: small classes, linear increments.
	for size := config.SmallMin; size <= config.SmallMax; size += config.SmallStep {
		table.sizes = append(table.sizes, size)
	}

	// Phase 2: geometric growth, every size kept a baseline multiple.
	size := config.SmallMax
	for {
		next := align.Up(int(float64(size)*config.Growth), BaselineAlign)
		if next <= size {
			next = size + BaselineAlign // ensure progress
		}
		if next > config.MaxClass {
			break
		}
		table.sizes = append(table.sizes, next)
		size = next
	}

	return table, nil
}

// numClasses returns the number of size classes.
func (t *classTable) numClasses() int {
	return len(t.sizes)
}

// threshold returns the largest slot size. Requests above it always take
// the large-allocation path.
func (t *classTable) threshold() int {
	return t.sizes[len(t.sizes)-1]
}

// classFor returns the smallest class whose slot size is >= size, or
// len(sizes) when size exceeds the threshold. A request sitting exactly
// on a class boundary is assigned to that class.
func (t *classTable) classFor(size int) int {
	return sort.SearchInts(t.sizes, size)
}

// classForAligned returns the smallest class whose slot size is >= size
// and a multiple of alignment, so every slot of that class naturally
// satisfies the alignment. Reports false when no class qualifies.
func (t *classTable) classForAligned(size, alignment int) (int, bool) {
	for class := t.classFor(size); class < len(t.sizes); class++ {
		if t.sizes[class]%alignment == 0 {
			return class, true
		}
	}
	return 0, false
}
