// Package align holds the integer alignment helpers shared by the
// allocation engine. All helpers require the alignment to be a power of
// two; callers validate that before reaching for them.
package align

// Up returns n aligned up to the next multiple of a.
//
// Example:
//
//	Up(1, 16)  = 16
//	Up(16, 16) = 16
//	Up(17, 16) = 32
func Up(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}

// UpPtr returns p aligned up to the next multiple of a.
func UpPtr(p uintptr, a int) uintptr {
	mask := uintptr(a - 1)
	return (p + mask) &^ mask
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
