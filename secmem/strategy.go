package secmem

// CapacityStrategy decides how many segments a newly created slab holds
// for a given element size. Returning more segments per slab amortizes
// mmap/mlock cost for small elements; returning fewer bounds the waste
// of an oversized allocation for large elements.
//
// The exact thresholds are a tuning knob, not a correctness invariant.
type CapacityStrategy func(elemSize int) int

// DefaultCapacity is the capacity strategy used when Config.Capacity is
// nil. Small sizes (typical key and signature lengths) get dense slabs;
// large sizes (post-quantum key material) get sparse ones.
func DefaultCapacity(elemSize int) int {
	switch {
	case elemSize <= 64:
		return 64
	case elemSize <= 256:
		return 32
	case elemSize <= 1024:
		return 16
	case elemSize <= 4096:
		return 8
	default:
		return 4
	}
}
