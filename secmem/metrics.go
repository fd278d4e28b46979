package secmem

// MetricsSink receives allocation lifecycle events from a Pool. All
// methods may be called concurrently. Implementations must not block:
// the pool invokes them on the rent/release path.
//
// A nil sink is valid; the pool functions with no sink attached.
// poolmetrics provides a Prometheus-backed implementation.
type MetricsSink interface {
	// SlabAllocated is called when a new slab is mapped.
	SlabAllocated(elemSize, capacity int)
	// SlabReclaimed is called when a slab is unmapped by TrimExcess
	// or pool teardown.
	SlabReclaimed(elemSize, capacity int)
	// Rented is called for every successful lease.
	Rented(size int)
	// Released is called for every release back into a live slab.
	Released(size int)
	// LateRelease is called when a buffer is released after its pool
	// was torn down and the bytes could not be returned.
	LateRelease(size int)
}

// Stats is a point-in-time snapshot of pool-wide allocation totals.
type Stats struct {
	// Slabs is the number of currently mapped slabs.
	Slabs int
	// Bytes is the total number of mapped bytes across all slabs.
	Bytes int64
}
