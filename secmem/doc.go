// Package secmem provides a slab-backed allocator for sensitive byte
// buffers such as private keys, public keys, and signatures.
//
// A Pool hands out exact-length leases (Buffer) carved out of larger
// fixed-element-size slabs. Slab memory is allocated outside the Go heap
// via mmap(MAP_ANONYMOUS), locked into physical RAM via mlock, and
// excluded from core dumps via madvise(MADV_DONTDUMP). A buffer's bytes
// are overwritten with zero before its segment becomes available for
// reuse and again when the pool is torn down; this is a hard security
// invariant, not an optimization.
//
// Contract:
//   - Rent MUST return a buffer whose visible length equals the requested
//     size exactly, never the slab's internal rounding.
//   - A segment MUST never be leased to two callers at once.
//   - Zeroing MUST complete before a segment is eligible for a new lease.
//   - Releasing a buffer after the pool has been torn down MUST NOT
//     panic; it degrades to a logged no-op because release legitimately
//     races with shutdown.
//
// Rent and release are synchronous and never block on I/O. Observability
// is optional: a MetricsSink receives allocation counters and one
// OpenTelemetry span covers each lease from Rent through Close, parented
// to the context that was ambient at Rent time.
package secmem
