package secmem

import (
	"sync"

	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Buffer is one exact-length lease into a slab. A Buffer has exactly one
// owner; after Close, any access to its contents panics. Close is
// idempotent and may be called from a different goroutine than Rent.
type Buffer struct {
	pool *Pool
	slab *slab
	idx  int
	span trace.Span

	mu     sync.Mutex
	data   []byte
	closed bool
}

// Len returns the leased length. Valid even after Close.
func (b *Buffer) Len() int {
	return b.slab.elemSize
}

// Bytes returns the leased segment. The slice points directly into the
// locked slab region; do not retain it beyond the buffer's lifetime.
// Panics if the buffer has been released or the owning pool torn down.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secmem: use of released buffer")
	}
	if b.pool.closed.Load() {
		panic("secmem: use of buffer after pool teardown")
	}
	return b.data
}

// Released reports whether the buffer has been closed.
func (b *Buffer) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Close returns the segment to its slab. The bytes are zeroed before
// the segment becomes available for reuse. If the owning pool has
// already been torn down, Close degrades to a logged no-op: release
// legitimately races with shutdown and must not panic there. Close is
// idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.data = nil
	b.mu.Unlock()

	class := b.slab.class
	class.mu.Lock()
	late := b.slab.released
	if late {
		// Teardown already zeroed the region; the last release unmaps it.
		b.slab.leased--
		if b.slab.leased == 0 {
			b.slab.unmap()
		}
	} else {
		b.slab.putBack(b.idx)
	}
	class.mu.Unlock()

	if late {
		b.pool.logger.Warn("secmem: buffer released after pool teardown",
			"size", b.slab.elemSize)
		if b.pool.metrics != nil {
			b.pool.metrics.LateRelease(b.slab.elemSize)
		}
		b.span.RecordError(ErrPoolClosed)
		b.span.SetStatus(otelcodes.Error, "released after pool teardown")
	} else if b.pool.metrics != nil {
		b.pool.metrics.Released(b.slab.elemSize)
	}
	b.span.End()
	return nil
}
