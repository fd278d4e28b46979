package secmem

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "sigil.co/sigil/secmem"

// Config holds the parameters for constructing a Pool. The zero value is
// valid: default capacity strategy, discarded logs, no metrics sink, and
// the process-global OpenTelemetry tracer provider (a no-op unless an
// SDK is installed).
type Config struct {
	// Capacity decides how many segments a new slab holds for a given
	// element size. If nil, DefaultCapacity is used.
	Capacity CapacityStrategy

	// Logger receives operational messages (pool teardown, late
	// releases). If nil, a no-op logger is used.
	Logger *slog.Logger

	// Metrics receives allocation lifecycle events. Optional.
	Metrics MetricsSink

	// Tracer emits one span per lease lifetime. If nil, the global
	// tracer provider is consulted.
	Tracer trace.Tracer
}

// Pool is a slab allocator for sensitive byte buffers. It is safe for
// concurrent use. Individual buffers are not: each lease has exactly one
// owner until released.
type Pool struct {
	capacity CapacityStrategy
	logger   *slog.Logger
	metrics  MetricsSink
	tracer   trace.Tracer

	closed atomic.Bool

	mu      sync.RWMutex // guards classes
	classes map[int]*sizeClass

	statSlabs atomic.Int64
	statBytes atomic.Int64
}

// New constructs a pool. The caller owns teardown: call Close when the
// pool is no longer needed, or use Shared for a process-wide instance
// that lives until exit.
func New(cfg Config) *Pool {
	capacity := cfg.Capacity
	if capacity == nil {
		capacity = DefaultCapacity
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Pool{
		capacity: capacity,
		logger:   logger,
		metrics:  cfg.Metrics,
		tracer:   tracer,
		classes:  make(map[int]*sizeClass),
	}
}

var (
	sharedOnce sync.Once
	shared     *Pool
)

// Shared returns the lazily-initialized process-wide pool. It is never
// torn down during normal operation; callers that need deterministic
// teardown should construct their own pool with New.
func Shared() *Pool {
	sharedOnce.Do(func() {
		shared = New(Config{})
	})
	return shared
}

// Rent leases a buffer of exactly size bytes. The buffer's visible
// length is the requested size, never the slab's internal rounding, and
// its content is all-zero. The caller must call Close on the returned
// buffer when done.
//
// The lease span is parented to ctx; releasing the buffer ends the span
// even when release happens on a different goroutine.
func (p *Pool) Rent(ctx context.Context, size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	class, err := p.class(size)
	if err != nil {
		return nil, err
	}

	class.mu.Lock()
	// Teardown may have won the race since the closed check above; a
	// lease taken now would never be zeroed on Close.
	if p.closed.Load() {
		class.mu.Unlock()
		return nil, ErrPoolClosed
	}
	var owner *slab
	idx := -1
	for _, s := range class.slabs {
		if idx = s.take(); idx >= 0 {
			owner = s
			break
		}
	}
	if owner == nil {
		owner, err = newSlab(class, size, p.capacity(size))
		if err != nil {
			class.mu.Unlock()
			return nil, err
		}
		class.slabs = append(class.slabs, owner)
		p.statSlabs.Add(1)
		p.statBytes.Add(int64(len(owner.mem)))
		if p.metrics != nil {
			p.metrics.SlabAllocated(size, owner.capacity)
		}
		idx = owner.take()
	}
	data := owner.segment(idx)
	class.mu.Unlock()

	if p.metrics != nil {
		p.metrics.Rented(size)
	}
	_, span := p.tracer.Start(ctx, "secmem.lease",
		trace.WithAttributes(attribute.Int("secmem.size", size)))

	return &Buffer{
		pool: p,
		slab: owner,
		idx:  idx,
		data: data,
		span: span,
	}, nil
}

// class returns the size class for elemSize, creating it if needed.
func (p *Pool) class(elemSize int) (*sizeClass, error) {
	p.mu.RLock()
	c := p.classes[elemSize]
	p.mu.RUnlock()
	if c != nil {
		return c, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}
	if c = p.classes[elemSize]; c == nil {
		c = &sizeClass{elemSize: elemSize}
		p.classes[elemSize] = c
	}
	return c, nil
}

// TrimExcess unmaps every slab with zero outstanding leases and returns
// the number reclaimed. Slabs with at least one active lease are never
// touched. The pool remains usable; the next Rent transparently maps a
// fresh slab.
func (p *Pool) TrimExcess() int {
	if p.closed.Load() {
		return 0
	}

	p.mu.RLock()
	classes := make([]*sizeClass, 0, len(p.classes))
	for _, c := range p.classes {
		classes = append(classes, c)
	}
	p.mu.RUnlock()

	reclaimed := 0
	for _, c := range classes {
		c.mu.Lock()
		kept := c.slabs[:0]
		for _, s := range c.slabs {
			if s.leased > 0 || s.released {
				kept = append(kept, s)
				continue
			}
			size := len(s.mem)
			s.destroy()
			reclaimed++
			p.statSlabs.Add(-1)
			p.statBytes.Add(-int64(size))
			if p.metrics != nil {
				p.metrics.SlabReclaimed(c.elemSize, s.capacity)
			}
		}
		c.slabs = kept
		c.mu.Unlock()
	}
	return reclaimed
}

// Close tears the pool down: every slab is zeroed, including slabs with
// outstanding leases. Subsequent Rent calls fail with ErrPoolClosed.
// Buffers still held by callers degrade gracefully: their contents read
// as zeroes, Bytes panics as use-after-release, and their Close becomes
// a logged no-op. A slab with outstanding leases stays mapped until its
// last buffer is released, so a holder racing with teardown can never
// fault. Close is idempotent.
func (p *Pool) Close() error {
	if p.closed.Swap(true) {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.classes {
		c.mu.Lock()
		for _, s := range c.slabs {
			if s.released {
				continue
			}
			size := len(s.mem)
			s.retire()
			if s.leased == 0 {
				s.unmap()
			}
			p.statSlabs.Add(-1)
			p.statBytes.Add(-int64(size))
			if p.metrics != nil {
				p.metrics.SlabReclaimed(c.elemSize, s.capacity)
			}
		}
		c.mu.Unlock()
	}
	p.logger.Info("secmem pool closed")
	return nil
}

// Stats returns a snapshot of pool-wide allocation totals.
func (p *Pool) Stats() Stats {
	return Stats{
		Slabs: int(p.statSlabs.Load()),
		Bytes: p.statBytes.Load(),
	}
}
