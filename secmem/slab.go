package secmem

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// slab is one backing allocation subdivided into capacity segments of
// elemSize bytes each. Slab memory lives outside the Go heap so the
// garbage collector can never copy or relocate key material.
//
// All bookkeeping fields are guarded by the owning sizeClass's mutex.
type slab struct {
	class    *sizeClass
	mem      []byte // mmap region, len == elemSize*capacity
	elemSize int
	capacity int
	free     []int // segment indexes available for lease, LIFO
	leased   int
	released bool // no further leases or returns
}

// newSlab maps, locks, and dump-protects a fresh slab. The region is
// zero-filled by the kernel, so segments are all-zero before first use.
func newSlab(class *sizeClass, elemSize, capacity int) (*slab, error) {
	mem, err := unix.Mmap(-1, 0, elemSize*capacity,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secmem: mmap failed: %w", err)
	}
	if err := unix.Mlock(mem); err != nil {
		_ = unix.Munmap(mem)
		return nil, fmt.Errorf("secmem: mlock failed: %w", err)
	}
	if err := unix.Madvise(mem, unix.MADV_DONTDUMP); err != nil {
		_ = unix.Munlock(mem)
		_ = unix.Munmap(mem)
		return nil, fmt.Errorf("secmem: madvise(MADV_DONTDUMP) failed: %w", err)
	}

	free := make([]int, capacity)
	for i := range free {
		free[i] = capacity - 1 - i
	}
	return &slab{
		class:    class,
		mem:      mem,
		elemSize: elemSize,
		capacity: capacity,
		free:     free,
	}, nil
}

// take leases one segment and returns its index, or -1 if the slab is
// exhausted. Caller holds the class mutex.
func (s *slab) take() int {
	if s.released || len(s.free) == 0 {
		return -1
	}
	idx := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]
	s.leased++
	return idx
}

// segment returns the exact-length slice for a segment index.
func (s *slab) segment(idx int) []byte {
	off := idx * s.elemSize
	return s.mem[off : off+s.elemSize : off+s.elemSize]
}

// putBack zeroes a segment and marks it available again. Caller holds
// the class mutex; the zeroing completes before the index reappears on
// the free list, so a concurrent take can never observe stale bytes.
func (s *slab) putBack(idx int) {
	seg := s.segment(idx)
	for i := range seg {
		seg[i] = 0
	}
	s.free = append(s.free, idx)
	s.leased--
}

// retire zeroes the whole region and stops further leases. The mapping
// stays in place: outstanding buffers racing with teardown must read
// zeroes, never fault. Caller holds the class mutex.
func (s *slab) retire() {
	if s.released {
		return
	}
	s.released = true
	for i := range s.mem {
		s.mem[i] = 0
	}
	s.free = nil
}

// unmap unlocks and releases the backing region of a retired slab.
// Caller holds the class mutex and has confirmed no leases remain.
func (s *slab) unmap() {
	if s.mem == nil {
		return
	}
	_ = unix.Munlock(s.mem)
	_ = unix.Munmap(s.mem)
	s.mem = nil
}

// destroy retires and unmaps in one step, for slabs with no outstanding
// leases. Caller holds the class mutex. Idempotent.
func (s *slab) destroy() {
	s.retire()
	s.unmap()
}

// sizeClass groups all slabs of one element size. Each class has its own
// mutex so concurrent rent/release traffic on different sizes never
// contends on a shared lock.
type sizeClass struct {
	elemSize int

	mu    sync.Mutex
	slabs []*slab
}
