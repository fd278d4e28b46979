package secmem

import (
	"context"
	"testing"
)

func TestDefaultCapacity_MoreSegmentsForSmallSizes(t *testing.T) {
	last := DefaultCapacity(1)
	for _, size := range []int{64, 65, 256, 1024, 4096, 1 << 20} {
		got := DefaultCapacity(size)
		if got <= 0 {
			t.Fatalf("DefaultCapacity(%d) = %d", size, got)
		}
		if got > last {
			t.Fatalf("DefaultCapacity(%d) = %d grew past %d", size, got, last)
		}
		last = got
	}
}

func TestCustomCapacityStrategy(t *testing.T) {
	p := New(Config{Capacity: func(int) int { return 2 }})
	defer p.Close()

	a, err := p.Rent(context.Background(), 40)
	if err != nil {
		t.Fatalf("Rent: %v", err)
	}
	b, err := p.Rent(context.Background(), 40)
	if err != nil {
		t.Fatalf("Rent: %v", err)
	}
	if p.Stats().Slabs != 1 {
		t.Fatalf("two leases should fit one slab of capacity 2")
	}

	// Third lease exhausts the slab and forces a second one.
	c, err := p.Rent(context.Background(), 40)
	if err != nil {
		t.Fatalf("Rent: %v", err)
	}
	if p.Stats().Slabs != 2 {
		t.Fatalf("Slabs = %d, want 2", p.Stats().Slabs)
	}
	for _, buf := range []*Buffer{a, b, c} {
		_ = buf.Close()
	}
}
