package entity

import "testing"

func TestAllocateReleaseAllocate(t *testing.T) {
	p := NewPool(8)

	idx, h1, ok := p.Allocate()
	if !ok {
		t.Fatal("Allocate failed on empty pool")
	}
	if idx != 0 {
		t.Fatalf("expected first allocation at index 0, got %d", idx)
	}

	p.Release(idx)

	idx2, h2, ok := p.Allocate()
	if !ok {
		t.Fatal("Allocate failed after release")
	}
	if idx2 != idx {
		t.Fatalf("expected recycled index %d, got %d", idx, idx2)
	}
	if h2.Generation() != h1.Generation()+1 {
		t.Fatalf("expected generation bump, got %d -> %d", h1.Generation(), h2.Generation())
	}

	if _, ok := p.Resolve(h1); ok {
		t.Fatal("stale handle from first allocation should fail to resolve")
	}
	if got, ok := p.Resolve(h2); !ok || got != idx2 {
		t.Fatalf("fresh handle should resolve to %d, got %d (ok=%v)", idx2, got, ok)
	}
}

func TestPoolExhaustion(t *testing.T) {
	p := NewPool(4)
	for i := 0; i < 4; i++ {
		if _, _, ok := p.Allocate(); !ok {
			t.Fatalf("expected slot %d to allocate", i)
		}
	}
	if _, _, ok := p.Allocate(); ok {
		t.Fatal("expected pool to be exhausted")
	}

	p.Release(2)
	idx, h, ok := p.Allocate()
	if !ok {
		t.Fatal("expected allocate to succeed after release")
	}
	if idx != 2 {
		t.Fatalf("expected recycled index 2, got %d", idx)
	}
	if h.Generation() != 1 {
		t.Fatalf("expected generation 1 after one release, got %d", h.Generation())
	}
}

func TestReleaseTwiceIsNoOp(t *testing.T) {
	p := NewPool(4)
	idx, h, _ := p.Allocate()
	p.Release(idx)
	genAfterFirst := p.generations[idx]

	p.Release(idx) // should be a no-op

	if p.generations[idx] != genAfterFirst {
		t.Fatalf("second release bumped generation again: %d -> %d", genAfterFirst, p.generations[idx])
	}
	if _, ok := p.Resolve(h); ok {
		t.Fatal("handle from before release must not resolve")
	}
}

func TestActiveFreeInvariant(t *testing.T) {
	p := NewPool(16)
	var handles []Handle
	for i := 0; i < 10; i++ {
		_, h, ok := p.Allocate()
		if !ok {
			t.Fatalf("allocate %d failed", i)
		}
		handles = append(handles, h)
	}

	// Release every other slot.
	for i, h := range handles {
		if i%2 == 0 {
			idx, _ := p.Resolve(h)
			p.Release(idx)
		}
	}

	if p.Len() != 5 {
		t.Fatalf("expected 5 active slots, got %d", p.Len())
	}
	if len(p.free) != 5 {
		t.Fatalf("expected 5 free slots, got %d", len(p.free))
	}
	unallocated := p.capacity - p.next
	if p.Len()+len(p.free)+unallocated != p.capacity {
		t.Fatalf("active+free+unallocated invariant broken")
	}
}

func TestHandleRoundTrip(t *testing.T) {
	p := NewPool(MaxIndex)
	idx, h, ok := p.Allocate()
	if !ok {
		t.Fatal("allocate failed")
	}
	got, ok := p.Resolve(h)
	if !ok || got != idx {
		t.Fatalf("round trip failed: got %d ok=%v want %d", got, ok, idx)
	}
}
