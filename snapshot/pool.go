package snapshot

import "sync/atomic"

// Pool is a lock-free triple buffer for publishing frames from the tick
// goroutine to any number of reading broadcaster goroutines, directly
// grounded on the teacher's SnapshotPool: three preallocated slots, an
// atomic write index the producer advances, and an atomic read index
// readers swap in after a publish so they never observe a half-written
// frame and never block the producer.
type Pool struct {
	slots    [3]Frame
	writeIdx atomic.Int32
	readIdx  atomic.Int32
	sequence atomic.Uint64
}

// NewPool creates an empty triple buffer.
func NewPool() *Pool {
	p := &Pool{}
	p.readIdx.Store(-1)
	return p
}

// AcquireWrite returns the slot index the producer should fill next: the
// slot that is neither the currently-published read slot nor the one
// about to replace it, so a slow reader never has its buffer mutated
// mid-read.
func (p *Pool) AcquireWrite() int {
	cur := int(p.writeIdx.Load())
	read := int(p.readIdx.Load())
	next := (cur + 1) % 3
	if next == read {
		next = (next + 1) % 3
	}
	return next
}

// PublishWrite stores a freshly built frame into slot and makes it the
// new read target, stamping it with the next monotonic sequence number.
func (p *Pool) PublishWrite(slot int, f Frame) {
	f.Sequence = p.sequence.Add(1)
	p.slots[slot] = f
	p.writeIdx.Store(int32(slot))
	p.readIdx.Store(int32(slot))
}

// AcquireRead returns the most recently published frame and true, or a
// zero Frame and false if nothing has been published yet.
func (p *Pool) AcquireRead() (Frame, bool) {
	idx := p.readIdx.Load()
	if idx < 0 {
		return Frame{}, false
	}
	return p.slots[idx], true
}
