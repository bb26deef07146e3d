package client

import "github.com/fightclub/arenacore/snapshot"

// InterpolationCapacity bounds the render-side snapshot history; at a
// 20Hz tick rate this covers one second of frames, comfortably more than
// the render delay used to smooth over jitter.
const InterpolationCapacity = 20

// timedFrame pairs a snapshot with the local clock time it was received,
// since interpolation runs against wall-clock render time, not sequence
// numbers.
type timedFrame struct {
	receivedAt float64 // seconds, monotonic clock supplied by the caller
	frame      snapshot.Frame
}

// InterpolationBuffer holds the last InterpolationCapacity received
// snapshots and produces smoothed entity positions for any render
// timestamp that falls between two of them. Sample reuses its own
// output map across calls, but it allocates a fresh handle index of the
// newer bracketing frame on every call.
type InterpolationBuffer struct {
	buf   [InterpolationCapacity]timedFrame
	head  int
	count int

	renderDelay float64 // seconds of deliberate render-behind-live lag
	out         map[uint32]Interpolated
}

// Interpolated is one entity's smoothed render transform.
type Interpolated struct {
	X, Y     float32
	Rotation float32
	Scale    float32
}

// NewInterpolationBuffer creates a buffer with the given render delay
// (typically ~2 tick periods, enough to almost always have a bracketing
// pair of snapshots on hand).
func NewInterpolationBuffer(renderDelay float64) *InterpolationBuffer {
	return &InterpolationBuffer{renderDelay: renderDelay, out: make(map[uint32]Interpolated, 64)}
}

// Push appends a newly received snapshot, evicting the oldest entry once
// the buffer is full.
func (b *InterpolationBuffer) Push(receivedAt float64, f snapshot.Frame) {
	b.buf[b.head] = timedFrame{receivedAt: receivedAt, frame: f}
	b.head = (b.head + 1) % InterpolationCapacity
	if b.count < InterpolationCapacity {
		b.count++
	}
}

// Sample returns smoothed positions for renderTime - renderDelay,
// reusing its internal map. Entities present in only one of the
// bracketing frames are not included (they either just appeared or just
// left, and snapping them in/out at the bracket boundary is cheaper and
// less visually confusing than extrapolating).
func (b *InterpolationBuffer) Sample(renderTime float64) map[uint32]Interpolated {
	for k := range b.out {
		delete(b.out, k)
	}
	if b.count == 0 {
		return b.out
	}

	target := renderTime - b.renderDelay
	older, newer, alpha, ok := b.bracket(target)
	if !ok {
		return b.out
	}

	newerByHandle := make(map[uint32]snapshot.Record, len(newer.Records))
	for _, r := range newer.Records {
		newerByHandle[r.Handle] = r
	}

	for _, a := range older.Records {
		bRec, ok := newerByHandle[a.Handle]
		if !ok {
			continue
		}
		b.out[a.Handle] = Interpolated{
			X:        lerp(a.X, bRec.X, alpha),
			Y:        lerp(a.Y, bRec.Y, alpha),
			Rotation: lerp(a.Rotation, bRec.Rotation, alpha),
			Scale:    lerp(a.Scale, bRec.Scale, alpha),
		}
	}
	return b.out
}

// bracket finds the two buffered frames whose receive times straddle
// target and returns them plus the interpolation factor between them. If
// target is older than every buffered frame, the oldest frame is
// returned for both ends (alpha 0). If target is newer than every
// buffered frame, the newest frame is returned for both ends (alpha 0) —
// the caller is asking to extrapolate, which this buffer deliberately
// does not do.
func (b *InterpolationBuffer) bracket(target float64) (older, newer snapshot.Frame, alpha float32, ok bool) {
	start := (b.head - b.count + InterpolationCapacity) % InterpolationCapacity

	first := b.buf[start]
	last := b.buf[(start+b.count-1)%InterpolationCapacity]

	if target <= first.receivedAt {
		return first.frame, first.frame, 0, true
	}
	if target >= last.receivedAt {
		return last.frame, last.frame, 0, true
	}

	for i := 0; i < b.count-1; i++ {
		a := b.buf[(start+i)%InterpolationCapacity]
		c := b.buf[(start+i+1)%InterpolationCapacity]
		if target >= a.receivedAt && target <= c.receivedAt {
			span := c.receivedAt - a.receivedAt
			if span <= 0 {
				return a.frame, c.frame, 0, true
			}
			return a.frame, c.frame, float32((target - a.receivedAt) / span), true
		}
	}
	return snapshot.Frame{}, snapshot.Frame{}, 0, false
}

func lerp(a, c float32, alpha float32) float32 {
	return a + (c-a)*alpha
}
