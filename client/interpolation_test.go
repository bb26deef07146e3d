package client

import (
	"testing"

	"github.com/fightclub/arenacore/snapshot"
)

func frameAt(x float32) snapshot.Frame {
	return snapshot.Frame{Records: []snapshot.Record{{Handle: 1, X: x, Y: 0, Scale: 1}}}
}

func TestSampleInterpolatesBetweenFrames(t *testing.T) {
	b := NewInterpolationBuffer(0)
	b.Push(0.0, frameAt(0))
	b.Push(1.0, frameAt(10))

	out := b.Sample(0.5)
	rec, ok := out[1]
	if !ok {
		t.Fatalf("expected handle 1 to be present in the sample")
	}
	if rec.X < 4 || rec.X > 6 {
		t.Fatalf("expected interpolated x near 5, got %v", rec.X)
	}
}

func TestSampleBeforeFirstFrameClampsToOldest(t *testing.T) {
	b := NewInterpolationBuffer(0)
	b.Push(5.0, frameAt(100))
	out := b.Sample(0.0)
	if out[1].X != 100 {
		t.Fatalf("expected clamp to oldest frame, got %v", out[1].X)
	}
}

func TestSampleAfterLastFrameClampsToNewest(t *testing.T) {
	b := NewInterpolationBuffer(0)
	b.Push(0.0, frameAt(1))
	b.Push(1.0, frameAt(2))
	out := b.Sample(100.0)
	if out[1].X != 2 {
		t.Fatalf("expected clamp to newest frame, got %v", out[1].X)
	}
}

func TestSampleDropsEntityMissingFromOneFrame(t *testing.T) {
	b := NewInterpolationBuffer(0)
	b.Push(0.0, snapshot.Frame{Records: []snapshot.Record{{Handle: 1, X: 0}, {Handle: 2, X: 0}}})
	b.Push(1.0, snapshot.Frame{Records: []snapshot.Record{{Handle: 1, X: 10}}})

	out := b.Sample(0.5)
	if _, ok := out[2]; ok {
		t.Fatalf("expected entity 2 (absent from the newer frame) to be dropped from the sample")
	}
	if _, ok := out[1]; !ok {
		t.Fatalf("expected entity 1 to be present")
	}
}

func TestSampleEmptyBufferReturnsEmptyMap(t *testing.T) {
	b := NewInterpolationBuffer(0)
	out := b.Sample(1.0)
	if len(out) != 0 {
		t.Fatalf("expected empty sample from an empty buffer, got %v", out)
	}
}
