package client

import (
	"testing"

	"github.com/fightclub/arenacore/snapshot"
)

func TestApplyLocalMovesToward(t *testing.T) {
	p := NewPredictor(DefaultMovementConfig(), State{})
	p.ApplyLocal(150, 0, 0.05)
	s := p.State()
	if s.X <= 0 {
		t.Fatalf("expected local prediction to move toward target, got x=%v", s.X)
	}
}

func TestReconcileSmallDivergenceReplaysPending(t *testing.T) {
	p := NewPredictor(DefaultMovementConfig(), State{})
	for i := 0; i < 5; i++ {
		p.ApplyLocal(150, 0, 0.05)
	}
	predictedAt5 := p.State()
	_ = predictedAt5

	// Server acknowledges only the first 3 inputs; inputs 4 and 5 are
	// still pending and must be replayed on top of the server's state.
	p.Reconcile(3, State{X: 4.0, Y: 0})

	s := p.State()
	if s.X <= 4.0 {
		t.Fatalf("expected replayed inputs to move state past the acked position, got x=%v", s.X)
	}
}

func TestReconcileDropsAcknowledgedInputs(t *testing.T) {
	p := NewPredictor(DefaultMovementConfig(), State{})
	for i := 0; i < 10; i++ {
		p.ApplyLocal(150, 0, 0.05)
	}
	if p.count != 10 {
		t.Fatalf("expected 10 pending inputs, got %d", p.count)
	}
	p.Reconcile(7, State{X: 5, Y: 0})
	if p.count != 3 {
		t.Fatalf("expected 3 pending inputs after acking 7, got %d", p.count)
	}
}

func TestRingBufferWrapsAtCapacity(t *testing.T) {
	p := NewPredictor(DefaultMovementConfig(), State{})
	for i := 0; i < PendingInputCapacity+10; i++ {
		p.ApplyLocal(150, 0, 0.05)
	}
	if p.count != PendingInputCapacity {
		t.Fatalf("expected ring buffer to cap at %d, got %d", PendingInputCapacity, p.count)
	}
}

func TestReconcileFromFrameUsesMatchingRecord(t *testing.T) {
	p := NewPredictor(DefaultMovementConfig(), State{})
	for i := 0; i < 5; i++ {
		p.ApplyLocal(150, 0, 0.05)
	}

	frame := snapshot.Frame{
		Records: []snapshot.Record{
			{Handle: 9, X: 1, Y: 1, LastProcessedSeq: 3},
			{Handle: 42, X: 4.0, Y: 0, VX: 0, VY: 0, LastProcessedSeq: 3},
		},
	}

	if !p.ReconcileFromFrame(frame, 42) {
		t.Fatalf("expected a matching record for handle 42 to be found")
	}
	if p.count != 2 {
		t.Fatalf("expected 2 pending inputs after acking seq 3, got %d", p.count)
	}
	s := p.State()
	if s.X <= 4.0 {
		t.Fatalf("expected replayed inputs to move state past the acked position, got x=%v", s.X)
	}
}

func TestReconcileFromFrameMissingHandle(t *testing.T) {
	p := NewPredictor(DefaultMovementConfig(), State{})
	p.ApplyLocal(150, 0, 0.05)
	before := p.State()

	frame := snapshot.Frame{Records: []snapshot.Record{{Handle: 1, LastProcessedSeq: 1}}}
	if p.ReconcileFromFrame(frame, 99) {
		t.Fatalf("expected no match for an absent handle")
	}
	if p.State() != before {
		t.Fatalf("expected state to be untouched when no record matches")
	}
}

func TestSeqAfterHandlesWraparound(t *testing.T) {
	if !seqAfter(1, 0xFFFFFFFE) {
		t.Fatalf("expected seq 1 to be considered after 0xFFFFFFFE (wraparound)")
	}
	if seqAfter(5, 10) {
		t.Fatalf("expected seq 5 not to be after seq 10")
	}
}
