// Package client implements the client-side prediction/reconciliation
// loop and the render-time snapshot interpolation buffer. It runs the
// same movement and physics math as sim's authoritative tick (duplicated
// here deliberately: a client has no access to the server's component
// stores, only to snapshots and its own locally-applied inputs) so that
// replaying unacknowledged inputs against a fresh server snapshot
// reproduces what the server will eventually compute. Grounded on the
// teacher's event_log.go ring-buffer idiom (fixed capacity, atomic
// head/tail) generalized from a log of past events to a replay buffer of
// not-yet-acknowledged inputs.
package client

import (
	"math"

	"github.com/fightclub/arenacore/snapshot"
)

// PendingInputCapacity bounds how many unacknowledged inputs the
// predictor retains; at 20 ticks/sec this covers several seconds of
// round-trip latency before older entries are simply overwritten.
const PendingInputCapacity = 256

// PredictedInput is one local input applied optimistically before the
// server has acknowledged it.
type PredictedInput struct {
	Seq     uint32
	TargetX float32
	TargetY float32
	DT      float32
}

// State is the client's local copy of its own entity's transform and
// velocity, mirroring the lanes sim's component stores track for a slot.
type State struct {
	X, Y   float32
	VX, VY float32
}

// MovementConfig mirrors the subset of sim.Config the client needs to
// replay movement/physics identically to the server.
type MovementConfig struct {
	MaxSpeedBase   float32
	SpeedTolerance float32
	FrictionPerSec float32
	MapRadius      float32
}

// DefaultMovementConfig matches sim.DefaultConfig's movement-relevant
// fields.
func DefaultMovementConfig() MovementConfig {
	return MovementConfig{
		MaxSpeedBase:   150,
		SpeedTolerance: 1.1,
		FrictionPerSec: 0.9,
		MapRadius:      2000,
	}
}

// Predictor tracks local state, a ring buffer of unacknowledged inputs,
// and reconciles against authoritative snapshots as they arrive.
type Predictor struct {
	cfg   MovementConfig
	state State

	ring     [PendingInputCapacity]PredictedInput
	head     int
	count    int
	nextSeq  uint32
	snapDist float32 // reconciliation error threshold; Reconcile does not read it
}

// NewPredictor creates a predictor seeded at the given initial position.
func NewPredictor(cfg MovementConfig, initial State) *Predictor {
	return &Predictor{cfg: cfg, state: initial, snapDist: 64, nextSeq: 1}
}

// State returns the predictor's current best-guess local state.
func (p *Predictor) State() State { return p.state }

// ApplyLocal advances local state by one input immediately (optimistic
// execution) and records the input in the ring buffer so it can be
// replayed after the next reconciliation.
func (p *Predictor) ApplyLocal(targetX, targetY, dt float32) PredictedInput {
	in := PredictedInput{Seq: p.nextSeq, TargetX: targetX, TargetY: targetY, DT: dt}
	p.nextSeq++

	p.state = step(p.state, p.cfg, targetX, targetY, dt)

	p.ring[p.head] = in
	p.head = (p.head + 1) % PendingInputCapacity
	if p.count < PendingInputCapacity {
		p.count++
	}
	return in
}

// Reconcile folds in an authoritative position/velocity for sequence
// ackSeq (the last input the server had consumed when it produced this
// snapshot): inputs at or before ackSeq are dropped from the pending
// ring, the predictor's state is reset to the server's value, and every
// remaining unacknowledged input is replayed on top of it. The replayed
// result always replaces the predictor's state outright: the distance
// between the old and the new state is not measured, and no blending
// toward the new state happens here.
func (p *Predictor) Reconcile(ackSeq uint32, serverState State) {
	pending := p.pendingAfter(ackSeq)

	state := serverState
	for _, in := range pending {
		state = step(state, p.cfg, in.TargetX, in.TargetY, in.DT)
	}
	p.state = state

	p.dropThrough(ackSeq)
}

// ReconcileFromFrame finds localHandle's record in a freshly decoded
// snapshot.Frame and folds it into Reconcile, using the record's
// LastProcessedSeq as ackSeq and its X/Y/VX/VY as the authoritative
// state (spec §4.6, §4.7). Reports false without touching predictor
// state if the frame carries no record for localHandle, which happens
// if the entity has not yet been promoted into this broadcast frame.
func (p *Predictor) ReconcileFromFrame(f snapshot.Frame, localHandle uint32) bool {
	for _, r := range f.Records {
		if r.Handle != localHandle {
			continue
		}
		p.Reconcile(uint32(r.LastProcessedSeq), State{X: r.X, Y: r.Y, VX: r.VX, VY: r.VY})
		return true
	}
	return false
}

// pendingAfter returns every buffered input with Seq > ackSeq, oldest
// first.
func (p *Predictor) pendingAfter(ackSeq uint32) []PredictedInput {
	out := make([]PredictedInput, 0, p.count)
	start := (p.head - p.count + PendingInputCapacity) % PendingInputCapacity
	for i := 0; i < p.count; i++ {
		in := p.ring[(start+i)%PendingInputCapacity]
		if seqAfter(in.Seq, ackSeq) {
			out = append(out, in)
		}
	}
	return out
}

func (p *Predictor) dropThrough(ackSeq uint32) {
	start := (p.head - p.count + PendingInputCapacity) % PendingInputCapacity
	kept := 0
	for i := 0; i < p.count; i++ {
		in := p.ring[(start+i)%PendingInputCapacity]
		if seqAfter(in.Seq, ackSeq) {
			p.ring[(start+kept)%PendingInputCapacity] = in
			kept++
		}
	}
	p.count = kept
	p.head = (start + kept) % PendingInputCapacity
}

// seqAfter compares sequence numbers allowing for 32-bit wraparound.
func seqAfter(a, b uint32) bool {
	return int32(a-b) > 0
}

// step applies one tick of movement+physics, matching sim's
// movementPhase/physicsPhase formulas exactly (same accel-toward-target,
// same friction curve, same map-radius clamp, same speed-tolerance cap).
func step(s State, cfg MovementConfig, targetX, targetY, dt float32) State {
	dx := targetX - s.X
	dy := targetY - s.Y
	dist := sqrt32(dx*dx + dy*dy)

	if dist >= 0.5 {
		speedCap := cfg.MaxSpeedBase
		accel := speedCap * 4
		nx, ny := dx/dist, dy/dist
		s.VX += nx * accel * dt
		s.VY += ny * accel * dt

		speed := sqrt32(s.VX*s.VX + s.VY*s.VY)
		if speed > speedCap {
			scale := speedCap / speed
			s.VX *= scale
			s.VY *= scale
		}
	}

	s.X += s.VX * dt
	s.Y += s.VY * dt

	frictionFactor := float32(math.Pow(float64(cfg.FrictionPerSec), float64(dt)))
	s.VX *= frictionFactor
	s.VY *= frictionFactor

	dist = sqrt32(s.X*s.X + s.Y*s.Y)
	if dist > cfg.MapRadius {
		scale := cfg.MapRadius / dist
		s.X *= scale
		s.Y *= scale
	}

	maxAllowed := cfg.MaxSpeedBase * cfg.SpeedTolerance
	speed := sqrt32(s.VX*s.VX + s.VY*s.VY)
	if speed > maxAllowed {
		scale := maxAllowed / speed
		s.VX *= scale
		s.VY *= scale
	}

	return s
}

func sqrt32(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}
