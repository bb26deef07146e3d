package sim

import (
	"math"

	"github.com/fightclub/arenacore/component"
	"github.com/fightclub/arenacore/entity"
)

// SpawnOptions configures a freshly joined player entity. Unknown join
// options are simply not set, matching spec §6's "unknown options
// ignored".
type SpawnOptions struct {
	MaxHP    float32
	Radius   float32
	Mass     float32
	MaxSpeed float32
	Pigment  [3]float32
}

// DefaultSpawnOptions returns the literal defaults used by the spec's
// end-to-end scenarios (mass = π·15²).
func DefaultSpawnOptions() SpawnOptions {
	radius := float32(15)
	return SpawnOptions{
		MaxHP:    100,
		Radius:   radius,
		Mass:     float32(math.Pi) * radius * radius,
		MaxSpeed: 150,
	}
}

// Join allocates a new player entity, places it at a random point in the
// world disk, and returns its handle. Returns (NoHandle, false) if the
// pool is exhausted (spec §4.4's "pool exhausted" reject path).
func (e *Engine) Join(opts SpawnOptions) (entity.Handle, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx, handle, ok := e.Pool.Allocate()
	if !ok {
		return entity.NoHandle, false
	}

	angle := e.rng.Float64() * 2 * math.Pi
	radius := e.rng.Float64() * float64(e.cfg.MapRadius) * 0.5
	x := float32(radius * math.Cos(angle))
	y := float32(radius * math.Sin(angle))

	e.World.Flags.Set(idx, component.ACTIVE|component.PLAYER)
	e.World.Transform.SetPosition(idx, x, y)
	e.World.Transform.SetScale(idx, 1)
	e.World.Stats.SetHP(idx, opts.MaxHP, opts.MaxHP)
	e.World.Physics.SetMaterial(idx, opts.Mass, opts.Radius, 0.2, e.cfg.FrictionPerSec)
	e.World.Config.SetMaxSpeed(idx, opts.MaxSpeed, 1)
	e.World.Pigment.SetColor(idx, opts.Pigment[0], opts.Pigment[1], opts.Pigment[2])

	return handle, true
}

// Leave releases a player's entity slot immediately, bumping its
// generation so any in-flight handle for it becomes stale.
func (e *Engine) Leave(h entity.Handle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx, ok := e.Pool.Resolve(h)
	if !ok {
		return false
	}
	e.releaseSlot(idx)
	return true
}

// Resolve validates a handle against the live pool and returns its slot
// index. Exposed for the room dispatcher to attach incoming input to
// the right mailbox slot.
func (e *Engine) Resolve(h entity.Handle) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Pool.Resolve(h)
}

// Handle returns the current handle for a slot index.
func (e *Engine) Handle(idx int) entity.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Pool.Handle(idx)
}
