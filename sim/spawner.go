package sim

import (
	"math"

	"github.com/fightclub/arenacore/component"
)

// Spawner advances one global food timer and bursts new food entities
// when it fires, capping the global live food count. There are no
// per-ring timers: every burst scatters food at random radii across the
// inner 90% of the world disk. Grounded on the
// teacher's particle-cap idiom in engine.go (createParticle's hard cap
// check before append) generalized to pool-backed entities instead of
// plain slices.
type Spawner struct {
	timer float32
}

// NewSpawner creates a spawner with its timer at zero. cfg is not read;
// Advance takes the burst size and period from the engine's config on
// every call.
func NewSpawner(cfg Config) *Spawner {
	return &Spawner{}
}

// Advance ticks the spawn timer and, once it fires, spawns up to
// FoodBurstSize new food entities (fewer if MaxFood would be exceeded).
func (s *Spawner) Advance(e *Engine, dt float32) {
	s.timer += dt
	if s.timer < e.cfg.FoodSpawnPeriod {
		return
	}
	s.timer = 0

	liveFood := e.countFood()
	room := e.cfg.MaxFood - liveFood
	if room <= 0 {
		return
	}

	burst := e.cfg.FoodBurstSize
	if burst > room {
		burst = room
	}
	for i := 0; i < burst; i++ {
		e.spawnFood()
	}
}

func (e *Engine) countFood() int {
	n := 0
	for _, idx := range e.Pool.Active() {
		if e.World.Flags.Has(idx, component.FOOD) {
			n++
		}
	}
	return n
}

// spawnFood allocates a food slot at a random point in the world disk.
// If the pool is exhausted, spawning is silently skipped this tick —
// players always take priority over food for the shared entity budget.
func (e *Engine) spawnFood() {
	idx, _, ok := e.Pool.Allocate()
	if !ok {
		return
	}

	angle := e.rng.Float64() * 2 * math.Pi
	radius := e.rng.Float64() * float64(e.cfg.MapRadius) * 0.9
	x := float32(radius * math.Cos(angle))
	y := float32(radius * math.Sin(angle))

	e.World.Flags.Set(idx, component.ACTIVE|component.FOOD)
	e.World.Transform.SetPosition(idx, x, y)
	e.World.Physics.SetMaterial(idx, 1, 6, 0, 1)
	e.World.Stats.SetHP(idx, 1, 1)
	e.World.Stats.AddScore(idx, 1)
	e.Grid.InsertStatic(uint32(idx), x, y)
}
