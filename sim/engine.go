// Package sim implements the fixed-timestep authoritative tick: input
// consumption, movement, physics integration, skills, ring/death/food
// game rules, spawning and broadcast. It is grounded on the teacher's
// internal/game/engine.go Engine.tick(): a single mutex-guarded method
// invoked by a time.Ticker goroutine, reusing slices across ticks and
// running every phase to completion with no yield points.
package sim

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/fightclub/arenacore/component"
	"github.com/fightclub/arenacore/entity"
	"github.com/fightclub/arenacore/snapshot"
	"github.com/fightclub/arenacore/spatial"
)

// Config holds the simulation-tuning constants named in spec §6. It is
// distinct from internal/config.Config (the env-loaded operator
// surface); callers typically derive one from the other.
type Config struct {
	TickRateHz      int
	MapRadius       float32
	MaxSpeedBase    float32
	SpeedTolerance  float32
	FrictionPerSec  float32
	CellSize        float32
	MaxFood         int
	FoodBurstSize   int
	RingThresholds  []float32 // match% thresholds, outer to core
	FoodSpawnPeriod float32   // seconds between spawner bursts
}

// DefaultConfig returns the literal values used in the spec's end-to-end
// scenarios (§8): TICK_RATE=20, MAP_RADIUS=2000, MAX_SPEED=150.
func DefaultConfig() Config {
	return Config{
		TickRateHz:      20,
		MapRadius:       2000,
		MaxSpeedBase:    150,
		SpeedTolerance:  1.1,
		FrictionPerSec:  0.9,
		CellSize:        200,
		MaxFood:         400,
		FoodBurstSize:   8,
		RingThresholds:  []float32{0.25, 0.5, 0.75},
		FoodSpawnPeriod: 3,
	}
}

// DamageEvent is the payload of Hooks.OnDamage, for callers that want to
// react to hits (metrics, event logs, broadcasts of kill-feed text).
// None of the engine's own phases deal damage, so the engine never
// invokes OnDamage itself.
type DamageEvent struct {
	AttackerIdx, VictimIdx int
	Damage                 float32
	Lethal                 bool
}

// Hooks lets callers observe phase 5 (game rules) without the engine
// importing their packages. All fields are optional; a nil hook is
// simply skipped. This mirrors the spec's "opaque hooks" treatment of
// skill/tattoo-synergy effects (§9) generalized to every game-rule
// side effect the core itself has no opinion about.
type Hooks struct {
	OnDamage  func(DamageEvent)
	OnDeath   func(idx int)
	OnRespawn func(idx int)
	OnRing    func(idx int, ring int)
}

// Engine owns one room's component world, entity pool, spatial grid and
// input mailboxes, and drives the fixed-dt tick loop over them. It is
// single-writer: Tick, Join and Leave are the only methods that mutate
// component stores, and each does so under e.mu.
type Engine struct {
	mu sync.Mutex

	World *component.World
	Pool  *entity.Pool
	Grid  *spatial.Grid

	cfg   Config
	hooks Hooks

	mailboxes *Mailboxes

	rng     *rand.Rand
	rngSeed int64

	spawner *Spawner

	tickCount int64
	running   bool
	ticker    *time.Ticker
	stopChan  chan struct{}

	skills       map[float32]SkillEffect
	respawnTimer []float32
	ringOf       []int

	snapshots *snapshot.Pool
}

// NewEngine constructs an Engine with a freshly-seeded deterministic RNG,
// matching the teacher's NewEngine(tickRate) shape.
func NewEngine(cfg Config, maxEntities int) *Engine {
	seed := time.Now().UnixNano()
	return &Engine{
		World:        component.NewWorld(maxEntities),
		Pool:         entity.NewPool(maxEntities),
		Grid:         spatial.NewGrid(cfg.CellSize),
		cfg:          cfg,
		mailboxes:    NewMailboxes(maxEntities),
		rng:          rand.New(rand.NewSource(seed)),
		rngSeed:      seed,
		spawner:      NewSpawner(cfg),
		stopChan:     make(chan struct{}),
		respawnTimer: make([]float32, maxEntities),
		snapshots:    snapshot.NewPool(),
	}
}

// SetHooks installs the game-rule observer callbacks.
func (e *Engine) SetHooks(h Hooks) { e.hooks = h }

// Mailboxes exposes the per-slot single-slot input mailboxes so a room
// dispatcher's connection readers can publish inputs concurrently with
// the tick goroutine (§4.5).
func (e *Engine) Mailboxes() *Mailboxes { return e.mailboxes }

// SnapshotPool exposes the triple-buffered frame publisher that Tick's
// broadcast phase writes into. A room dispatcher's broadcast loop reads
// from it instead of touching Pool/World directly, so it never races
// with the tick goroutine's single-writer mutations (§4.2, §5).
func (e *Engine) SnapshotPool() *snapshot.Pool { return e.snapshots }

// EntityCount returns the number of currently active entities, safe to
// call from any goroutine (unlike reading Pool.Len() directly, which
// races with the tick goroutine's single-writer mutations of Pool).
func (e *Engine) EntityCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Pool.Len()
}

// TickCount returns the number of ticks executed so far.
func (e *Engine) TickCount() int64 { return e.tickCount }

// RNGSeed returns the seed that will be used for this tick's PRNG draws,
// recorded for replay tooling (spec §4.2 determinism note).
func (e *Engine) RNGSeed() int64 { return e.rngSeed }

// Start begins the fixed-dt tick loop on its own goroutine.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.ticker = time.NewTicker(time.Second / time.Duration(e.cfg.TickRateHz))

	go func() {
		for {
			select {
			case <-e.ticker.C:
				e.runTickSafely()
			case <-e.stopChan:
				return
			}
		}
	}()
}

// Stop halts the tick loop. Safe to call more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.running = false
	e.ticker.Stop()
	close(e.stopChan)
}

// runTickSafely recovers from a panic inside Tick and stops the tick
// loop, so that a single corrupted tick does not take the process down;
// IsRunning reports false afterwards.
func (e *Engine) runTickSafely() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[sim] tick panic, stopping room: %v", r)
			e.mu.Lock()
			if e.running {
				e.running = false
				e.ticker.Stop()
				close(e.stopChan)
			}
			e.mu.Unlock()
		}
	}()
	start := time.Now()
	e.Tick()
	elapsed := time.Since(start)
	budget := time.Second / time.Duration(e.cfg.TickRateHz)
	if elapsed > budget*2 {
		log.Printf("[sim] slow tick: %v (budget %v)", elapsed, budget)
	}
}

// IsRunning reports whether the tick loop is currently active.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Tick runs the seven ordered phases once: consume inputs, movement,
// physics, skill, game rules, spawner, broadcast. Exported directly so
// tests and single-player clients can drive it without a ticker.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tickCount++
	dt := float32(1.0) / float32(e.cfg.TickRateHz)

	e.rngSeed = e.rng.Int63()
	e.rng.Seed(e.rngSeed)

	active := e.Pool.Active()

	// Phase 1: consume inputs.
	e.consumeInputs(active)

	// Rebuild the spatial grid from pre-movement positions; the
	// game-rules phase queries it.
	e.Grid.Clear()
	for _, idx := range active {
		if !e.World.Flags.Has(idx, component.ACTIVE) || e.World.Flags.Has(idx, component.DEAD) {
			continue
		}
		x, y := e.World.Transform.Position(idx)
		e.Grid.Insert(uint32(idx), x, y)
	}

	// Phase 2: movement.
	e.movementPhase(active, dt)

	// Phase 3: physics.
	e.physicsPhase(active, dt)

	// Phase 4: skill.
	e.skillPhase(active, dt)

	// Phase 5: game rules (ring, death/respawn, food consumption, collisions).
	e.gameRulesPhase(active, dt)

	// Phase 6: spawner.
	e.spawner.Advance(e, dt)

	// Phase 7: publish this tick's snapshot into the triple buffer under
	// e.mu, so the frame a broadcaster later reads is always the product
	// of one complete, consistent tick (spec §4.2's "no phase-half
	// state", §5's "broadcasts are produced in tick order"). The actual
	// fan-out to connections is the room dispatcher's job and never
	// blocks this goroutine on a slow client.
	active = e.Pool.Active()
	frame := snapshot.Build(e.World, active, 0, uint32(e.tickCount), true)
	slot := e.snapshots.AcquireWrite()
	e.snapshots.PublishWrite(slot, frame)
}
