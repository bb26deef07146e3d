package sim

import "github.com/fightclub/arenacore/component"

// gameRulesPhase is phase 5: ring progression, death/respawn scheduling,
// food consumption, and entity-entity collision separation. All of it
// runs over the spatial grid rebuilt earlier this tick so no step here
// is O(n²).
func (e *Engine) gameRulesPhase(active []int, dt float32) {
	e.ringProgression(active)
	e.resolveCollisionsAndFood(active)
	e.deathAndRespawn(active, dt)
}

// ringProgression promotes a player to the next ring once their match%
// crosses that ring's entry threshold AND they are physically within
// the ring's inner band (spec §4.2 step 5). Ring index is derived from
// thresholds rather than stored, so it is always consistent with
// match%.
func (e *Engine) ringProgression(active []int) {
	if len(e.cfg.RingThresholds) == 0 {
		return
	}
	for _, idx := range active {
		if !e.World.Flags.Has(idx, component.ACTIVE|component.PLAYER) || e.World.Flags.Has(idx, component.DEAD) {
			continue
		}
		pct := e.World.Stats.MatchPercent(idx)
		x, y := e.World.Transform.Position(idx)
		dist := sqrt32(x*x + y*y)

		ring := 0
		for i, threshold := range e.cfg.RingThresholds {
			bandOuter := e.cfg.MapRadius * (1 - float32(i+1)/float32(len(e.cfg.RingThresholds)+1))
			if pct >= threshold && dist <= bandOuter {
				ring = i + 1
			}
		}
		if ring > e.lastRing(idx) {
			e.setLastRing(idx, ring)
			if e.hooks.OnRing != nil {
				e.hooks.OnRing(idx, ring)
			}
		}
	}
}

// resolveCollisionsAndFood walks each active player once, querying the
// spatial grid for nearby food and other entities, applying food
// consumption and simple separation impulses. Narrow-phase distance
// checks happen here; the grid only narrows the candidate set.
func (e *Engine) resolveCollisionsAndFood(active []int) {
	for _, idx := range active {
		if !e.World.Flags.Has(idx, component.ACTIVE) || e.World.Flags.Has(idx, component.DEAD) {
			continue
		}
		x, y := e.World.Transform.Position(idx)
		_, radius, _, _ := e.World.Physics.Material(idx)

		candidates := e.Grid.QueryRadius(x, y, radius+32, true)
		for _, otherID := range candidates {
			other := int(otherID)
			if other == idx {
				continue
			}
			if !e.World.Flags.Has(other, component.ACTIVE) {
				continue
			}

			ox, oy := e.World.Transform.Position(other)
			dx, dy := x-ox, y-oy
			dist := sqrt32(dx*dx + dy*dy)
			_, oRadius, _, _ := e.World.Physics.Material(other)
			minDist := radius + oRadius
			if dist >= minDist || dist <= 0 {
				continue
			}

			if e.World.Flags.Has(other, component.FOOD) {
				if e.World.Flags.Has(idx, component.PLAYER) || e.World.Flags.Has(idx, component.BOT) {
					e.consumeFood(idx, other)
				}
				continue
			}

			// Simple separation impulse between two solid entities.
			overlap := minDist - dist
			nx, ny := dx/dist, dy/dist
			x += nx * overlap * 0.5
			y += ny * overlap * 0.5
			e.World.Transform.SetPosition(idx, x, y)
		}
	}
}

// consumeFood releases a food slot and credits the consuming entity.
func (e *Engine) consumeFood(eaterIdx, foodIdx int) {
	score := e.World.Stats.Score(foodIdx)
	if score == 0 {
		score = 1
	}
	e.World.Stats.AddScore(eaterIdx, score)

	fx, fy := e.World.Transform.Position(foodIdx)
	e.Grid.RemoveStatic(uint32(foodIdx), fx, fy)
	e.releaseSlot(foodIdx)
}

// deathAndRespawn marks HP<=0 entities dead and, for anything already
// scheduled, flips them back to ALIVE in place (same index, same
// handle, fresh stats) once their respawn delay elapses.
func (e *Engine) deathAndRespawn(active []int, dt float32) {
	for _, idx := range active {
		if !e.World.Flags.Has(idx, component.ACTIVE) {
			continue
		}

		if e.World.Flags.Has(idx, component.DEAD) {
			if e.respawnTimer[idx] > 0 {
				e.respawnTimer[idx] -= dt
			}
			if e.respawnTimer[idx] <= 0 && e.World.Flags.Has(idx, component.PLAYER) {
				e.respawnPlayer(idx)
			}
			continue
		}

		cur, _ := e.World.Stats.HP(idx)
		if cur <= 0 {
			e.World.Flags.Add(idx, component.DEAD)
			e.respawnTimer[idx] = RespawnDelaySeconds
			if e.hooks.OnDeath != nil {
				e.hooks.OnDeath(idx)
			}
		}
	}
}

// RespawnDelaySeconds is the fixed delay between death and respawn for
// player entities.
const RespawnDelaySeconds = 2.0

// respawnPlayer resets every store row in place, preserving index and
// handle (generation unchanged) per spec §3's respawn lifecycle rule.
func (e *Engine) respawnPlayer(idx int) {
	e.World.ResetSlot(idx)
	e.World.Flags.Set(idx, component.ACTIVE|component.PLAYER)
	e.World.Stats.SetHP(idx, 100, 100)
	e.World.Physics.SetMaterial(idx, 1, 15, 0.2, e.cfg.FrictionPerSec)
	e.World.Transform.SetScale(idx, 1)
	e.setLastRing(idx, 0)

	if e.hooks.OnRespawn != nil {
		e.hooks.OnRespawn(idx)
	}
}

// releaseSlot zeroes a slot's rows, clears its mailbox and returns it to
// the pool. Centralizing this keeps Pool/World/Grid/Mailboxes in sync.
func (e *Engine) releaseSlot(idx int) {
	e.World.ResetSlot(idx)
	e.mailboxes.Clear(idx)
	e.Pool.Release(idx)
}

func (e *Engine) lastRing(idx int) int {
	if e.ringOf == nil {
		return 0
	}
	return e.ringOf[idx]
}

func (e *Engine) setLastRing(idx, ring int) {
	if e.ringOf == nil {
		e.ringOf = make([]int, e.World.Capacity())
	}
	e.ringOf[idx] = ring
}
