package sim

import (
	"log"
	"math"

	"github.com/fightclub/arenacore/component"
)

// physicsPhase is phase 3: integrate position, apply friction, clamp to
// the world disk, and enforce the speed tolerance invariant (spec §3,
// "|velocity| ≤ MAX_SPEED_BASE × SPEED_TOLERANCE after clamping").
func (e *Engine) physicsPhase(active []int, dt float32) {
	maxAllowed := e.cfg.MaxSpeedBase * e.cfg.SpeedTolerance
	frictionFactor := float32(math.Pow(float64(e.cfg.FrictionPerSec), float64(dt)))

	for _, idx := range active {
		if !e.World.Flags.Has(idx, component.ACTIVE) || e.World.Flags.Has(idx, component.DEAD) {
			continue
		}

		x, y := e.World.Transform.Position(idx)
		vx, vy := e.World.Physics.Velocity(idx)

		x += vx * dt
		y += vy * dt
		vx *= frictionFactor
		vy *= frictionFactor

		// Clamp to the world disk of radius MAP_RADIUS.
		dist := sqrt32(x*x + y*y)
		if dist > e.cfg.MapRadius {
			scale := e.cfg.MapRadius / dist
			x *= scale
			y *= scale
		}

		// Enforce the speed tolerance invariant; log once per
		// violation rather than every tick to avoid log-flood DoS.
		speed := sqrt32(vx*vx + vy*vy)
		if speed > maxAllowed {
			scale := maxAllowed / speed
			vx *= scale
			vy *= scale
			log.Printf("[sim] slot %d exceeded speed tolerance (%.1f > %.1f), clamped", idx, speed, maxAllowed)
		}

		e.World.Transform.SetPosition(idx, x, y)
		e.World.Physics.SetVelocity(idx, vx, vy)
	}
}
