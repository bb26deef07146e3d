package sim

import (
	"math"

	"github.com/fightclub/arenacore/component"
)

// movementPhase is phase 2: for each active, non-dead entity with an
// input row, accelerate linearly toward the requested target, bounded
// by maxSpeed*speedMultiplier.
func (e *Engine) movementPhase(active []int, dt float32) {
	for _, idx := range active {
		if !e.World.Flags.Has(idx, component.ACTIVE) || e.World.Flags.Has(idx, component.DEAD) {
			continue
		}

		targetX, targetY := e.World.Input.Target(idx)
		x, y := e.World.Transform.Position(idx)
		maxSpeed, speedMult := e.World.Config.MaxSpeed(idx)
		if maxSpeed <= 0 {
			maxSpeed = e.cfg.MaxSpeedBase
		}
		if speedMult <= 0 {
			speedMult = 1
		}

		dx := targetX - x
		dy := targetY - y
		dist := sqrt32(dx*dx + dy*dy)

		vx, vy := e.World.Physics.Velocity(idx)
		if dist < 0.5 {
			// Close enough: let friction (phase 3) bleed velocity off.
			continue
		}

		speedCap := maxSpeed * speedMult
		accel := speedCap * 4 // reach full speed in ~0.25s of sustained input
		nx, ny := dx/dist, dy/dist
		vx += nx * accel * dt
		vy += ny * accel * dt

		speed := sqrt32(vx*vx + vy*vy)
		if speed > speedCap {
			scale := speedCap / speed
			vx *= scale
			vy *= scale
		}
		e.World.Physics.SetVelocity(idx, vx, vy)
	}
}

func sqrt32(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}
