package sim

import "github.com/fightclub/arenacore/component"

// consumeInputs is phase 1. For each currently active slot with a
// pending mailbox entry, the handle is re-validated against the pool's
// live generation before the input is written into the store — a
// mismatch means the slot was released and recycled since the input was
// published, so the frame is silently dropped (normal on respawn/leave
// races, spec §4.3's "Entity handle guard").
func (e *Engine) consumeInputs(active []int) {
	for _, idx := range active {
		pend, ok := e.mailboxes.Claim(idx)
		if !ok {
			continue
		}
		if e.Pool.Handle(idx) != pend.Handle {
			continue // ABA mismatch: slot recycled since publish
		}

		var actions component.InputActions
		if pend.Space {
			actions |= component.ActionSpace
		}
		if pend.Eject {
			actions |= component.ActionEject
		}
		e.World.Input.Set(idx, pend.TargetX, pend.TargetY, actions)
		e.World.Input.SetLastSeq(idx, pend.Seq)
	}
}
