package snapshot

import "github.com/fightclub/arenacore/component"

// Build projects the live component world into a Frame, visiting only
// currently active slots. It never mutates World; the simulation tick
// remains the sole writer.
func Build(world *component.World, active []int, sequence uint64, tick uint32, withCRC bool) Frame {
	records := make([]Record, 0, len(active))
	for _, idx := range active {
		if !world.Flags.Has(idx, component.ACTIVE) {
			continue
		}
		x, y, rot, scale := world.Transform.Get(idx)
		vx, vy := world.Physics.Velocity(idx)
		cur, max := world.Stats.HP(idx)
		hpPct := float32(0)
		if max > 0 {
			hpPct = cur / max
		}
		records = append(records, Record{
			Handle:           uint32(idx),
			X:                x,
			Y:                y,
			VX:               vx,
			VY:               vy,
			Rotation:         rot,
			Scale:            scale,
			Flags:            uint32(world.Flags.Get(idx)),
			HPPct:            hpPct,
			Score:            world.Stats.Score(idx),
			LastProcessedSeq: world.Input.LastSeq(idx),
		})
	}
	return Frame{Sequence: sequence, Tick: tick, Records: records, WithCRC: withCRC}
}
