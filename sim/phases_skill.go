package sim

import "github.com/fightclub/arenacore/component"

// SkillEffect is the opaque per-kind hook invoked when a skill triggers.
// The core never interprets payload lanes itself (spec §9's "tattoo
// synergy" hooks are modeled as opaque fixed-capacity scalar records);
// callers register one hook per kind id they care about.
type SkillEffect func(e *Engine, idx int)

// RegisterSkill installs the trigger hook for a skill kind id.
func (e *Engine) RegisterSkill(kindID float32, effect SkillEffect) {
	if e.skills == nil {
		e.skills = make(map[float32]SkillEffect)
	}
	e.skills[kindID] = effect
}

// skillPhase is phase 4: for each active entity whose input requested a
// skill action (ActionSpace) and whose cooldown has elapsed, trigger the
// registered effect and reset the cooldown to its configured max
// (stored in the duration lane, matching spec's "set cooldown =
// maxCooldown"). Every active entity's cooldown decrements by dt
// regardless of whether it fired this tick.
func (e *Engine) skillPhase(active []int, dt float32) {
	for _, idx := range active {
		if !e.World.Flags.Has(idx, component.ACTIVE) || e.World.Flags.Has(idx, component.DEAD) {
			continue
		}

		actions := e.World.Input.Actions(idx)
		if actions&component.ActionSpace != 0 && e.World.Skill.Cooldown(idx) <= 0 {
			maxCooldown := e.World.Skill.MaxCooldown(idx)
			kind := e.World.Skill.KindID(idx)
			if hook, ok := e.skills[kind]; ok {
				hook(e, idx)
			}
			e.World.Skill.SetCooldown(idx, maxCooldown)
		}

		e.World.Skill.TickCooldown(idx, dt)
	}
}
