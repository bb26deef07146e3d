package component

// World bundles every component store at a shared capacity. It is the
// single source of truth for entity state; snapshots and render views
// are projections over it, never the other way around.
type World struct {
	Flags     *FlagStore
	Transform *TransformStore
	Physics   *PhysicsStore
	Stats     *StatsStore
	Input     *InputStore
	Config    *ConfigStore
	Skill     *SkillStore
	Pigment   *PigmentStore

	capacity int
}

// NewWorld allocates every component store for the given capacity.
func NewWorld(capacity int) *World {
	return &World{
		Flags:     NewFlagStore(capacity),
		Transform: NewTransformStore(capacity),
		Physics:   NewPhysicsStore(capacity),
		Stats:     NewStatsStore(capacity),
		Input:     NewInputStore(capacity),
		Config:    NewConfigStore(capacity),
		Skill:     NewSkillStore(capacity),
		Pigment:   NewPigmentStore(capacity),
		capacity:  capacity,
	}
}

// Capacity returns the shared MAX_ENTITIES capacity of every store.
func (w *World) Capacity() int { return w.capacity }

// ResetSlot zeroes every store's row for idx. Called by the simulation
// engine when it releases a slot (entity.Pool itself never touches the
// stores), and by respawn before the slot's fresh state is written.
func (w *World) ResetSlot(idx int) {
	w.Flags.Reset(idx)
	w.Transform.Reset(idx)
	w.Physics.Reset(idx)
	w.Stats.Reset(idx)
	w.Input.Reset(idx)
	w.Config.Reset(idx)
	w.Skill.Reset(idx)
	w.Pigment.Reset(idx)
}
