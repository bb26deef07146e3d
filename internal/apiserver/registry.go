package apiserver

import (
	"sync"

	"github.com/fightclub/arenacore/room"
)

// Registry is the simplest RoomProvider: a fixed map of room ID to
// dispatcher, populated at startup. A matchmaking service that creates
// rooms on demand would implement RoomProvider itself instead.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room.Dispatcher
}

// NewRegistry creates an empty room registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*room.Dispatcher)}
}

// Add registers a dispatcher under id.
func (reg *Registry) Add(id string, d *room.Dispatcher) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.rooms[id] = d
}

// Room implements RoomProvider.
func (reg *Registry) Room(id string) (*room.Dispatcher, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	d, ok := reg.rooms[id]
	return d, ok
}
