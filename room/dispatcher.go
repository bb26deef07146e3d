// Package room implements the per-room WebSocket dispatcher: session
// registration, input intake wiring, periodic broadcast, per-client
// entity quotas and per-IP connection limiting. It is grounded on the
// teacher's internal/api/websocket.go WebSocketHub — register/unregister/
// broadcast channels feeding a single select loop — generalized from a
// fire-and-forget JSON event bus to a session registry that maps
// transport connections onto simulation entity handles.
package room

import (
	"log"
	"sync"
	"time"

	"github.com/fightclub/arenacore/entity"
	"github.com/fightclub/arenacore/input"
	"github.com/fightclub/arenacore/sim"
	"github.com/fightclub/arenacore/snapshot"
)

// MaxConnectionsPerIP caps how many live sessions one address may hold,
// mirroring the teacher's MaxWSConnectionsPerIP.
const MaxConnectionsPerIP = 10

// DefaultMaxEntitiesPerClient is the anti-DoS cap on how many
// simulation entities one client (tracked by IP, the only stable client
// identity available without auth) may hold at once, including any bots
// it spawns (spec §4.4, §6: "MAX_ENTITIES_PER_CLIENT, default 5").
const DefaultMaxEntitiesPerClient = 5

// Conn is the minimal transport a Session needs; *websocket.Conn from
// gorilla/websocket satisfies it, and tests can fake it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Session binds one live connection to one simulation entity.
type Session struct {
	ID     string
	IP     string
	Conn   Conn
	Handle entity.Handle
	joined time.Time
}

// Dispatcher owns one room: its simulation engine, validator, session
// registry, and the broadcast ticker that packs and fans out snapshots.
type Dispatcher struct {
	mu            sync.RWMutex
	sessions      map[string]*Session
	perIP         map[string]int
	entitiesPerIP map[string]int

	engine    *sim.Engine
	validator *input.Validator

	quotaPerIP           int
	maxEntitiesPerClient int
	stopChan             chan struct{}
	stopOnce             sync.Once
}

// New creates a dispatcher wired to the given engine and input
// validator, enforcing maxEntitiesPerClient entities per IP (pass
// DefaultMaxEntitiesPerClient for the spec default). The engine is
// expected to already be running its own tick loop; the dispatcher only
// reads its published snapshots for broadcast and feeds it mailboxes.
func New(engine *sim.Engine, validator *input.Validator, maxEntitiesPerClient int) *Dispatcher {
	return &Dispatcher{
		sessions:             make(map[string]*Session),
		perIP:                make(map[string]int),
		entitiesPerIP:        make(map[string]int),
		engine:               engine,
		validator:            validator,
		quotaPerIP:           MaxConnectionsPerIP,
		maxEntitiesPerClient: maxEntitiesPerClient,
		stopChan:             make(chan struct{}),
	}
}

// Join admits a new session: enforces the per-IP connection quota and
// the per-client entity quota, allocates a simulation entity, and
// registers the session. Returns false if the room is at either quota
// or the simulation's entity pool is full.
func (d *Dispatcher) Join(sessionID, ip string, conn Conn) (*Session, bool) {
	d.mu.Lock()
	if d.perIP[ip] >= d.quotaPerIP {
		d.mu.Unlock()
		log.Printf("[room] rejecting session %s: per-IP connection quota reached for %s", sessionID, ip)
		return nil, false
	}
	if d.entitiesPerIP[ip] >= d.maxEntitiesPerClient {
		d.mu.Unlock()
		log.Printf("[room] rejecting session %s: MAX_ENTITIES_PER_CLIENT reached for %s", sessionID, ip)
		return nil, false
	}
	d.mu.Unlock()

	handle, ok := d.engine.Join(sim.DefaultSpawnOptions())
	if !ok {
		return nil, false
	}

	s := &Session{ID: sessionID, IP: ip, Conn: conn, Handle: handle, joined: time.Now()}

	d.mu.Lock()
	d.sessions[sessionID] = s
	d.perIP[ip]++
	d.entitiesPerIP[ip]++
	d.mu.Unlock()

	log.Printf("[room] session %s joined from %s (%d total)", sessionID, ip, d.SessionCount())
	return s, true
}

// Leave releases a session's entity and forgets its rate-limit state.
func (d *Dispatcher) Leave(sessionID string) {
	d.mu.Lock()
	s, ok := d.sessions[sessionID]
	if !ok {
		d.mu.Unlock()
		return
	}
	delete(d.sessions, sessionID)
	d.perIP[s.IP]--
	if d.perIP[s.IP] <= 0 {
		delete(d.perIP, s.IP)
	}
	d.entitiesPerIP[s.IP]--
	if d.entitiesPerIP[s.IP] <= 0 {
		delete(d.entitiesPerIP, s.IP)
	}
	d.mu.Unlock()

	d.engine.Leave(s.Handle)
	d.validator.Forget(sessionID)
	_ = s.Conn.Close()
	log.Printf("[room] session %s left (%d remaining)", sessionID, d.SessionCount())
}

// HandleInput validates a raw client message and, if it passes, publishes
// it into the session's simulation mailbox. Invalid messages are dropped
// silently; the session is never disconnected for a bad message alone.
func (d *Dispatcher) HandleInput(sessionID string, msg input.Message) {
	d.mu.RLock()
	s, ok := d.sessions[sessionID]
	d.mu.RUnlock()
	if !ok {
		return
	}

	result, reason := d.validator.Validate(sessionID, msg)
	if reason != input.ReasonNone {
		return
	}

	idx, ok := d.engine.Resolve(s.Handle)
	if !ok {
		return
	}
	d.engine.Mailboxes().Publish(idx, sim.PendingInput{
		Handle:  s.Handle,
		Seq:     result.Seq,
		TargetX: result.TargetX,
		TargetY: result.TargetY,
		Space:   result.Space,
		Eject:   result.Eject,
	})
}

// SessionCount returns the number of currently registered sessions.
func (d *Dispatcher) SessionCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}

// StartBroadcastLoop reads the most recently published snapshot.Frame
// from the engine's triple buffer at the given rate and fans it out to
// every connected session, matching the teacher's StartBroadcastLoop
// 10Hz ticker shape generalized to a configurable rate and a binary
// payload instead of JSON. It never touches engine.Pool or engine.World
// directly — those are the tick goroutine's single-writer state — only
// the lock-free snapshot pool the tick publishes into as its own final
// phase (spec §4.2, §5).
func (d *Dispatcher) StartBroadcastLoop(rate time.Duration) {
	ticker := time.NewTicker(rate)
	go func() {
		defer ticker.Stop()
		var buf []byte
		for {
			select {
			case <-d.stopChan:
				return
			case <-ticker.C:
				if d.SessionCount() == 0 {
					continue
				}
				frame, ok := d.engine.SnapshotPool().AcquireRead()
				if !ok {
					continue
				}
				buf = snapshot.Encode(buf[:0], frame)
				d.broadcast(buf)
			}
		}
	}()
}

// Stop halts the broadcast loop. Safe to call more than once.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.stopChan) })
}

func (d *Dispatcher) broadcast(payload []byte) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for id, s := range d.sessions {
		if err := s.Conn.WriteMessage(2, payload); err != nil { // binary message type
			log.Printf("[room] write failed for session %s: %v", id, err)
		}
	}
}
