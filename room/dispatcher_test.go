package room

import (
	"testing"

	"github.com/fightclub/arenacore/input"
	"github.com/fightclub/arenacore/sim"
)

type fakeConn struct {
	writes  [][]byte
	closed  bool
	failing bool
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	if f.failing {
		return errWrite
	}
	cp := append([]byte(nil), data...)
	f.writes = append(f.writes, cp)
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

type writeErr struct{}

func (writeErr) Error() string { return "write failed" }

var errWrite = writeErr{}

func newTestDispatcher(maxEntities int) *Dispatcher {
	engine := sim.NewEngine(sim.DefaultConfig(), maxEntities)
	validator := input.NewValidator(input.DefaultConfig(sim.DefaultConfig().MapRadius))
	return New(engine, validator, DefaultMaxEntitiesPerClient)
}

func TestJoinAndLeave(t *testing.T) {
	d := newTestDispatcher(8)
	conn := &fakeConn{}

	s, ok := d.Join("sess-1", "1.2.3.4", conn)
	if !ok {
		t.Fatalf("expected join to succeed")
	}
	if d.SessionCount() != 1 {
		t.Fatalf("expected 1 session, got %d", d.SessionCount())
	}

	d.Leave(s.ID)
	if d.SessionCount() != 0 {
		t.Fatalf("expected 0 sessions after leave, got %d", d.SessionCount())
	}
	if !conn.closed {
		t.Fatalf("expected connection to be closed on leave")
	}
}

func TestPerIPQuotaEnforced(t *testing.T) {
	d := newTestDispatcher(64)
	d.quotaPerIP = 2

	_, ok1 := d.Join("a", "9.9.9.9", &fakeConn{})
	_, ok2 := d.Join("b", "9.9.9.9", &fakeConn{})
	_, ok3 := d.Join("c", "9.9.9.9", &fakeConn{})

	if !ok1 || !ok2 {
		t.Fatalf("expected first two joins from the same IP to succeed")
	}
	if ok3 {
		t.Fatalf("expected third join from the same IP to be rejected by quota")
	}
}

func TestMaxEntitiesPerClientEnforced(t *testing.T) {
	d := newTestDispatcher(64)
	d.maxEntitiesPerClient = 2

	_, ok1 := d.Join("a", "5.5.5.5", &fakeConn{})
	_, ok2 := d.Join("b", "5.5.5.5", &fakeConn{})
	_, ok3 := d.Join("c", "5.5.5.5", &fakeConn{})

	if !ok1 || !ok2 {
		t.Fatalf("expected first two joins from the same client to succeed")
	}
	if ok3 {
		t.Fatalf("expected a third entity for the same client to be rejected by the entity quota")
	}

	d.Leave("a")
	if _, ok := d.Join("d", "5.5.5.5", &fakeConn{}); !ok {
		t.Fatalf("expected quota to free up after a leave")
	}
}

func TestHandleInputPublishesToMailbox(t *testing.T) {
	d := newTestDispatcher(8)
	s, ok := d.Join("sess-1", "1.2.3.4", &fakeConn{})
	if !ok {
		t.Fatalf("join failed")
	}

	d.HandleInput(s.ID, input.Message{Seq: 1, TargetX: 10, TargetY: 0, SerialBytes: 32})

	idx, ok := d.engine.Resolve(s.Handle)
	if !ok {
		t.Fatalf("resolve failed")
	}
	pend, ok := d.engine.Mailboxes().Claim(idx)
	if !ok {
		t.Fatalf("expected a pending input to have been published")
	}
	if pend.TargetX != 10 {
		t.Fatalf("expected target x 10, got %v", pend.TargetX)
	}
}

func TestHandleInputDropsUnknownSession(t *testing.T) {
	d := newTestDispatcher(8)
	// Should not panic when the session does not exist.
	d.HandleInput("ghost", input.Message{Seq: 1})
}
