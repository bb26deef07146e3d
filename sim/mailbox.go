package sim

import (
	"sync/atomic"

	"github.com/fightclub/arenacore/entity"
)

// PendingInput is a single queued client input, keyed by entity slot.
// Matches the INPUT message contract in spec §4.3/§6. Handle is the
// entity handle the sender believed it was targeting at publish time;
// the tick re-validates it against the pool's current generation at
// consumption time so a slot recycled between publish and tick never
// lets a stale message mutate the new occupant (the ABA guard, §4.1).
type PendingInput struct {
	Handle  entity.Handle
	Seq     uint32
	TargetX float32
	TargetY float32
	Space   bool
	Eject   bool
}

// Mailboxes holds one single-slot mailbox per entity slot. Any number of
// concurrent producers (per-connection readers) may publish into a
// slot's mailbox; the tick's input-consumption phase is the sole
// consumer and atomically claims-and-clears it, so the contract is
// "latest input wins" per spec §4.5 — never a queue of inputs.
type Mailboxes struct {
	slots []atomic.Pointer[PendingInput]
}

// NewMailboxes allocates one mailbox slot per pool capacity entry.
func NewMailboxes(capacity int) *Mailboxes {
	return &Mailboxes{slots: make([]atomic.Pointer[PendingInput], capacity)}
}

// Publish overwrites the mailbox for idx with a new pending input.
// Safe to call concurrently with Claim and with other Publish calls.
func (m *Mailboxes) Publish(idx int, in PendingInput) {
	cp := in
	m.slots[idx].Store(&cp)
}

// Claim atomically takes and clears the mailbox for idx. Returns
// (input, true) if one was pending, or (zero, false) otherwise. Called
// only from the tick's input-consumption phase.
func (m *Mailboxes) Claim(idx int) (PendingInput, bool) {
	p := m.slots[idx].Swap(nil)
	if p == nil {
		return PendingInput{}, false
	}
	return *p, true
}

// Clear drops any pending input for idx without consuming it — used
// when a slot is released so a stale handle's late input can't resurface
// against whatever entity recycles the slot next.
func (m *Mailboxes) Clear(idx int) {
	m.slots[idx].Store(nil)
}
