package vending

import "sync/atomic"

// Press is one write to a Mailbox: the event plus a generation that tells two
// presses of the same button apart.
type Press uint64

// Event returns the pressed event.
func (p Press) Event() Event {
	return Event(int32(uint32(p)))
}

func (p Press) generation() uint64 {
	return uint64(p) >> 32
}

func makePress(gen uint64, ev Event) Press {
	return Press(gen<<32 | uint64(uint32(ev)))
}

// Mailbox is a single-slot, last-write-wins holder for the pending event.
//
// Thread-safety: Put may be called from any goroutine while the engine loads
// and consumes. All operations are atomic.
type Mailbox struct {
	slot atomic.Uint64
}

// Put overwrites the pending event. An event that was pending and not yet
// ticked is dropped. Every Put starts a new generation, even for the same
// event.
func (m *Mailbox) Put(ev Event) {
	m.store(ev)
}

// Peek returns the pending event without clearing it.
func (m *Mailbox) Peek() Event {
	return m.Load().Event()
}

// Load returns the pending press without clearing it.
func (m *Mailbox) Load() Press {
	return Press(m.slot.Load())
}

// Consume clears the slot only if it still holds p. Returns false when a newer
// press, of any event, replaced p after it was loaded.
func (m *Mailbox) Consume(p Press) bool {
	return m.slot.CompareAndSwap(uint64(p), uint64(makePress(p.generation()+1, None)))
}

// Clear drops any pending event.
func (m *Mailbox) Clear() {
	m.store(None)
}

func (m *Mailbox) store(ev Event) {
	for {
		old := Press(m.slot.Load())
		if m.slot.CompareAndSwap(uint64(old), uint64(makePress(old.generation()+1, ev))) {
			return
		}
	}
}
