// Package vending implements the ticket machine's state machine engine.
//
// ARCHITECTURE:
//
// Pure transition function:
// Step(catalog, *MachineState, event) applies one event to the machine state
// and returns the notifications it produced and whether the event was
// consumed. Step has no side effects beyond the state it is given, which makes
// it usable both by the live engine and by journal verification.
//
// Single-slot mailbox:
// Input adapters call Engine.SendEvent from any goroutine. The mailbox holds at
// most one pending event; a newer event overwrites an older one that has not
// been ticked yet.
//
// Single-writer tick:
// Engine.Tick peeks the pending event, runs Step, and consumes the event with a
// compare-and-swap so that an event sent while the tick was running is not
// lost. Each tick that saw an event is stamped with a monotonic sequence
// number and handed to the Recorder.
//
// Deferred hand-off:
// The transitions Start -> InsertCoin, Start -> Browse, InsertCoin -> Browse and
// Browse -> InsertCoin leave the triggering event pending. It is processed under
// the destination state's rules on the next tick, so a coin inserted from
// Start is credited one tick after the state change.
package vending
