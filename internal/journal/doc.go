// Package journal is the SQLite audit trail of vending runs.
//
// Every tick that processed an event is written once, together with its
// notifications and any ticket it issued. The journal is never read back into
// a running machine: it exists for inspection (tickets), and for replay, which
// feeds the recorded events through vending.Step again and checks that every
// recorded outcome is reproduced.
//
// Structured columns (machine states, notification payloads, the catalog) are
// stored as RFC 8785 canonical JSON so that identical runs produce identical
// rows.
package journal
