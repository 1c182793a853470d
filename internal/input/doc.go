// Package input turns button activations into machine events.
//
// A ButtonMap is the fixed wiring from input channel to event. It is checked
// for completeness when built: every event except None must be reachable from
// exactly one channel.
//
// LineSource reads button presses as text, one token per activation, so the
// machine can be driven from a terminal or a file. A token is either a channel
// number ("3") or an event name ("coin5").
package input
