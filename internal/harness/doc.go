// Package harness runs vending scenarios end to end.
//
// A scenario drives a real vending.Engine, journaled to an in-memory SQLite
// database, through a list of steps, checks expectations along the way, and
// produces a text transcript that is compared against a golden file. After
// the last step the journal is replayed and must reproduce every tick.
//
// # Scenario Format
//
//	name: buy_ticket
//	description: "Ten units buy Movie A at 19H00"
//	catalog:                      # optional, defaults to the reference catalog
//	  - {name: "Movie A", showtime: "19H00", price: 9}
//	steps:
//	  - feed: coin10              # send, then tick until handled
//	  - send: up                  # make pending, no tick
//	  - press: 5                  # channel on the reference wiring, no tick
//	  - tick: 2                   # run N ticks
//	  - expect:
//	      state: browse
//	      credit: 10
//	      cursor: 0
//	      pending: none
//	      output:                 # exact notification lines since the last expect
//	        - "Name: Movie A, schedule: 19H00, price: 9, available credit: 10"
//	assertions:
//	  - type: trace_contains
//	    text: "10 returned"
//	  - type: trace_order
//	    texts: ["current credit = 10", "10 returned"]
//	  - type: trace_count
//	    kind: ticket_issued
//	    count: 1
//	  - type: final_state
//	    state: start
//	    credit: 0
//
// # Determinism
//
// Every run uses testutil.DeterministicClock for tick sequence numbers and
// testutil.SequentialTicketIDs for ticket IDs, so the same scenario always
// yields a byte-identical transcript.
package harness
