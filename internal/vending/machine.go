package vending

import "github.com/roach88/cinebox/internal/catalog"

// MachineState is the mutable record the engine owns.
//
// INVARIANTS:
//   - Credit >= 0
//   - 0 <= Cursor < catalog.Len()
//   - FirstBrowseRender is true only between entering Browse and the first
//     browse event handled there
type MachineState struct {
	State             State `json:"state"`
	Credit            int   `json:"credit"`
	Cursor            int   `json:"cursor"`
	FirstBrowseRender bool  `json:"first_browse_render"`
}

// InitialState returns the state a machine powers up in.
func InitialState() MachineState {
	return MachineState{State: Start}
}

// Outcome is what one Step did besides mutating the state.
type Outcome struct {
	// Consumed reports whether the event should be cleared from the mailbox.
	// False for ignored events and for hand-off transitions.
	Consumed bool

	Notifications []Notification
}

// Step applies ev to ms under the rules of ms.State.
//
// Events that have no meaning in the current state leave ms untouched, are not
// consumed and produce no notification.
func Step(cat *catalog.Catalog, ms *MachineState, ev Event) Outcome {
	if ev == None {
		return Outcome{}
	}

	switch ms.State {
	case Start:
		return stepStart(ms, ev)
	case InsertCoin:
		return stepInsertCoin(ms, ev)
	case Browse:
		return stepBrowse(cat, ms, ev)
	default:
		return Outcome{}
	}
}

func stepStart(ms *MachineState, ev Event) Outcome {
	switch {
	case ev.IsCoin():
		ms.State = InsertCoin
	case ev.IsBrowse():
		enterBrowse(ms)
	}
	return Outcome{}
}

func stepInsertCoin(ms *MachineState, ev Event) Outcome {
	switch {
	case ev.IsCoin():
		ms.Credit += ev.CoinValue()
		return consumed(creditUpdate(ms))
	case ev == Return:
		amount := ms.Credit
		ms.Credit = 0
		return consumed(returnConfirmed(ms, amount), creditUpdate(ms))
	case ev.IsBrowse():
		enterBrowse(ms)
	}
	return Outcome{}
}

func stepBrowse(cat *catalog.Catalog, ms *MachineState, ev Event) Outcome {
	switch ev {
	case BrowseUp, BrowseDown:
		if ms.FirstBrowseRender {
			ms.FirstBrowseRender = false
		} else {
			ms.Cursor = moveCursor(ms.Cursor, ev, cat.Len())
		}
		return consumed(browseDisplay(cat, ms))

	case Return:
		amount := ms.Credit
		ms.Credit = 0
		return consumed(returnConfirmed(ms, amount), browseDisplay(cat, ms))

	case Select:
		s := cat.At(ms.Cursor)
		if ms.Credit < s.Price {
			return consumed(ticketOutcome(KindTicketRefused, s, ms))
		}
		ms.Credit -= s.Price
		return consumed(ticketOutcome(KindTicketIssued, s, ms))

	case Coin1, Coin2, Coin5, Coin10:
		ms.State = InsertCoin
	}
	return Outcome{}
}

func enterBrowse(ms *MachineState) {
	ms.State = Browse
	ms.FirstBrowseRender = true
}

// moveCursor steps the cursor one place with circular wraparound over n.
func moveCursor(cursor int, ev Event, n int) int {
	if ev == BrowseUp {
		cursor++
		if cursor >= n {
			cursor = 0
		}
		return cursor
	}
	cursor--
	if cursor < 0 {
		cursor = n - 1
	}
	return cursor
}

func consumed(ns ...Notification) Outcome {
	return Outcome{Consumed: true, Notifications: ns}
}
