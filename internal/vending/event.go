package vending

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEvent is returned when an event name cannot be parsed.
var ErrUnknownEvent = errors.New("unknown event")

// Event is a discrete input to the machine.
type Event int32

const (
	None Event = iota
	Coin1
	Coin2
	Coin5
	Coin10
	BrowseUp
	BrowseDown
	Select
	Return
)

var eventNames = [...]string{
	None:       "none",
	Coin1:      "coin1",
	Coin2:      "coin2",
	Coin5:      "coin5",
	Coin10:     "coin10",
	BrowseUp:   "up",
	BrowseDown: "down",
	Select:     "select",
	Return:     "return",
}

// Events lists every event except None, in declaration order.
func Events() []Event {
	return []Event{Coin1, Coin2, Coin5, Coin10, BrowseUp, BrowseDown, Select, Return}
}

func (e Event) String() string {
	if e.Valid() {
		return eventNames[e]
	}
	return fmt.Sprintf("Event(%d)", int32(e))
}

// Valid reports whether e is a declared event.
func (e Event) Valid() bool {
	return e >= None && e <= Return
}

// IsCoin reports whether e is a coin insertion.
func (e Event) IsCoin() bool {
	return e >= Coin1 && e <= Coin10
}

// IsBrowse reports whether e moves the browse cursor.
func (e Event) IsBrowse() bool {
	return e == BrowseUp || e == BrowseDown
}

// CoinValue returns the credit a coin event adds, or 0 for non-coin events.
func (e Event) CoinValue() int {
	switch e {
	case Coin1:
		return 1
	case Coin2:
		return 2
	case Coin5:
		return 5
	case Coin10:
		return 10
	default:
		return 0
	}
}

// ParseEvent converts a case-insensitive event name to an Event.
func ParseEvent(s string) (Event, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range eventNames {
		if n == name {
			return Event(i), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownEvent, s)
}

// MarshalText implements encoding.TextMarshaler.
func (e Event) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEvent, int32(e))
	}
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Event) UnmarshalText(text []byte) error {
	ev, err := ParseEvent(string(text))
	if err != nil {
		return err
	}
	*e = ev
	return nil
}

// State is the machine's operating mode.
type State int

const (
	Start State = iota
	InsertCoin
	Browse
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case InsertCoin:
		return "insert_coin"
	case Browse:
		return "browse"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ParseState converts a state name back to a State.
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start":
		return Start, nil
	case "insert_coin":
		return InsertCoin, nil
	case "browse":
		return Browse, nil
	default:
		return Start, fmt.Errorf("unknown state %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	st, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
